package ledger

import (
	"time"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/pkg/id"
)

// Book holds the single authoritative capital balance and the open position
// set. It is not internally locked; the engine serializes all calls.
type Book struct {
	capital   float64
	positions []*Position
}

// NewBook starts a book with the given free capital and no positions.
func NewBook(capital float64) *Book {
	return &Book{capital: capital}
}

// Capital returns the current free cash/margin balance.
func (b *Book) Capital() float64 { return b.capital }

// Positions returns copies of the open positions in holding order.
func (b *Book) Positions() []Position {
	out := make([]Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	return out
}

// Find returns a copy of the open position for the key, if any.
func (b *Book) Find(symbol string, product Product, side PositionSide) (Position, bool) {
	if p := b.find(symbol, product, side); p != nil {
		return *p, true
	}
	return Position{}, false
}

func (b *Book) find(symbol string, product Product, side PositionSide) *Position {
	for _, p := range b.positions {
		if p.Symbol == symbol && p.Product == product && p.Side == side {
			return p
		}
	}
	return nil
}

func (b *Book) remove(target *Position) {
	for i, p := range b.positions {
		if p == target {
			b.positions = append(b.positions[:i], b.positions[i+1:]...)
			return
		}
	}
}

// Apply executes a validated fill against the book: first it nets the
// quantity against the opposite-side position for (symbol, product), then any
// residual opens or adds to the same-side position. It returns one order
// record per leg. The offset leg commits even when the residual leg fails
// with ErrInsufficientFunds; the two are independent capital events.
func (b *Book) Apply(f Fill) ([]Order, error) {
	if f.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var records []Order
	remaining := f.Quantity

	// Offset leg.
	if opp := b.find(f.Symbol, f.Product, f.Side.opposite()); opp != nil {
		offsetQty := min(opp.Quantity, remaining)

		var pnl, credit float64
		if opp.Side == Short {
			// Covering a short releases the margin held at entry plus the
			// realized result.
			pnl = (opp.AvgPrice - f.Price) * float64(offsetQty)
			credit = opp.AvgPrice*float64(offsetQty) + pnl
		} else {
			// Closing a long returns the full sale proceeds.
			pnl = (f.Price - opp.AvgPrice) * float64(offsetQty)
			credit = f.Price * float64(offsetQty)
		}

		b.capital += credit
		if opp.Quantity == offsetQty {
			b.remove(opp)
		} else {
			opp.Quantity -= offsetQty
		}
		remaining -= offsetQty

		records = append(records, Order{
			ID:          id.New(),
			Symbol:      f.Symbol,
			Side:        f.Side,
			Product:     f.Product,
			Kind:        f.Kind,
			Quantity:    offsetQty,
			Price:       f.Price,
			Status:      StatusExecuted,
			Time:        f.Time,
			RealizedPnL: pnlPtr(pnl),
		})
	}

	if remaining == 0 {
		return records, nil
	}

	// Open leg.
	cost := f.Price * float64(remaining)
	if cost > b.capital {
		return records, ErrInsufficientFunds
	}
	b.capital -= cost

	if same := b.find(f.Symbol, f.Product, f.Side.same()); same != nil {
		total := same.Quantity + remaining
		same.AvgPrice = (float64(same.Quantity)*same.AvgPrice + float64(remaining)*f.Price) / float64(total)
		same.Quantity = total
		// A manual add replaces the position's trigger levels with whatever
		// the request carried. A limit fill carries none and must not erase
		// levels the position already has.
		if f.Intent != IntentLimitFill {
			same.Target = f.Target
			same.StopLoss = f.StopLoss
		}
	} else {
		b.positions = append(b.positions, &Position{
			Symbol:   f.Symbol,
			Product:  f.Product,
			Side:     f.Side.same(),
			Quantity: remaining,
			AvgPrice: f.Price,
			Target:   f.Target,
			StopLoss: f.StopLoss,
		})
	}

	records = append(records, Order{
		ID:       id.New(),
		Symbol:   f.Symbol,
		Side:     f.Side,
		Product:  f.Product,
		Kind:     f.Kind,
		Quantity: remaining,
		Price:    f.Price,
		Status:   StatusExecuted,
		Time:     f.Time,
	})
	return records, nil
}

// Close fully closes the position identified by (symbol, product, side) at
// price, returning the order record with the given terminal status. A
// vanished position is a no-op skip, not an error.
func (b *Book) Close(symbol string, product Product, side PositionSide, price float64, status Status, at time.Time) (Order, bool) {
	pos := b.find(symbol, product, side)
	if pos == nil {
		return Order{}, false
	}

	var pnl, credit float64
	if pos.Side == Long {
		proceeds := float64(pos.Quantity) * price
		pnl = proceeds - float64(pos.Quantity)*pos.AvgPrice
		credit = proceeds
	} else {
		margin := float64(pos.Quantity) * pos.AvgPrice
		pnl = (pos.AvgPrice - price) * float64(pos.Quantity)
		credit = margin + pnl
	}

	b.capital += credit
	rec := Order{
		ID:          id.New(),
		Symbol:      pos.Symbol,
		Side:        pos.Side.closeSide(),
		Product:     pos.Product,
		Kind:        Market,
		Quantity:    pos.Quantity,
		Price:       price,
		Status:      status,
		Time:        at,
		RealizedPnL: pnlPtr(pnl),
	}
	b.remove(pos)
	return rec, true
}

// Reserve debits capital for a pending limit order. The caller must pair it
// with a PENDING order record and release it exactly once, on fill or cancel.
func (b *Book) Reserve(amount float64) error {
	if amount > b.capital {
		return ErrInsufficientFunds
	}
	b.capital -= amount
	return nil
}

// Release credits back a prior reservation.
func (b *Book) Release(amount float64) {
	b.capital += amount
}
