// Package sim drives the trading simulation: one engine serializes the tick
// pipeline (price feed, trigger evaluator, limit matcher) and all user
// mutations against a single ledger.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/internal/metrics"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/journal"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/market"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/notify"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/pkg/id"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/pkg/money"
)

// Engine is the only code path allowed to mutate the ledger. Ticks and user
// requests are serialized on one mutex; within a tick the order is fixed:
// feed update, trigger pass, limit pass, all against the same price snapshot.
type Engine struct {
	mu       sync.Mutex
	feed     *market.Feed
	book     *ledger.Book
	registry *ledger.Registry
	journal  journal.Journal
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	clock    func() time.Time

	// onStep, if set, runs after every Step with the fresh prices. The stream
	// broadcaster hooks in here. Called outside the engine lock.
	onStep func(prices map[string]float64)
}

type Option func(*Engine)

// WithClock injects a time source so tests advance deterministically.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithStepHook registers a callback invoked after each tick, outside the
// engine lock.
func WithStepHook(fn func(prices map[string]float64)) Option {
	return func(e *Engine) { e.onStep = fn }
}

func NewEngine(feed *market.Feed, capital float64, opts ...Option) *Engine {
	e := &Engine{
		feed:     feed,
		book:     ledger.NewBook(capital),
		registry: ledger.NewRegistry(),
		journal:  journal.Nop{},
		notifier: notify.Multi(nil),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

func (e *Engine) Feed() *market.Feed         { return e.feed }
func (e *Engine) Registry() *ledger.Registry { return e.registry }

// Capital returns the free cash/margin balance.
func (e *Engine) Capital() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Capital()
}

// Positions returns copies of the open positions.
func (e *Engine) Positions() []ledger.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Positions()
}

// Stats derives portfolio statistics from the latest prices.
func (e *Engine) Stats() ledger.PortfolioStats {
	prices := make(map[string]float64)
	for _, in := range e.feed.Snapshot() {
		prices[in.Symbol] = in.Price
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Stats(prices)
}

// Step advances the simulation one tick: new prices, then triggers, then
// limit fills, all against the same snapshot. Notifications are published
// after the lock is released.
func (e *Engine) Step() {
	e.mu.Lock()

	now := e.clock()
	prices := e.feed.Tick()

	var events []notify.Event
	events = append(events, e.evalTriggersLocked(prices, now)...)
	events = append(events, e.matchLimitsLocked(prices, now)...)

	e.recordEquityLocked(prices, now)
	if e.metrics != nil {
		e.metrics.TicksTotal.Inc()
		e.metrics.Capital.Set(e.book.Capital())
		e.metrics.OpenPositions.Set(float64(len(e.book.Positions())))
	}

	e.mu.Unlock()

	for _, ev := range events {
		e.notifier.Notify(ev)
	}
	if e.onStep != nil {
		e.onStep(prices)
	}
}

// Run drives Step on a fixed cadence until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Step()
		}
	}
}

// PlaceOrder validates and executes a manual order request. Market orders and
// already-crossing limit orders execute immediately at the current market
// price; resting limit orders reserve quantity x limit price and wait for the
// matcher.
func (e *Engine) PlaceOrder(req ledger.OrderRequest) ([]ledger.Order, error) {
	e.mu.Lock()

	now := e.clock()
	price, ok := e.feed.Price(req.Symbol)
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("unknown symbol %q", req.Symbol)
	}

	if err := ledger.Validate(req, price); err != nil {
		rejected := e.rejectLocked(req, now, err)
		e.mu.Unlock()
		e.notifier.Notify(notify.Event{
			Kind:    notify.Error,
			Title:   "Order Rejected",
			Message: err.Error(),
		})
		return []ledger.Order{rejected}, err
	}

	if ledger.RestsAtMarket(req, price) {
		pending, err := e.restLocked(req, now)
		e.mu.Unlock()
		if err != nil {
			e.notifier.Notify(notify.Event{
				Kind:    notify.Error,
				Title:   "Insufficient Funds",
				Message: "Not enough capital to place limit order.",
			})
			return []ledger.Order{pending}, err
		}
		e.notifier.Notify(notify.Event{
			Kind:    notify.Success,
			Title:   "Limit Order Placed",
			Message: fmt.Sprintf("%s %d %s @ %s", req.Side, req.Quantity, req.Symbol, money.INR(req.LimitPrice)),
		})
		return []ledger.Order{pending}, nil
	}

	records, err := e.book.Apply(ledger.Fill{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Product:  req.Product,
		Kind:     req.Kind,
		Quantity: req.Quantity,
		Price:    price,
		Target:   req.Target,
		StopLoss: req.StopLoss,
		Intent:   ledger.IntentUser,
		Time:     now,
	})
	e.appendLocked(records...)
	if err != nil {
		rejected := e.rejectLocked(req, now, err)
		records = append(records, rejected)
	}
	e.recordEquityLocked(e.latestPrices(), now)
	e.mu.Unlock()

	if err != nil {
		e.notifier.Notify(notify.Event{
			Kind:    notify.Error,
			Title:   "Insufficient Funds",
			Message: "Not enough capital.",
		})
		return records, err
	}

	if e.metrics != nil {
		e.metrics.OrdersExecuted.WithLabelValues(string(req.Kind)).Add(float64(len(records)))
	}
	e.notifier.Notify(notify.Event{
		Kind:    notify.Success,
		Title:   "Order Executed",
		Message: fmt.Sprintf("%s %d %s @ %s", req.Side, req.Quantity, req.Symbol, money.INR(price)),
	})
	return records, nil
}

// ExitPosition closes the full quantity of one position at the current market
// price.
func (e *Engine) ExitPosition(symbol string, product ledger.Product, side ledger.PositionSide) (ledger.Order, error) {
	e.mu.Lock()

	now := e.clock()
	price, ok := e.feed.Price(symbol)
	if !ok {
		e.mu.Unlock()
		return ledger.Order{}, fmt.Errorf("unknown symbol %q", symbol)
	}

	rec, closed := e.book.Close(symbol, product, side, price, ledger.StatusExecuted, now)
	if !closed {
		e.mu.Unlock()
		return ledger.Order{}, fmt.Errorf("no open %s %s position for %q", product, side, symbol)
	}
	e.appendLocked(rec)
	e.recordEquityLocked(e.latestPrices(), now)
	e.mu.Unlock()

	verb := "Sold"
	if side == ledger.Short {
		verb = "Covered"
	}
	e.notifier.Notify(notify.Event{
		Kind:    notify.Success,
		Title:   "Position Exited",
		Message: fmt.Sprintf("%s %d %s @ %s", verb, rec.Quantity, symbol, money.INR(price)),
	})
	return rec, nil
}

// CancelOrder removes a resting limit order, releasing its reservation
// exactly once.
func (e *Engine) CancelOrder(orderID string) error {
	e.mu.Lock()

	o, ok := e.registry.Get(orderID)
	if !ok || o.Status != ledger.StatusPending {
		e.mu.Unlock()
		return fmt.Errorf("no pending order %q", orderID)
	}

	if !e.registry.Transition(orderID, ledger.StatusCancelled) {
		e.mu.Unlock()
		return fmt.Errorf("no pending order %q", orderID)
	}
	e.book.Release(float64(o.Quantity) * o.Price)
	e.mu.Unlock()

	e.notifier.Notify(notify.Event{
		Kind:    notify.Info,
		Title:   "Order Cancelled",
		Message: fmt.Sprintf("%s %d %s @ %s", o.Side, o.Quantity, o.Symbol, money.INR(o.Price)),
	})
	return nil
}

// rejectLocked appends a REJECTED record so refusals stay in the history.
func (e *Engine) rejectLocked(req ledger.OrderRequest, now time.Time, cause error) ledger.Order {
	price := req.LimitPrice
	if req.Kind == ledger.Market {
		price, _ = e.feed.Price(req.Symbol)
	}
	rec := ledger.Order{
		ID:       id.New(),
		Symbol:   req.Symbol,
		Side:     req.Side,
		Product:  req.Product,
		Kind:     req.Kind,
		Quantity: req.Quantity,
		Price:    price,
		Status:   ledger.StatusRejected,
		Time:     now,
	}
	e.registry.Append(rec)
	if e.metrics != nil {
		e.metrics.OrdersRejected.WithLabelValues(cause.Error()).Inc()
	}
	e.log.Warn("order rejected",
		slog.String("symbol", req.Symbol),
		slog.String("side", string(req.Side)),
		slog.Int64("quantity", req.Quantity),
		slog.String("reason", cause.Error()),
	)
	return rec
}

// restLocked reserves capital and stores a PENDING limit order.
func (e *Engine) restLocked(req ledger.OrderRequest, now time.Time) (ledger.Order, error) {
	cost := float64(req.Quantity) * req.LimitPrice
	if err := e.book.Reserve(cost); err != nil {
		return e.rejectLocked(req, now, err), err
	}

	pending := ledger.Order{
		ID:       id.New(),
		Symbol:   req.Symbol,
		Side:     req.Side,
		Product:  req.Product,
		Kind:     ledger.Limit,
		Quantity: req.Quantity,
		Price:    req.LimitPrice,
		Status:   ledger.StatusPending,
		Time:     now,
	}
	e.registry.Append(pending)
	return pending, nil
}

// appendLocked records executed legs in the registry and journal.
func (e *Engine) appendLocked(records ...ledger.Order) {
	if len(records) == 0 {
		return
	}
	e.registry.Append(records...)

	for _, rec := range records {
		err := e.journal.RecordFill(journal.FillRecord{
			OrderID:     rec.ID,
			Symbol:      rec.Symbol,
			Side:        string(rec.Side),
			Product:     string(rec.Product),
			Kind:        string(rec.Kind),
			Quantity:    rec.Quantity,
			Price:       rec.Price,
			Status:      string(rec.Status),
			RealizedPnL: rec.RealizedPnL,
			Time:        rec.Time,
		})
		if err != nil {
			e.log.Error("journal fill", slog.String("order_id", rec.ID), slog.String("err", err.Error()))
		}
	}
}

func (e *Engine) recordEquityLocked(prices map[string]float64, now time.Time) {
	stats := e.book.Stats(prices)
	err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:          now,
		Capital:       stats.AvailableMargin,
		TotalValue:    stats.TotalValue,
		InvestedValue: stats.InvestedValue,
		TotalPnL:      stats.TotalPnL,
	})
	if err != nil {
		e.log.Error("journal equity", slog.String("err", err.Error()))
	}
}

func (e *Engine) latestPrices() map[string]float64 {
	prices := make(map[string]float64)
	for _, in := range e.feed.Snapshot() {
		prices[in.Symbol] = in.Price
	}
	return prices
}
