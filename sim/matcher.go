package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/notify"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/pkg/money"
)

// matchLimitsLocked fills resting limit orders whose price crossed on this
// tick. Fills execute at the stored limit price, not the crossing price. The
// reservation taken at placement is released before the fill is applied, so
// the netting path sees the full balance. Caller holds the engine lock.
func (e *Engine) matchLimitsLocked(prices map[string]float64, now time.Time) []notify.Event {
	var events []notify.Event

	for _, o := range e.registry.Pending() {
		price, ok := prices[o.Symbol]
		if !ok || !ledger.LimitCrossed(o, price) {
			continue
		}

		e.book.Release(float64(o.Quantity) * o.Price)
		records, err := e.book.Apply(ledger.Fill{
			Symbol:   o.Symbol,
			Side:     o.Side,
			Product:  o.Product,
			Kind:     ledger.Limit,
			Quantity: o.Quantity,
			Price:    o.Price,
			Intent:   ledger.IntentLimitFill,
			Time:     now,
		})
		e.appendLocked(records...)
		if err != nil {
			// The reservation covers a fresh open at the limit price, so a
			// fill can only fail if the ledger drifted. The reservation is
			// already released; cancel the order so it is not released twice.
			e.registry.Transition(o.ID, ledger.StatusCancelled)
			e.log.Error("limit fill failed",
				slog.String("order_id", o.ID),
				slog.String("symbol", o.Symbol),
				slog.String("err", err.Error()),
			)
			continue
		}

		e.registry.Transition(o.ID, ledger.StatusExecuted)
		if e.metrics != nil {
			e.metrics.LimitFills.Inc()
		}
		events = append(events, notify.Event{
			Kind:    notify.Success,
			Title:   "Limit Order Filled",
			Message: fmt.Sprintf("%s %d %s @ %s", o.Side, o.Quantity, o.Symbol, money.INR(o.Price)),
		})
	}
	return events
}
