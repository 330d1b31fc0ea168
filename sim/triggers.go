package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/notify"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/pkg/money"
)

// evalTriggersLocked scans open positions against the tick's prices and
// closes any whose target or stoploss fired. Target is checked before
// stoploss, so a tick satisfying both resolves as a target hit. Caller holds
// the engine lock; returned events are published after release.
func (e *Engine) evalTriggersLocked(prices map[string]float64, now time.Time) []notify.Event {
	var events []notify.Event

	for _, pos := range e.book.Positions() {
		price, ok := prices[pos.Symbol]
		if !ok {
			continue
		}

		status, fired := triggered(pos, price)
		if !fired {
			continue
		}

		rec, closed := e.book.Close(pos.Symbol, pos.Product, pos.Side, price, status, now)
		if !closed {
			continue
		}
		e.appendLocked(rec)

		label := "Target Hit"
		kind := notify.Success
		if status == ledger.StatusStoplossHit {
			label = "Stoploss Hit"
			kind = notify.Error
		}
		if e.metrics != nil {
			e.metrics.TriggerCloses.WithLabelValues(string(status)).Inc()
		}
		e.log.Info("trigger close",
			slog.String("symbol", pos.Symbol),
			slog.String("side", string(pos.Side)),
			slog.String("status", string(status)),
			slog.Float64("price", price),
		)
		events = append(events, notify.Event{
			Kind:    kind,
			Title:   label,
			Message: fmt.Sprintf("%s closed @ %s, P&L %s", pos.Symbol, money.INR(price), money.INR(*rec.RealizedPnL)),
		})
	}
	return events
}

// triggered reports whether price fires a position's target or stoploss, and
// which. For LONG positions the target sits above entry and the stoploss
// below; SHORT positions invert both comparisons.
func triggered(pos ledger.Position, price float64) (ledger.Status, bool) {
	switch pos.Side {
	case ledger.Long:
		if pos.Target != nil && price >= *pos.Target {
			return ledger.StatusTargetHit, true
		}
		if pos.StopLoss != nil && price <= *pos.StopLoss {
			return ledger.StatusStoplossHit, true
		}
	case ledger.Short:
		if pos.Target != nil && price <= *pos.Target {
			return ledger.StatusTargetHit, true
		}
		if pos.StopLoss != nil && price >= *pos.StopLoss {
			return ledger.StatusStoplossHit, true
		}
	}
	return "", false
}
