package sim

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/market"
)

func testFeed(seed int64, instruments ...market.Instrument) *market.Feed {
	if len(instruments) == 0 {
		instruments = []market.Instrument{
			{Symbol: "RELIANCE", Name: "Reliance Industries", Price: 100, Kind: market.Equity, Sector: "Energy"},
		}
	}
	return market.NewFeed(instruments, rand.New(rand.NewSource(seed)), market.DefaultVolatility)
}

func testEngine(t *testing.T, capital float64) *Engine {
	t.Helper()
	base := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	var n int
	return NewEngine(testFeed(1), capital, WithClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}))
}

func TestPlaceMarketOrderDebitsCost(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	records, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Buy,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 10,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, ledger.StatusExecuted, records[0].Status)
	assert.InDelta(t, 9_000, e.Capital(), 1e-9)

	pos := e.Positions()
	require.Len(t, pos, 1)
	assert.Equal(t, int64(10), pos[0].Quantity)
	assert.InDelta(t, 100, pos[0].AvgPrice, 1e-9)
}

func TestPlaceOrderUnknownSymbol(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	_, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "NOPE",
		Side:     ledger.Buy,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 1,
	})
	require.Error(t, err)
	assert.Empty(t, e.Registry().Orders())
}

func TestPlaceOrderValidationLeavesRejectedRecord(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	target := 95.0 // below entry on a BUY
	records, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Buy,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 10,
		Target:   &target,
	})
	require.ErrorIs(t, err, ledger.ErrInvalidTargetStoploss)
	require.Len(t, records, 1)
	assert.Equal(t, ledger.StatusRejected, records[0].Status)

	// Nothing moved.
	assert.InDelta(t, 10_000, e.Capital(), 1e-9)
	assert.Empty(t, e.Positions())
}

func TestPlaceOrderInsufficientFunds(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 500)
	records, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Buy,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 10, // cost 1000 > 500
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	require.Len(t, records, 1)
	assert.Equal(t, ledger.StatusRejected, records[0].Status)
	assert.InDelta(t, 500, e.Capital(), 1e-9)
}

func TestLimitOrderReservesAndCancelReleases(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	records, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:     "RELIANCE",
		Side:       ledger.Buy,
		Product:    ledger.Intraday,
		Kind:       ledger.Limit,
		Quantity:   5,
		LimitPrice: 90,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	pending := records[0]

	assert.Equal(t, ledger.StatusPending, pending.Status)
	assert.InDelta(t, 90, pending.Price, 1e-9)
	assert.InDelta(t, 10_000-5*90, e.Capital(), 1e-9)
	assert.Empty(t, e.Positions())

	require.NoError(t, e.CancelOrder(pending.ID))
	assert.InDelta(t, 10_000, e.Capital(), 1e-9)

	got, ok := e.Registry().Get(pending.ID)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusCancelled, got.Status)
	assert.Equal(t, pending.Time, got.Time, "cancel keeps the creation timestamp")

	// A second cancel must not release the reservation again.
	require.Error(t, e.CancelOrder(pending.ID))
	assert.InDelta(t, 10_000, e.Capital(), 1e-9)
}

func TestLimitFillExecutesAtLimitPrice(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	records, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:     "RELIANCE",
		Side:       ledger.Buy,
		Product:    ledger.Intraday,
		Kind:       ledger.Limit,
		Quantity:   5,
		LimitPrice: 90,
	})
	require.NoError(t, err)
	pending := records[0]

	// Market crosses below the limit: fill at the stored limit price, not at
	// the crossing price.
	e.mu.Lock()
	e.matchLimitsLocked(map[string]float64{"RELIANCE": 88}, e.clock())
	e.mu.Unlock()

	got, ok := e.Registry().Get(pending.ID)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusExecuted, got.Status)
	assert.Equal(t, pending.Time, got.Time, "fill keeps the creation timestamp")

	pos := e.Positions()
	require.Len(t, pos, 1)
	assert.InDelta(t, 90, pos[0].AvgPrice, 1e-9)
	assert.Equal(t, int64(5), pos[0].Quantity)

	// Reservation released exactly once, then re-spent on the open leg.
	assert.InDelta(t, 10_000-5*90, e.Capital(), 1e-9)

	// The fill leg is a separate EXECUTED record at the limit price.
	var fills int
	for _, o := range e.Registry().Orders() {
		if o.ID != pending.ID && o.Status == ledger.StatusExecuted {
			fills++
			assert.InDelta(t, 90, o.Price, 1e-9)
		}
	}
	assert.Equal(t, 1, fills)
}

func TestLimitFillAddKeepsTriggerLevels(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	target := 105.0
	_, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Buy,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 10,
		Target:   &target,
	})
	require.NoError(t, err)

	_, err = e.PlaceOrder(ledger.OrderRequest{
		Symbol:     "RELIANCE",
		Side:       ledger.Buy,
		Product:    ledger.Intraday,
		Kind:       ledger.Limit,
		Quantity:   5,
		LimitPrice: 90,
	})
	require.NoError(t, err)

	e.mu.Lock()
	e.matchLimitsLocked(map[string]float64{"RELIANCE": 89}, e.clock())
	e.mu.Unlock()

	pos := e.Positions()
	require.Len(t, pos, 1)
	assert.Equal(t, int64(15), pos[0].Quantity)
	require.NotNil(t, pos[0].Target, "limit fill must not erase the target")
	assert.InDelta(t, 105, *pos[0].Target, 1e-9)

	// The evaluator still closes the merged position when the target trades.
	e.mu.Lock()
	e.evalTriggersLocked(map[string]float64{"RELIANCE": 106}, e.clock())
	e.mu.Unlock()
	assert.Empty(t, e.Positions())
}

func TestLimitFillNetsAgainstShort(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)

	// Open a short 5 @ 100.
	_, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Sell,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 5,
	})
	require.NoError(t, err)

	// Resting BUY 5 @ 90 covers the short when it fills.
	records, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:     "RELIANCE",
		Side:       ledger.Buy,
		Product:    ledger.Intraday,
		Kind:       ledger.Limit,
		Quantity:   5,
		LimitPrice: 90,
	})
	require.NoError(t, err)

	e.mu.Lock()
	e.matchLimitsLocked(map[string]float64{"RELIANCE": 89}, e.clock())
	e.mu.Unlock()

	assert.Empty(t, e.Positions())
	// 10000 - 500 margin - 450 reservation, then release 450 and cover
	// credit 500 + 50 pnl.
	assert.InDelta(t, 10_050, e.Capital(), 1e-9)

	got, ok := e.Registry().Get(records[0].ID)
	require.True(t, ok)
	assert.Equal(t, ledger.StatusExecuted, got.Status)
}

func TestExitPositionRoundTrip(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 10_000)
	_, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Buy,
		Product:  ledger.Delivery,
		Kind:     ledger.Market,
		Quantity: 10,
	})
	require.NoError(t, err)

	rec, err := e.ExitPosition("RELIANCE", ledger.Delivery, ledger.Long)
	require.NoError(t, err)
	require.NotNil(t, rec.RealizedPnL)
	assert.InDelta(t, 0, *rec.RealizedPnL, 1e-9)
	assert.Equal(t, ledger.StatusExecuted, rec.Status)
	assert.InDelta(t, 10_000, e.Capital(), 1e-9)
	assert.Empty(t, e.Positions())

	_, err = e.ExitPosition("RELIANCE", ledger.Delivery, ledger.Long)
	require.Error(t, err)
}

func TestStepPipelineOrder(t *testing.T) {
	t.Parallel()

	// A short with a wide stoploss and a resting buy below market: over
	// enough ticks the walk must not leave the ledger inconsistent, and the
	// registry must never hold a filled order still marked pending.
	e := testEngine(t, 100_000)
	stop := 140.0
	_, err := e.PlaceOrder(ledger.OrderRequest{
		Symbol:   "RELIANCE",
		Side:     ledger.Sell,
		Product:  ledger.Intraday,
		Kind:     ledger.Market,
		Quantity: 10,
		StopLoss: &stop,
	})
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		e.Step()
	}

	for _, o := range e.Registry().Orders() {
		assert.NotEqual(t, ledger.StatusPending, o.Status)
	}
	// At most one open position key remains.
	assert.LessOrEqual(t, len(e.Positions()), 1)
}

func TestNeverBothSidesUnderLoad(t *testing.T) {
	t.Parallel()

	e := testEngine(t, 1_000_000)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			side := ledger.Buy
			if w%2 == 1 {
				side = ledger.Sell
			}
			for i := 0; i < 50; i++ {
				_, _ = e.PlaceOrder(ledger.OrderRequest{
					Symbol:   "RELIANCE",
					Side:     side,
					Product:  ledger.Intraday,
					Kind:     ledger.Market,
					Quantity: 3,
				})
				if i%10 == 0 {
					e.Step()
				}
				_ = e.Positions()
				_ = e.Stats()
			}
		}(w)
	}
	wg.Wait()

	long, short := false, false
	for _, p := range e.Positions() {
		if p.Product != ledger.Intraday {
			continue
		}
		switch p.Side {
		case ledger.Long:
			long = true
		case ledger.Short:
			short = true
		}
	}
	assert.False(t, long && short, "netting must never hold both sides of one key")
}
