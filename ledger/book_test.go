package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

func buy(qty int64, price float64) Fill {
	return Fill{Symbol: "RELIANCE", Side: Buy, Product: Intraday, Kind: Market, Quantity: qty, Price: price, Intent: IntentUser, Time: t0}
}

func sell(qty int64, price float64) Fill {
	return Fill{Symbol: "RELIANCE", Side: Sell, Product: Intraday, Kind: Market, Quantity: qty, Price: price, Intent: IntentUser, Time: t0}
}

func TestApplyRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	b := NewBook(10000)
	for _, qty := range []int64{0, -3} {
		records, err := b.Apply(buy(qty, 100))
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Empty(t, records)
	}
	assert.Equal(t, 10000.0, b.Capital(), "rejected request must not touch the ledger")
	assert.Empty(t, b.Positions())
}

func TestBuyThenExitScenario(t *testing.T) {
	t.Parallel()

	// Starting capital 10000; BUY 10 @ 100 -> capital 9000, LONG 10 @ 100.
	b := NewBook(10000)
	records, err := b.Apply(buy(10, 100))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusExecuted, records[0].Status)
	assert.Nil(t, records[0].RealizedPnL)
	assert.Equal(t, 9000.0, b.Capital())

	pos, ok := b.Find("RELIANCE", Intraday, Long)
	require.True(t, ok)
	assert.Equal(t, int64(10), pos.Quantity)
	assert.Equal(t, 100.0, pos.AvgPrice)

	// Price moves to 120; SELL 10 -> capital 9000 + 1200, pnl 200.
	records, err = b.Apply(sell(10, 120))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].RealizedPnL)
	assert.InDelta(t, 200.0, *records[0].RealizedPnL, 1e-9)
	assert.InDelta(t, 10200.0, b.Capital(), 1e-9)
	assert.Empty(t, b.Positions())
}

func TestShortCoverReturnsMarginPlusPnL(t *testing.T) {
	t.Parallel()

	b := NewBook(10000)
	_, err := b.Apply(sell(10, 100))
	require.NoError(t, err)
	assert.Equal(t, 9000.0, b.Capital(), "short is margin-backed 1:1 by notional")

	// Cover at 106: pnl = (100-106)*10 = -60, credit = 1000 - 60.
	records, err := b.Apply(buy(10, 106))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, -60.0, *records[0].RealizedPnL, 1e-9)
	assert.InDelta(t, 9940.0, b.Capital(), 1e-9)
}

func TestWeightedAverageAdd(t *testing.T) {
	t.Parallel()

	b := NewBook(1_000_000)
	_, err := b.Apply(buy(10, 100))
	require.NoError(t, err)
	_, err = b.Apply(buy(30, 120))
	require.NoError(t, err)

	pos, ok := b.Find("RELIANCE", Intraday, Long)
	require.True(t, ok)
	assert.Equal(t, int64(40), pos.Quantity)
	assert.InDelta(t, (10.0*100+30*120)/40, pos.AvgPrice, 1e-12)
}

func TestAddKeepsLevelsOnLimitFill(t *testing.T) {
	t.Parallel()

	target, stop := 105.0, 95.0
	b := NewBook(1_000_000)
	f := buy(10, 100)
	f.Target = &target
	f.StopLoss = &stop
	_, err := b.Apply(f)
	require.NoError(t, err)

	// A limit fill carries no levels; the add must not erase the position's.
	lf := buy(5, 90)
	lf.Kind = Limit
	lf.Intent = IntentLimitFill
	_, err = b.Apply(lf)
	require.NoError(t, err)

	pos, ok := b.Find("RELIANCE", Intraday, Long)
	require.True(t, ok)
	require.NotNil(t, pos.Target)
	require.NotNil(t, pos.StopLoss)
	assert.InDelta(t, 105, *pos.Target, 1e-12)
	assert.InDelta(t, 95, *pos.StopLoss, 1e-12)

	// A manual add still replaces them, even with unset values.
	_, err = b.Apply(buy(5, 100))
	require.NoError(t, err)
	pos, _ = b.Find("RELIANCE", Intraday, Long)
	assert.Nil(t, pos.Target)
	assert.Nil(t, pos.StopLoss)
}

func TestNeverLongAndShortSimultaneously(t *testing.T) {
	t.Parallel()

	b := NewBook(1_000_000)
	fills := []Fill{
		buy(10, 100), sell(4, 110), sell(20, 105), buy(14, 95), buy(3, 102), sell(3, 101),
	}
	for _, f := range fills {
		_, err := b.Apply(f)
		require.NoError(t, err)

		_, haveLong := b.Find("RELIANCE", Intraday, Long)
		_, haveShort := b.Find("RELIANCE", Intraday, Short)
		assert.False(t, haveLong && haveShort, "both sides open after %+v", f)
	}
}

func TestFlipEmitsTwoLegs(t *testing.T) {
	t.Parallel()

	b := NewBook(10000)
	_, err := b.Apply(buy(10, 100))
	require.NoError(t, err)

	// SELL 15 @ 110: closes the 10-lot long (pnl 100) and opens a 5-lot short.
	records, err := b.Apply(sell(15, 110))
	require.NoError(t, err)
	require.Len(t, records, 2)

	offset, open := records[0], records[1]
	assert.Equal(t, int64(10), offset.Quantity)
	require.NotNil(t, offset.RealizedPnL)
	assert.InDelta(t, 100.0, *offset.RealizedPnL, 1e-9)

	assert.Equal(t, int64(5), open.Quantity)
	assert.Nil(t, open.RealizedPnL)

	pos, ok := b.Find("RELIANCE", Intraday, Short)
	require.True(t, ok)
	assert.Equal(t, int64(5), pos.Quantity)
	assert.Equal(t, 110.0, pos.AvgPrice)

	// 10000 - 1000 + 1100 - 550.
	assert.InDelta(t, 9550.0, b.Capital(), 1e-9)
}

func TestOffsetCommitsWhenResidualLacksFunds(t *testing.T) {
	t.Parallel()

	b := NewBook(1000)
	_, err := b.Apply(buy(5, 100))
	require.NoError(t, err)
	assert.InDelta(t, 500.0, b.Capital(), 1e-9)

	// SELL 100 @ 100: the 5-lot close commits (credit 500), the 95-lot short
	// needs 9500 and fails.
	records, err := b.Apply(sell(100, 100))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].RealizedPnL)
	assert.InDelta(t, 0.0, *records[0].RealizedPnL, 1e-9)

	assert.InDelta(t, 1000.0, b.Capital(), 1e-9)
	assert.Empty(t, b.Positions(), "long closed, short not opened")
}

func TestProductClassesArePartitioned(t *testing.T) {
	t.Parallel()

	b := NewBook(1_000_000)
	_, err := b.Apply(buy(10, 100))
	require.NoError(t, err)

	f := sell(10, 110)
	f.Product = Delivery
	records, err := b.Apply(f)
	require.NoError(t, err)

	// The DELIVERY sell must not net against the INTRADAY long.
	require.Len(t, records, 1)
	assert.Nil(t, records[0].RealizedPnL)
	_, haveLong := b.Find("RELIANCE", Intraday, Long)
	_, haveShort := b.Find("RELIANCE", Delivery, Short)
	assert.True(t, haveLong)
	assert.True(t, haveShort)
}

func TestCloseLongAndShort(t *testing.T) {
	t.Parallel()

	t.Run("long", func(t *testing.T) {
		t.Parallel()
		b := NewBook(10000)
		_, err := b.Apply(buy(10, 100))
		require.NoError(t, err)

		rec, ok := b.Close("RELIANCE", Intraday, Long, 120, StatusTargetHit, t0)
		require.True(t, ok)
		assert.Equal(t, Sell, rec.Side)
		assert.Equal(t, StatusTargetHit, rec.Status)
		assert.InDelta(t, 200.0, *rec.RealizedPnL, 1e-9)
		assert.InDelta(t, 10200.0, b.Capital(), 1e-9)
	})

	t.Run("short_stoploss", func(t *testing.T) {
		t.Parallel()
		// SHORT 10 @ 100, covered at 106: pnl -60, credit 940.
		b := NewBook(10000)
		_, err := b.Apply(sell(10, 100))
		require.NoError(t, err)

		rec, ok := b.Close("RELIANCE", Intraday, Short, 106, StatusStoplossHit, t0)
		require.True(t, ok)
		assert.Equal(t, Buy, rec.Side)
		assert.InDelta(t, -60.0, *rec.RealizedPnL, 1e-9)
		assert.InDelta(t, 9940.0, b.Capital(), 1e-9)
	})

	t.Run("vanished_position_is_skip", func(t *testing.T) {
		t.Parallel()
		b := NewBook(10000)
		_, ok := b.Close("RELIANCE", Intraday, Long, 120, StatusTargetHit, t0)
		assert.False(t, ok)
		assert.Equal(t, 10000.0, b.Capital())
	})
}

func TestReserveRelease(t *testing.T) {
	t.Parallel()

	b := NewBook(1000)
	require.NoError(t, b.Reserve(450))
	assert.InDelta(t, 550.0, b.Capital(), 1e-9)

	assert.ErrorIs(t, b.Reserve(551), ErrInsufficientFunds)
	assert.InDelta(t, 550.0, b.Capital(), 1e-9)

	b.Release(450)
	assert.InDelta(t, 1000.0, b.Capital(), 1e-9)
}

// Capital conservation: final = initial + sum(realized pnl) - invested notional.
func TestCapitalConservation(t *testing.T) {
	t.Parallel()

	const initial = 50000.0
	b := NewBook(initial)

	fills := []Fill{
		buy(10, 100), buy(5, 110), sell(8, 120),
		sell(20, 115), buy(13, 112),
		buy(40, 90), sell(40, 95),
	}

	var realized float64
	for _, f := range fills {
		records, err := b.Apply(f)
		require.NoError(t, err)
		for _, rec := range records {
			if rec.RealizedPnL != nil {
				realized += *rec.RealizedPnL
			}
		}
	}

	var invested float64
	for _, pos := range b.Positions() {
		invested += float64(pos.Quantity) * pos.AvgPrice
	}

	assert.InDelta(t, initial+realized-invested, b.Capital(), 1e-6)
}

func TestStats(t *testing.T) {
	t.Parallel()

	b := NewBook(10000)
	_, err := b.Apply(buy(10, 100))
	require.NoError(t, err)

	f := sell(5, 200)
	f.Symbol = "INFY"
	_, err = b.Apply(f)
	require.NoError(t, err)
	// capital = 10000 - 1000 - 1000 = 8000

	stats := b.Stats(map[string]float64{"RELIANCE": 110, "INFY": 190})

	// LONG: 10*110 = 1100. SHORT: invested 1000 + pnl (200-190)*5 = 1050.
	assert.InDelta(t, 2000.0, stats.InvestedValue, 1e-9)
	assert.InDelta(t, 8000.0+1100+1050, stats.TotalValue, 1e-9)
	assert.InDelta(t, 150.0, stats.TotalPnL, 1e-9)
	assert.Equal(t, stats.DayPnL, stats.TotalPnL)
	assert.InDelta(t, 8000.0, stats.AvailableMargin, 1e-9)
}
