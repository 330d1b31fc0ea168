// Package analytics aggregates closed trades from the order registry into
// performance metrics. Everything here is a pure function over the order
// history; it holds no state and needs no locking.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
)

// Sentinel replaces an undefined ratio (zero denominator with a positive
// numerator) so callers never see Inf or NaN.
const Sentinel = 999.0

// Period selects the calendar bucketing for the P&L chart.
type Period string

const (
	Daily   Period = "DAILY"
	Weekly  Period = "WEEKLY"
	Monthly Period = "MONTHLY"
)

// Bucket is one calendar grouping of realized P&L.
type Bucket struct {
	Label string
	PnL   float64
}

// SymbolStat aggregates one symbol's closed trades.
type SymbolStat struct {
	Symbol string
	PnL    float64
	Trades int
	Wins   int
}

// Report is the full analytics output.
type Report struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	WinRate      float64 // percent
	ProfitFactor float64
	RiskReward   float64

	GrossProfit  float64
	GrossLoss    float64 // absolute value
	TotalReturns float64
	AvgWin       float64
	AvgLoss      float64 // absolute value
	MaxProfit    float64
	MaxLoss      float64

	Buckets  []Bucket
	DailyPnL map[string]float64
	Symbols  []SymbolStat
}

// Analyze computes a Report over the registry's closed trades (orders with a
// realized P&L). Trades with zero P&L count as losses, matching the win-rate
// convention wins / total.
func Analyze(orders []ledger.Order, period Period) Report {
	closed := make([]ledger.Order, 0, len(orders))
	for _, o := range orders {
		if o.RealizedPnL != nil {
			closed = append(closed, o)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool { return closed[i].Time.Before(closed[j].Time) })

	r := Report{DailyPnL: make(map[string]float64)}
	if len(closed) == 0 {
		return r
	}

	bucketIdx := make(map[string]int)
	symbolIdx := make(map[string]int)

	for _, o := range closed {
		pnl := *o.RealizedPnL
		r.TotalTrades++
		r.TotalReturns += pnl

		if pnl > 0 {
			r.WinningTrades++
			r.GrossProfit += pnl
			if pnl > r.MaxProfit {
				r.MaxProfit = pnl
			}
		} else {
			r.LosingTrades++
			r.GrossLoss += -pnl
			if pnl < r.MaxLoss {
				r.MaxLoss = pnl
			}
		}

		day := o.Time.Format("2006-01-02")
		r.DailyPnL[day] += pnl

		label := bucketLabel(o.Time, period)
		if i, ok := bucketIdx[label]; ok {
			r.Buckets[i].PnL += pnl
		} else {
			bucketIdx[label] = len(r.Buckets)
			r.Buckets = append(r.Buckets, Bucket{Label: label, PnL: pnl})
		}

		if i, ok := symbolIdx[o.Symbol]; ok {
			s := &r.Symbols[i]
			s.PnL += pnl
			s.Trades++
			if pnl > 0 {
				s.Wins++
			}
		} else {
			symbolIdx[o.Symbol] = len(r.Symbols)
			s := SymbolStat{Symbol: o.Symbol, PnL: pnl, Trades: 1}
			if pnl > 0 {
				s.Wins = 1
			}
			r.Symbols = append(r.Symbols, s)
		}
	}

	r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades) * 100
	r.ProfitFactor = ratio(r.GrossProfit, r.GrossLoss)

	if r.WinningTrades > 0 {
		r.AvgWin = r.GrossProfit / float64(r.WinningTrades)
	}
	if r.LosingTrades > 0 {
		r.AvgLoss = r.GrossLoss / float64(r.LosingTrades)
	}
	r.RiskReward = ratio(r.AvgWin, r.AvgLoss)

	sort.SliceStable(r.Symbols, func(i, j int) bool { return r.Symbols[i].PnL > r.Symbols[j].PnL })
	return r
}

// ratio applies the sentinel convention for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		if num > 0 {
			return Sentinel
		}
		return 0
	}
	return num / den
}

func bucketLabel(t time.Time, period Period) string {
	switch period {
	case Weekly:
		return fmt.Sprintf("W%d", weekOfYear(t))
	case Monthly:
		return t.Format("Jan 2006")
	default:
		return t.Format("Jan 2")
	}
}

// weekOfYear counts calendar weeks from Jan 1, aligned to the weekday Jan 1
// falls on, so the first partial week is week 1.
func weekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.Sub(jan1).Hours() / 24
	return int(math.Ceil((days + float64(jan1.Weekday()) + 1) / 7))
}
