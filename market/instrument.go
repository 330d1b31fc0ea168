// Package market owns the tradable instrument set and the synthetic price
// feed that drives the simulation.
package market

// Kind distinguishes equities from indices.
type Kind string

const (
	Equity Kind = "EQUITY"
	Index  Kind = "INDEX"
)

// Trend is the short-term direction label derived from the rolling window.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)

// Instrument is a tracked symbol. Change and ChangePercent are measured
// against the oldest price still in the History window, not the previous
// tick.
type Instrument struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        int64
	Kind          Kind
	Sector        string
	History       []float64
}

// Trend labels the instrument's direction from its window change.
func (in Instrument) Trend() Trend {
	switch {
	case in.ChangePercent > 0:
		return TrendUp
	case in.ChangePercent < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}
