// Package journal is a write-only audit sink for executed orders and equity
// snapshots. Simulation state is never restored from it.
package journal

import "time"

// FillRecord mirrors a settled ledger order record.
type FillRecord struct {
	OrderID     string
	Symbol      string
	Side        string
	Product     string
	Kind        string
	Quantity    int64
	Price       float64
	Status      string
	RealizedPnL *float64
	Time        time.Time
}

// EquitySnapshot captures the account after a tick or a manual action.
type EquitySnapshot struct {
	Time          time.Time
	Capital       float64
	TotalValue    float64
	InvestedValue float64
	TotalPnL      float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error      { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
