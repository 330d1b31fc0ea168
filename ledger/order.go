// Package ledger owns the cash/margin balance, the open position set and the
// append-only order history, and implements the netting rules that keep them
// consistent. All mutation goes through Book; callers are expected to
// serialize access (the sim engine holds the single write lock).
package ledger

import "time"

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Product partitions positions by settlement class. The margin labels shown
// for these in a UI ("5x"/"1x") are cosmetic; the ledger backs all exposure
// 1:1 by notional.
type Product string

const (
	Intraday Product = "INTRADAY"
	Delivery Product = "DELIVERY"
)

// ExecKind distinguishes immediate fills from resting limit orders.
type ExecKind string

const (
	Market ExecKind = "MARKET"
	Limit  ExecKind = "LIMIT"
)

// Status is an order's lifecycle state. Orders are immutable once created
// except for a single transition out of PENDING.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusExecuted    Status = "EXECUTED"
	StatusRejected    Status = "REJECTED"
	StatusCancelled   Status = "CANCELLED"
	StatusTargetHit   Status = "TARGET_HIT"
	StatusStoplossHit Status = "STOPLOSS_HIT"
)

// Order is one row of the append-only history. Price is the fill price for
// market orders and the quoted limit price for limit orders. RealizedPnL is
// set only on records that reduced or closed existing exposure.
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Product     Product
	Kind        ExecKind
	Quantity    int64
	Price       float64
	Status      Status
	Time        time.Time
	RealizedPnL *float64
}

// OrderRequest is the immutable value object a caller submits to place an
// order. LimitPrice is ignored for market orders. Target and StopLoss attach
// trigger levels to the resulting position.
type OrderRequest struct {
	Symbol     string
	Side       Side
	Product    Product
	Kind       ExecKind
	Quantity   int64
	LimitPrice float64
	Target     *float64
	StopLoss   *float64
}

// Intent labels why a fill is being applied. It affects bookkeeping labels
// only, never the math.
type Intent string

const (
	IntentUser      Intent = "user"
	IntentTrigger   Intent = "trigger"
	IntentLimitFill Intent = "limit-fill"
)

// Fill is the execution engine's input: a concrete quantity at a concrete
// price, already validated.
type Fill struct {
	Symbol   string
	Side     Side
	Product  Product
	Kind     ExecKind
	Quantity int64
	Price    float64
	Target   *float64
	StopLoss *float64
	Intent   Intent
	Time     time.Time
}

func pnlPtr(v float64) *float64 { return &v }
