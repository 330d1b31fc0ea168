package ledger

// PositionSide is the direction of held exposure.
type PositionSide string

const (
	Long  PositionSide = "LONG"
	Short PositionSide = "SHORT"
)

// Position is netted exposure for one (symbol, product, side). At most one
// LONG and one SHORT position exist per (symbol, product) pair; same-side
// adds are merged by weighted-average entry price.
type Position struct {
	Symbol   string
	Product  Product
	Side     PositionSide
	Quantity int64
	AvgPrice float64
	Target   *float64
	StopLoss *float64
}

// Opposite returns the side a fill offsets against.
func (s Side) opposite() PositionSide {
	if s == Buy {
		return Short
	}
	return Long
}

// same returns the side a residual fill opens or adds to.
func (s Side) same() PositionSide {
	if s == Buy {
		return Long
	}
	return Short
}

// closeSide is the order side that closes a position of side s.
func (s PositionSide) closeSide() Side {
	if s == Long {
		return Sell
	}
	return Buy
}
