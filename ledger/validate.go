package ledger

// Validate checks a manual order request against the current market price.
// The entry price for target/stoploss validation is the limit price for limit
// orders, otherwise the market price. Trigger and limit-fill paths never go
// through here; they only reduce already-valid positions.
func Validate(req OrderRequest, marketPrice float64) error {
	if req.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if req.Kind == Limit && req.LimitPrice <= 0 {
		return ErrInvalidPrice
	}

	entry := marketPrice
	if req.Kind == Limit {
		entry = req.LimitPrice
	}

	if req.Side == Buy {
		if req.Target != nil && *req.Target <= entry {
			return ErrInvalidTargetStoploss
		}
		if req.StopLoss != nil && *req.StopLoss >= entry {
			return ErrInvalidTargetStoploss
		}
		return nil
	}

	// Short entries invert the inequalities.
	if req.Target != nil && *req.Target >= entry {
		return ErrInvalidTargetStoploss
	}
	if req.StopLoss != nil && *req.StopLoss <= entry {
		return ErrInvalidTargetStoploss
	}
	return nil
}

// RestsAtMarket reports whether a limit order must rest: a BUY limit below
// the market, or a SELL limit above it. Anything else crosses immediately.
func RestsAtMarket(req OrderRequest, marketPrice float64) bool {
	if req.Kind != Limit {
		return false
	}
	if req.Side == Buy {
		return req.LimitPrice < marketPrice
	}
	return req.LimitPrice > marketPrice
}

// LimitCrossed reports whether a resting limit order's condition holds at
// price: BUY fills at or below the limit, SELL at or above.
func LimitCrossed(o Order, price float64) bool {
	if o.Side == Buy {
		return price <= o.Price
	}
	return price >= o.Price
}
