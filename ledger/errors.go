package ledger

import "errors"

// Rejection taxonomy. All are local, recoverable, user-facing refusals: the
// ledger is left untouched for the rejected leg and the caller re-submits
// with corrected parameters.
var (
	ErrInvalidQuantity       = errors.New("quantity must be a positive integer")
	ErrInvalidPrice          = errors.New("limit price must be positive")
	ErrInvalidTargetStoploss = errors.New("target/stoploss inconsistent with entry price")
	ErrInsufficientFunds     = errors.New("insufficient funds")
)
