package domain

import "errors"

// Shared error taxonomy for price estimation and trade finding. Callers match
// these with errors.Is/errors.As; wrapped cause text is kept verbatim for
// diagnostics and must never be parsed for control decisions.
var (
	// ErrNoLiquidity means no candidate route can fill the query at all.
	ErrNoLiquidity = errors.New("no liquidity")

	// ErrRateLimited means the upstream liquidity source throttled us.
	ErrRateLimited = errors.New("rate limited")
)

// UnsupportedOrderTypeError rejects a query whose order kind the liquidity
// source cannot serve.
type UnsupportedOrderTypeError struct {
	Reason string
}

func (e *UnsupportedOrderTypeError) Error() string {
	return "unsupported order type: " + e.Reason
}

// ProtocolInternalError aborts a whole query because an upstream collaborator
// (gas price or pool fetch) failed; no partial result is produced.
type ProtocolInternalError struct {
	Cause error
}

func (e *ProtocolInternalError) Error() string {
	return "protocol internal error: " + e.Cause.Error()
}

func (e *ProtocolInternalError) Unwrap() error {
	return e.Cause
}
