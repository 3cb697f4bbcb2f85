package errors

import "errors"

var (
	ErrOracleUnavailable   = errors.New("position oracle unavailable")
	ErrInvalidMove         = errors.New("illegal move in game record")
	ErrMalformedGameRecord = errors.New("malformed game record")
	ErrBookLookup          = errors.New("opening book lookup failed")
	ErrCacheMiss           = errors.New("analysis cache miss")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInternal            = errors.New("internal error")
)
