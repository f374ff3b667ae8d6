package ports

import "errors"

// Standard application-level errors. Adapters and the orchestrator wrap
// underlying failures with these so callers can branch with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Order validation errors, raised at the orchestration boundary before
	// the ledger is touched.
	ErrUnknownSymbol       = errors.New("unknown trading symbol")
	ErrLotSizeOutOfRange   = errors.New("lot size outside allowed bounds")
	ErrInsufficientBalance = errors.New("insufficient balance for trade")
	ErrMaxPositionsReached = errors.New("maximum open positions reached")

	// Data supplier errors.
	ErrFeedUnavailable  = errors.New("market data feed is unavailable")
	ErrConnectionFailed = errors.New("failed to connect to the data source")

	// Database errors.
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
