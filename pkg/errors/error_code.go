package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidWindow        ErrorCode = 102
	ErrCodeInvalidDateRange     ErrorCode = 103

	// Data errors (200-299)
	ErrCodeDataUnavailable     ErrorCode = 200
	ErrCodeInsufficientHistory ErrorCode = 201
	ErrCodeMalformedSeries     ErrorCode = 202
	ErrCodeQueryFailed         ErrorCode = 203

	// Store errors (300-399)
	ErrCodeStoreInitFailed  ErrorCode = 300
	ErrCodeStoreWriteFailed ErrorCode = 301

	// Market data errors (400-499)
	ErrCodeMarketDataFetchFailed ErrorCode = 400
	ErrCodeMarketDataWriteFailed ErrorCode = 401
	ErrCodeMarketDataParseFailed ErrorCode = 402
	ErrCodeInvalidProvider       ErrorCode = 403
)
