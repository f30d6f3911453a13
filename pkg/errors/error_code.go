package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidStdDev        ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105
	ErrCodeInvalidSeries        ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound ErrorCode = 200
	ErrCodeQueryFailed  ErrorCode = 201

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Strategy errors (400-499)
	ErrCodeUnsupportedStrategy ErrorCode = 400
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeInvalidRisk         ErrorCode = 402

	// Trading errors (500-599)
	ErrCodeInvalidOrder      ErrorCode = 500
	ErrCodeInvalidTransition ErrorCode = 501
	ErrCodeInvalidState      ErrorCode = 502
	ErrCodePositionNotFound  ErrorCode = 503

	// Storage errors (600-699)
	ErrCodeStorageInitFailed  ErrorCode = 600
	ErrCodeStorageWriteFailed ErrorCode = 601
	ErrCodeStorageReadFailed  ErrorCode = 602

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701

	// Notification errors (800-899)
	ErrCodeNotificationFailed ErrorCode = 800
)
