package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Broker adapter error codes
const (
	CodeBrokerConnectionFailed Code = "BROKER_CONNECTION_FAILED"
	CodeBrokerAPIError         Code = "BROKER_API_ERROR"
	CodeMalformedResponse      Code = "MALFORMED_RESPONSE"
	CodeMissingPriceField      Code = "MISSING_PRICE_FIELD"
	CodeInvalidPrice           Code = "INVALID_PRICE"
)

// Detection and execution error codes
const (
	CodeSpreadCalculationError Code = "SPREAD_CALCULATION_ERROR"
	CodePollCycleFault         Code = "POLL_CYCLE_FAULT"
)

// Circuit breaker error codes
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
