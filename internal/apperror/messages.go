package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:       "Invalid input provided",
	CodeConfigurationError: "Configuration error",
	CodeServiceTimeout:     "Service request timeout",
	CodeRateLimitExceeded:  "Rate limit exceeded",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeBrokerConnectionFailed: "Failed to reach broker API",
	CodeBrokerAPIError:         "Broker API returned an error",
	CodeMalformedResponse:      "Broker response could not be decoded",
	CodeMissingPriceField:      "Broker response is missing the price field",
	CodeInvalidPrice:           "Broker quoted a non-positive or non-numeric price",

	CodeSpreadCalculationError: "Spread calculation error",
	CodePollCycleFault:         "Polling cycle fault",

	CodeCircuitOpen: "Circuit breaker is open",
}
