package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUpstream is used when the marketplace backend call fails
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeServiceUnavailable is used by the health check
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	// ErrCodeTimeout is used when the request deadline passes
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	ErrCodeConflict = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Refund workflow error codes
const (
	// ErrCodeRefundValidation is returned when a refund request breaks a
	// submission rule; the rule is carried in the error details
	ErrCodeRefundValidation      = "ERR_REFUND_VALIDATION"
	ErrCodeRefundSessionNotFound = "ERR_REFUND_SESSION_NOT_FOUND"
	ErrCodeRefundSessionClosed   = "ERR_REFUND_SESSION_CLOSED"
	ErrCodeRefundSessionNotReady = "ERR_REFUND_SESSION_NOT_READY"
	ErrCodeRefundSessionBusy     = "ERR_REFUND_SESSION_BUSY"
	ErrCodeRefundInProgress      = "ERR_REFUND_SUBMISSION_IN_PROGRESS"
	ErrCodeRefundLineNotFound    = "ERR_REFUND_LINE_NOT_FOUND"
	ErrCodeRefundLineNotIncluded = "ERR_REFUND_LINE_NOT_INCLUDED"
	ErrCodeRefundSerialIndex     = "ERR_REFUND_SERIAL_INDEX_OUT_OF_RANGE"
	ErrCodeRefundBankAccount     = "ERR_REFUND_BANK_ACCOUNT_NOT_FOUND"
	ErrCodeRefundTicketNotFound  = "ERR_REFUND_TICKET_NOT_FOUND"
	ErrCodeRefundOrderRefMissing = "ERR_REFUND_ORDER_REFERENCE_MISSING"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrCodeRateLimited is used when rate limit is exceeded
const ErrCodeRateLimited = "ERR_RATE_LIMITED"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeUpstream:           http.StatusBadGateway,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// Refund workflow
	ErrCodeRefundValidation:      http.StatusUnprocessableEntity,
	ErrCodeRefundSessionNotFound: http.StatusNotFound,
	ErrCodeRefundSessionClosed:   http.StatusGone,
	ErrCodeRefundSessionNotReady: http.StatusConflict,
	ErrCodeRefundSessionBusy:     http.StatusConflict,
	ErrCodeRefundInProgress:      http.StatusConflict,
	ErrCodeRefundLineNotFound:    http.StatusNotFound,
	ErrCodeRefundLineNotIncluded: http.StatusUnprocessableEntity,
	ErrCodeRefundSerialIndex:     http.StatusBadRequest,
	ErrCodeRefundBankAccount:     http.StatusUnprocessableEntity,
	ErrCodeRefundTicketNotFound:  http.StatusNotFound,
	ErrCodeRefundOrderRefMissing: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"CONFLICT":       ErrCodeConflict,
	"UPSTREAM_ERROR": ErrCodeUpstream,

	"REFUND_LINE_NOT_FOUND":            ErrCodeRefundLineNotFound,
	"REFUND_LINE_NOT_INCLUDED":         ErrCodeRefundLineNotIncluded,
	"REFUND_SERIAL_INDEX_OUT_OF_RANGE": ErrCodeRefundSerialIndex,
	"REFUND_BANK_ACCOUNT_NOT_FOUND":    ErrCodeRefundBankAccount,
	"REFUND_TICKET_NOT_FOUND":          ErrCodeRefundTicketNotFound,
	"REFUND_ORDER_REFERENCE_MISSING":   ErrCodeRefundOrderRefMissing,
	"REFUND_SESSION_NOT_FOUND":         ErrCodeRefundSessionNotFound,
	"REFUND_SESSION_CLOSED":            ErrCodeRefundSessionClosed,
	"REFUND_SESSION_NOT_READY":         ErrCodeRefundSessionNotReady,
	"REFUND_SESSION_BUSY":              ErrCodeRefundSessionBusy,
	"REFUND_SUBMISSION_IN_PROGRESS":    ErrCodeRefundInProgress,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
