package shared

// DomainError is an error with a stable machine-readable code. The HTTP
// layer maps codes to statuses, so codes are part of the API.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is compares by code, so errors.Is matches a sentinel even after the
// message has been reworded or the error copied.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError returns a DomainError with code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels shared by every bounded context. Refund specific errors live in
// the refund package.
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrConflict     = NewDomainError("CONFLICT", "Resource is locked by another operation")
	ErrUpstream     = NewDomainError("UPSTREAM_ERROR", "Upstream service request failed")
)
