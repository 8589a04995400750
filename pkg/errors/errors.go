package errors

import "fmt"

// ErrorType classifies the failures the gallery core can report
type ErrorType string

const (
	// fetch-side failures
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeUnknown    ErrorType = "unknown"

	// result-lifecycle failures
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeIndexRange  ErrorType = "index_range"
	ErrorTypeEmptyResult ErrorType = "empty_result"
)

// Error represents a typed failure with enough context to render a
// specific user-facing message (the offending URL or token)
type Error struct {
	Type    ErrorType
	Message string
	Code    int    // HTTP status code, 0 when not applicable
	URL     string // offending URL or token, may be empty
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// NewFetchError creates a fetch failure annotated with the URL that caused it
func NewFetchError(errorType ErrorType, message string, code int, url string) *Error {
	return &Error{Type: errorType, Message: message, Code: code, URL: url}
}

// NotFound reports an unknown or expired token
func NotFound(token string) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: "unknown or expired token", URL: token}
}

// IndexOutOfRange reports a single-item request beyond the stored list
func IndexOutOfRange(token string, index, size int) *Error {
	return &Error{
		Type:    ErrorTypeIndexRange,
		Message: fmt.Sprintf("index %d out of range (have %d images)", index, size),
		URL:     token,
	}
}

// EmptyResult reports an archive request for a token with no images
func EmptyResult(token string) *Error {
	return &Error{Type: ErrorTypeEmptyResult, Message: "no images to archive", URL: token}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // server errors
		return true
	default:
		return false
	}
}
