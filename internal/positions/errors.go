package positions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// KindNetwork indicates the request never reached the backend (connection reset, unreachable, ...)
	KindNetwork ErrorKind = iota
	// KindTimeout indicates the request timed out
	KindTimeout
	// KindConnectionRefused indicates the backend refused the connection
	KindConnectionRefused
	// KindDNS indicates a DNS resolution failure
	KindDNS
	// KindServerValidation indicates a non-2xx response carrying a JSON "message"
	KindServerValidation
	// KindHTTP indicates a non-2xx response without a usable message
	KindHTTP
	// KindClientValidation indicates a local check rejected the row before submission
	KindClientValidation
	// KindParse indicates a response body that could not be decoded
	KindParse
	// KindCanceled indicates the caller canceled the request (superseded lookup, shutdown)
	KindCanceled
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "Network Error"
	case KindTimeout:
		return "Timeout"
	case KindConnectionRefused:
		return "Connection Refused"
	case KindDNS:
		return "DNS Error"
	case KindServerValidation:
		return "Server Validation Error"
	case KindHTTP:
		return "HTTP Error"
	case KindClientValidation:
		return "Validation Error"
	case KindParse:
		return "Parse Error"
	case KindCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is the error type returned by every backend operation in this package
type Error struct {
	Kind       ErrorKind // Category of error
	Message    string    // Human-readable message; verbatim server text for KindServerValidation
	StatusCode int       // HTTP status code (if applicable)
	Field      string    // Offending field for KindClientValidation
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error
func ClassifyNetworkError(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCanceled, Message: "request canceled", Err: err}
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Kind:    KindDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &Error{Kind: KindConnectionRefused, Message: "backend refused connection", Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}

	return &Error{Kind: KindNetwork, Message: "network error occurred", Err: err}
}

// NewNetworkError creates a transport-level error with automatic classification
func NewNetworkError(message string, err error) *Error {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &Error{Kind: KindNetwork, Message: message}
	}
	if classified.Kind != KindCanceled {
		classified.Message = message
	}
	return classified
}

// NewServerValidationError creates an error carrying the backend's message verbatim
func NewServerValidationError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindServerValidation,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewHTTPError creates an HTTP-level error for a response without a usable message
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindHTTP,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewClientValidationError creates an error for a row rejected before submission
func NewClientValidationError(field, message string) *Error {
	return &Error{
		Kind:    KindClientValidation,
		Message: message,
		Field:   field,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *Error {
	return &Error{
		Kind:    KindParse,
		Message: message,
		Err:     err,
	}
}

// errorBody is the JSON shape of backend error responses.
type errorBody struct {
	Message string `json:"message"`
}

// ErrorFromResponse converts a non-2xx response into an *Error. The body's
// "message" field is surfaced verbatim when present.
func ErrorFromResponse(statusCode int, body []byte) *Error {
	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if msg := strings.TrimSpace(eb.Message); msg != "" {
			return NewServerValidationError(statusCode, msg)
		}
	}
	return NewHTTPError(statusCode, fmt.Sprintf("unexpected status %d %s", statusCode, http.StatusText(statusCode)))
}

func kindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// IsNetworkError checks if an error is a transport error (including timeout, connection refused, DNS)
func IsNetworkError(err error) bool {
	kind, ok := kindOf(err)
	return ok && (kind == KindNetwork || kind == KindTimeout || kind == KindConnectionRefused || kind == KindDNS)
}

// IsServerValidationError checks if an error carries a backend validation message
func IsServerValidationError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindServerValidation
}

// IsHTTPError checks if an error is a bare HTTP status error
func IsHTTPError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindHTTP
}

// IsClientValidationError checks if an error came from local validation
func IsClientValidationError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindClientValidation
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindParse
}

// IsCanceled checks if an error stems from caller cancellation
func IsCanceled(err error) bool {
	kind, ok := kindOf(err)
	if ok {
		return kind == KindCanceled
	}
	return errors.Is(err, context.Canceled)
}

// UserMessage returns the text to show the user for err. Server and client
// validation messages are returned verbatim; transport problems get a short
// generic explanation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if !errors.As(err, &pe) {
		return err.Error()
	}

	switch pe.Kind {
	case KindServerValidation, KindClientValidation:
		return pe.Message
	case KindTimeout:
		return "Server not responding (timeout)"
	case KindConnectionRefused:
		return "Server refused connection - is the backend running?"
	case KindDNS:
		return "Cannot resolve server hostname"
	case KindNetwork:
		return "Network error - check connection"
	case KindHTTP:
		return fmt.Sprintf("Server error (HTTP %d)", pe.StatusCode)
	case KindParse:
		return "Failed to parse server response"
	case KindCanceled:
		return "Request canceled"
	default:
		return pe.Message
	}
}
