package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"
)

// ErrorKind classifies a failed call
type ErrorKind string

const (
	ErrorKindBadRequest       ErrorKind = "bad_request"
	ErrorKindAuthentication   ErrorKind = "authentication"
	ErrorKindForbidden        ErrorKind = "forbidden"
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindRateLimited      ErrorKind = "rate_limited"
	ErrorKindUnavailable      ErrorKind = "unavailable"
	ErrorKindAPI              ErrorKind = "api_error"
	ErrorKindTransportFailure ErrorKind = "transport_failure"
	ErrorKindTimeout          ErrorKind = "timeout"
)

// Programmer errors. These are returned directly, never wrapped in a Result.
var (
	ErrMissingAPIKey          = errors.New("bridge: API key must be provided")
	ErrMissingID              = errors.New("bridge: resource identifier is required")
	ErrOperationNotSupported  = errors.New("bridge: operation not supported for resource")
	ErrUnknownResource        = errors.New("bridge: unknown resource")
	ErrInvalidEndpoint        = errors.New("bridge: endpoint must be a path relative to the base URL")
	ErrUnsupportedPayloadType = errors.New("bridge: payload cannot be encoded as a query string")
)

// APIError describes a failed call
type APIError struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"status_code"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	RetryAfter *int      `json:"retry_after,omitempty"`

	cause error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("Bridge API %s: %s", e.Kind, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("Bridge API error [%d] %s: %s (code: %s)", e.StatusCode, e.Kind, e.Message, e.Code)
	}
	return fmt.Sprintf("Bridge API error [%d] %s: %s", e.StatusCode, e.Kind, e.Message)
}

// Unwrap returns the transport error behind a transport or timeout failure
func (e *APIError) Unwrap() error { return e.cause }

// IsNotFound returns true if the error is a 404 not found error
func (e *APIError) IsNotFound() bool { return e.Kind == ErrorKindNotFound }

// IsUnauthorized returns true if the error is a 401 unauthorized error
func (e *APIError) IsUnauthorized() bool { return e.Kind == ErrorKindAuthentication }

// IsRateLimited returns true if the error is a 429 rate limit error
func (e *APIError) IsRateLimited() bool { return e.Kind == ErrorKindRateLimited }

// IsTimeout returns true if the call ran past its deadline
func (e *APIError) IsTimeout() bool { return e.Kind == ErrorKindTimeout }

// IsRetryable reports whether resubmitting the same call later may succeed
func (e *APIError) IsRetryable() bool {
	switch e.Kind {
	case ErrorKindRateLimited, ErrorKindUnavailable, ErrorKindTransportFailure, ErrorKindTimeout:
		return true
	}
	return false
}

// Classify maps an HTTP status to an APIError; 2xx yields nil.
// body is the decoded response body and header the response headers.
func Classify(status int, body any, header http.Header) *APIError {
	if status >= 200 && status < 300 {
		return nil
	}

	msg, code := errorFields(body)
	e := &APIError{StatusCode: status, Code: code}

	switch status {
	case http.StatusBadRequest:
		e.Kind, e.Message = ErrorKindBadRequest, orDefault(msg, "Bad request")
	case http.StatusUnauthorized:
		e.Kind, e.Message = ErrorKindAuthentication, "Invalid API key"
	case http.StatusForbidden:
		e.Kind, e.Message = ErrorKindForbidden, orDefault(msg, "Forbidden")
	case http.StatusNotFound:
		e.Kind, e.Message = ErrorKindNotFound, "Resource not found"
	case http.StatusTooManyRequests:
		e.Kind, e.Message = ErrorKindRateLimited, header.Get("X-RateLimit-Reset")
		if secs, ok := retryAfterSeconds(header); ok {
			e.RetryAfter = &secs
		}
	case http.StatusServiceUnavailable:
		e.Kind, e.Message = ErrorKindUnavailable, "Service temporarily unavailable"
	default:
		e.Kind, e.Message = ErrorKindAPI, orDefault(msg, "API request failed")
	}
	return e
}

// errorFields extracts message and code from an error body. A string body
// holding JSON is parsed once more.
func errorFields(body any) (string, string) {
	switch b := body.(type) {
	case Attributes:
		return b.String("message"), b.String("code")
	case map[string]any:
		return Attributes(b).String("message"), Attributes(b).String("code")
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(b), &parsed); err == nil {
			return Attributes(parsed).String("message"), Attributes(parsed).String("code")
		}
	}
	return "", ""
}

// retryAfterSeconds parses Retry-After as integer seconds
func retryAfterSeconds(header http.Header) (int, bool) {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return secs, true
}

// transportError classifies a failure that produced no HTTP response
func transportError(err error) *APIError {
	e := &APIError{Kind: ErrorKindTransportFailure, Message: err.Error(), cause: err}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		e.Kind, e.Message = ErrorKindTimeout, "request timed out"
	case errors.Is(err, context.Canceled):
		e.Message = "request cancelled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		e.Message = "circuit breaker open: " + err.Error()
	}
	return e
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
