package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Catalog error kinds. Match them with errors.Is.
var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrBadRequest    = errors.New("bad request")
	ErrUnreachable   = errors.New("service unreachable")
	ErrMalformed     = errors.New("malformed response")
)

var quotaReasons = []string{"quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded"}

// CatalogError describes a failed catalog call.
type CatalogError struct {
	Kind    error  // one of the Err* kinds above
	Service string // "youtube" or "gemini"
	Status  int    // HTTP status, 0 when no response was received
	Reason  string // provider reason or status string
	Err     error
}

func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Service, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CatalogError) Unwrap() error { return e.Err }

// Is matches the error kind.
func (e *CatalogError) Is(target error) bool { return target == e.Kind }

// UserMessage returns a message suitable for display.
func (e *CatalogError) UserMessage() string {
	switch e.Kind {
	case ErrQuotaExceeded:
		return "The music service quota has been exceeded. Please try again later."
	case ErrBadRequest:
		if e.Reason != "" {
			return "The request was rejected: " + e.Reason
		}
		return "The request was rejected. Check your API key and input."
	case ErrMalformed:
		return "The music service returned an unexpected response."
	default:
		return "Could not reach the music service. Check your connection and try again."
	}
}

// UserMessage returns the display message for err, falling back to its text.
func UserMessage(err error) string {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}
	return err.Error()
}

// classifyStatus maps an HTTP status and provider reason to a kind.
func classifyStatus(status int, reasons ...string) error {
	for _, r := range reasons {
		if slices.Contains(quotaReasons, r) || r == "RESOURCE_EXHAUSTED" {
			return ErrQuotaExceeded
		}
	}
	switch {
	case status == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case status >= 400 && status < 500:
		return ErrBadRequest
	default:
		return ErrUnreachable
	}
}

func badRequest(service, reason string) *CatalogError {
	return &CatalogError{Kind: ErrBadRequest, Service: service, Reason: reason}
}

// transportError wraps a failure that produced no response.
func transportError(service string, err error) *CatalogError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CatalogError{Kind: ErrUnreachable, Service: service, Reason: "request cancelled", Err: err}
	}
	return &CatalogError{Kind: ErrUnreachable, Service: service, Err: err}
}

// decodeError reports a body that could not be decoded as [ErrMalformed].
func decodeError(service string, status int, err error) (*CatalogError, bool) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &CatalogError{Kind: ErrMalformed, Service: service, Status: status, Err: err}, true
	}
	return nil, false
}
