package upstream

import (
	"fmt"

	"github.com/goliatone/go-errors"

	gate "github.com/goliatone/go-auth-gate"
)

const (
	TextCodeRejected    = "upstream_rejected"
	TextCodeUnavailable = "upstream_unavailable"
	TextCodeBadResponse = "upstream_bad_response"
)

// ErrRejected is returned when the API refuses the credentials or payload.
var ErrRejected = errors.New("request rejected by auth API", errors.CategoryAuth).
	WithTextCode(TextCodeRejected).
	WithCode(errors.CodeUnauthorized)

// ErrUnavailable is returned when the API cannot be reached or fails.
var ErrUnavailable = errors.New("auth API unavailable", errors.CategoryOperation).
	WithTextCode(TextCodeUnavailable).
	WithCode(502)

// ErrBadResponse is returned when the API answers with an unexpected body.
var ErrBadResponse = errors.New("unexpected auth API response", errors.CategoryOperation).
	WithTextCode(TextCodeBadResponse).
	WithCode(502)

// APIError captures the normalized details of a failed API call.
type APIError struct {
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *APIError) Error() string {
	if e == nil {
		return "auth API error"
	}
	if e.Message != "" {
		return fmt.Sprintf("%s failed (%d): %s", e.Operation, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s failed (%d)", e.Operation, e.Status)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *APIError) Metadata() map[string]any {
	meta := map[string]any{"operation": e.Operation}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Message != "" {
		meta["message"] = e.Message
	}
	return meta
}

func wrapAPIError(base *errors.Error, apiErr *APIError) error {
	return gate.WrapSentinel(base, apiErr, apiErr.Metadata())
}
