package gate

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMissing       = "gate_token_missing"
	TextCodeTokenMalformed     = "gate_token_malformed"
	TextCodeTokenPayload       = "gate_token_payload_invalid"
	TextCodeTokenEmpty         = "gate_token_empty"
	TextCodeTokenExpired       = "gate_token_expired"
	TextCodeInvalidExpiration  = "gate_invalid_expiration"
	TextCodeInvalidLogin       = "gate_invalid_login_payload"
	TextCodeInvalidHandoff     = "gate_invalid_token_handoff"
	TextCodeInvalidAccount     = "gate_invalid_account_payload"
	TextCodeAuthenticatorUnset = "gate_authenticator_missing"
)

// ErrTokenMissing is returned when no access token is stored.
var ErrTokenMissing = errors.New("no access token stored", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token does not have three segments.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenPayload is returned when the payload segment is not base64url JSON.
var ErrTokenPayload = errors.New("token payload is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenPayload).
	WithCode(errors.CodeUnauthorized)

// ErrTokenEmpty is returned when the payload decodes to no claims.
var ErrTokenEmpty = errors.New("token payload is empty", errors.CategoryAuth).
	WithTextCode(TextCodeTokenEmpty).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned by AuthState.Check when the exp claim is not in
// the future.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidExpiration is returned when exp is present but not numeric.
var ErrInvalidExpiration = errors.New("token exp claim is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidExpiration).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidLoginPayload wraps sign in form validation failures.
var ErrInvalidLoginPayload = errors.New("invalid sign in payload", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidLogin).
	WithCode(errors.CodeBadRequest)

// ErrInvalidTokenHandoff wraps token handoff validation failures.
var ErrInvalidTokenHandoff = errors.New("invalid token handoff payload", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidHandoff).
	WithCode(errors.CodeBadRequest)

// ErrInvalidAccountPayload wraps password reset and invitation validation failures.
var ErrInvalidAccountPayload = errors.New("invalid account payload", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidAccount).
	WithCode(errors.CodeBadRequest)

// ErrAuthenticatorMissing is returned by the controller when no login collaborator is set.
var ErrAuthenticatorMissing = errors.New("no authenticator configured", errors.CategoryInternal).
	WithTextCode(TextCodeAuthenticatorUnset).
	WithCode(errors.CodeInternal)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for structurally broken tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.TextCode {
		case TextCodeTokenMalformed, TextCodeTokenPayload, TextCodeTokenEmpty:
			return true
		}
	}
	return strings.Contains(err.Error(), "token is malformed")
}

// WrapSentinel returns a copy of base that carries source and metadata.
// The result still matches base with errors.Is.
func WrapSentinel(base *errors.Error, source error, metadata ...map[string]any) error {
	clone := base.Clone()
	if clone == nil {
		return base
	}
	clone.Source = source
	for _, m := range metadata {
		clone = clone.WithMetadata(m)
	}
	return &sentinelError{err: clone, base: base}
}

type sentinelError struct {
	err  *errors.Error
	base *errors.Error
}

func (e *sentinelError) Error() string { return e.err.Error() }

func (e *sentinelError) Unwrap() error { return e.err }

func (e *sentinelError) Is(target error) bool {
	t, ok := target.(*errors.Error)
	return ok && t == e.base
}
