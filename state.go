package gate

import (
	"time"

	"github.com/goliatone/go-errors"
)

var _ AuthChecker = (*AuthState)(nil)

// AuthState decides whether the stored token authenticates the visitor.
// Every call re-reads the store.
type AuthState struct {
	store  TokenStore
	codec  *TokenCodec
	now    func() time.Time
	logger Logger
}

// NewAuthState creates an AuthState over store.
func NewAuthState(store TokenStore, opts ...Option) *AuthState {
	o := applyOptions(opts...)
	return &AuthState{
		store:  store,
		codec:  o.codec,
		now:    o.now,
		logger: o.logger,
	}
}

// IsAuthenticated reports whether a decodable, unexpired token is stored.
func (a *AuthState) IsAuthenticated() bool {
	err := a.Check()
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrTokenMissing):
	case IsTokenExpiredError(err):
		a.logger.Info("stored token expired, auth cleared", "error", err)
	case IsMalformedError(err):
		a.logger.Debug("stored token is not decodable", "error", err)
	default:
		a.logger.Debug("stored token rejected", "error", err)
	}
	return false
}

// Check returns nil when the stored token authenticates the visitor, and the
// reason otherwise. An expired token is cleared from both lifetimes before
// ErrTokenExpired is returned. A token without exp never expires here; expiry
// of such tokens is left to the issuer.
func (a *AuthState) Check() error {
	token, ok := a.store.Read()
	if !ok {
		return ErrTokenMissing
	}

	claims, err := a.codec.Inspect(token)
	if err != nil {
		return err
	}

	exp, hasExp, err := claims.Expiration()
	if err != nil {
		return err
	}

	if hasExp && !a.now().Before(exp) {
		a.store.Clear()
		return WrapSentinel(ErrTokenExpired, nil, map[string]any{"exp": exp.Unix()})
	}

	return nil
}
