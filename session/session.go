// Package session keeps a signed server session cookie next to the visitor's
// tokens. It is independent from the gate: the gate never reads it, and the
// signing key is the only secret it needs.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	gate "github.com/goliatone/go-auth-gate"
)

const (
	DefaultCookieName = "session"
	DefaultTTL        = 7 * 24 * time.Hour
)

const (
	TextCodeSigningKey = "session_signing_key_missing"
	TextCodeInvalid    = "session_invalid"
)

// ErrSigningKeyMissing is returned when no signing key is configured.
var ErrSigningKeyMissing = errors.New("missing session signing key", errors.CategoryInternal).
	WithTextCode(TextCodeSigningKey).
	WithCode(errors.CodeInternal)

// ErrInvalidSession is returned when a session cookie fails verification.
var ErrInvalidSession = errors.New("invalid session", errors.CategoryAuth).
	WithTextCode(TextCodeInvalid).
	WithCode(errors.CodeUnauthorized)

// Payload is the content of a session.
type Payload struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	Created      time.Time `json:"created"`
	Expiration   time.Time `json:"expiration"`
	ExpiresIn    int64     `json:"expiresIn"`
}

type claims struct {
	jwt.RegisteredClaims
	Payload
}

// Config holds session options. SigningKey is required.
type Config struct {
	SigningKey []byte
	CookieName string
	TTL        time.Duration
	Path       string
	Secure     bool
}

var _ gate.SessionHook = (*Manager)(nil)

// Manager signs, verifies and stores sessions.
type Manager struct {
	key    []byte
	cfg    Config
	now    func() time.Time
	parser *jwt.Parser
	codec  *gate.TokenCodec
}

// NewManager validates cfg and creates a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrSigningKeyMissing
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	m := &Manager{
		key:   cfg.SigningKey,
		cfg:   cfg,
		now:   time.Now,
		codec: gate.NewTokenCodec(),
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m, nil
}

// WithClock replaces the clock used for signing and verification.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// Sign returns the signed form of p, valid for the configured TTL.
func (m *Manager) Sign(p Payload) (string, error) {
	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
		Payload: p,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session")
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its payload.
func (m *Manager) Verify(token string) (*Payload, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	c := &claims{}
	parsed, err := m.parser.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, gate.WrapSentinel(ErrInvalidSession, err)
	}
	return &c.Payload, nil
}

// Create signs p and stores it in a cookie expiring at p.Expiration, or after
// the configured TTL when p has no expiration.
func (m *Manager) Create(c *fiber.Ctx, p Payload) error {
	signed, err := m.Sign(p)
	if err != nil {
		return err
	}
	expires := p.Expiration
	if expires.IsZero() {
		expires = m.now().Add(m.cfg.TTL)
	}
	c.Cookie(m.cookie(signed, expires))
	return nil
}

// Update extends the lifetime of the current session cookie. It returns nil
// when there is no valid session.
func (m *Manager) Update(c *fiber.Ctx) *Payload {
	raw := c.Cookies(m.cfg.CookieName)
	p, err := m.Verify(raw)
	if err != nil {
		return nil
	}
	c.Cookie(m.cookie(raw, m.now().Add(m.cfg.TTL)))
	return p
}

// Delete expires the session cookie.
func (m *Manager) Delete(c *fiber.Ctx) {
	c.Cookie(m.cookie("", time.Unix(0, 0)))
}

// OnSignIn creates a session holding pair. The session expires with the
// access token when that comes first. UserID is set when the token subject
// is a UUID.
func (m *Manager) OnSignIn(c *fiber.Ctx, pair gate.TokenPair, remember bool) error {
	now := m.now()
	p := Payload{
		ID:           uuid.NewString(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Created:      now,
		Expiration:   now.Add(m.cfg.TTL),
		ExpiresIn:    int64(m.cfg.TTL / time.Second),
	}
	if decoded, ok := m.codec.Decode(pair.AccessToken); ok {
		if id, ok := decoded.UserUUID(); ok {
			p.UserID = id.String()
		}
		if exp, ok, _ := decoded.Expiration(); ok && exp.Before(p.Expiration) {
			p.Expiration = exp
			p.ExpiresIn = int64(exp.Sub(now) / time.Second)
		}
	}
	return m.Create(c, p)
}

// OnSignOut deletes the session.
func (m *Manager) OnSignOut(c *fiber.Ctx) {
	m.Delete(c)
}

func (m *Manager) cookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     m.cfg.Path,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
