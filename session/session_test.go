package session_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate "github.com/goliatone/go-auth-gate"
	"github.com/goliatone/go-auth-gate/session"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.Config{SigningKey: []byte("test-signing-key")})
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSigningKey(t *testing.T) {
	m, err := session.NewManager(session.Config{})
	assert.Nil(t, m)
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, session.TextCodeSigningKey, richErr.TextCode)
}

func TestManager_SignVerify(t *testing.T) {
	m := newManager(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	signed, err := m.Sign(session.Payload{
		ID:          "abc",
		AccessToken: "access",
		Created:     created,
		ExpiresIn:   60,
	})
	require.NoError(t, err)
	assert.Len(t, strings.Split(signed, "."), 3)

	payload, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "abc", payload.ID)
	assert.Equal(t, "access", payload.AccessToken)
	assert.True(t, created.Equal(payload.Created))
	assert.Equal(t, int64(60), payload.ExpiresIn)
}

func TestManager_VerifyRejectsTampering(t *testing.T) {
	m := newManager(t)
	signed, err := m.Sign(session.Payload{ID: "abc"})
	require.NoError(t, err)

	other, err := session.NewManager(session.Config{SigningKey: []byte("another-key")})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, session.ErrInvalidSession)

	_, err = m.Verify("")
	assert.ErrorIs(t, err, session.ErrInvalidSession)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestManager_VerifyRejectsExpired(t *testing.T) {
	m, err := session.NewManager(session.Config{SigningKey: []byte("k"), TTL: time.Hour})
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	m.WithClock(func() time.Time { return past })
	signed, err := m.Sign(session.Payload{ID: "abc"})
	require.NoError(t, err)

	m.WithClock(time.Now)
	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestManager_SignInOutHooks(t *testing.T) {
	m := newManager(t)
	app := fiber.New()

	app.Get("/in", func(c *fiber.Ctx) error {
		return m.OnSignIn(c, gate.TokenPair{AccessToken: "a.b.c", RefreshToken: "r"}, true)
	})
	app.Get("/out", func(c *fiber.Ctx) error {
		m.OnSignOut(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/in", nil))
	require.NoError(t, err)
	require.Len(t, resp.Cookies(), 1)

	cookie := resp.Cookies()[0]
	assert.Equal(t, session.DefaultCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	payload, err := m.Verify(cookie.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, "r", payload.RefreshToken)
	assert.Equal(t, int64(session.DefaultTTL/time.Second), payload.ExpiresIn)

	resp, err = app.Test(httptest.NewRequest("GET", "/out", nil))
	require.NoError(t, err)
	require.Len(t, resp.Cookies(), 1)
	assert.Empty(t, resp.Cookies()[0].Value)
	assert.True(t, resp.Cookies()[0].Expires.Before(time.Now()))
}

func TestManager_Update(t *testing.T) {
	m := newManager(t)
	signed, err := m.Sign(session.Payload{ID: "abc"})
	require.NoError(t, err)

	var got *session.Payload
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = m.Update(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", session.DefaultCookieName+"="+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.ID)
	require.Len(t, resp.Cookies(), 1)
	assert.True(t, resp.Cookies()[0].Expires.After(time.Now().Add(6*24*time.Hour)))

	got = nil
	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, resp.Cookies())
}

func TestManager_SignInRecordsUserUUID(t *testing.T) {
	m := newManager(t)
	const userID = "8f14e45f-ceea-4f6a-9c2b-1a7d2f3b9e10"

	tests := []struct {
		name     string
		sub      string
		expected string
	}{
		{"uuid subject", userID, userID},
		{"opaque subject", "user-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, err := gate.EncodeUnsigned(map[string]any{"sub": tt.sub})
			require.NoError(t, err)

			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return m.OnSignIn(c, gate.TokenPair{AccessToken: access}, false)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			require.Len(t, resp.Cookies(), 1)

			payload, err := m.Verify(resp.Cookies()[0].Value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, payload.UserID)
		})
	}
}

func TestMiddleware(t *testing.T) {
	m := newManager(t)
	signed, err := m.Sign(session.Payload{ID: "abc"})
	require.NoError(t, err)

	var current *session.Payload
	var found bool
	app := fiber.New()
	app.Use(session.Middleware(m))
	app.Get("/", func(c *fiber.Ctx) error {
		current, found = session.FromLocals(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", session.DefaultCookieName+"="+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.True(t, found)
	assert.Equal(t, "abc", current.ID)
	require.Len(t, resp.Cookies(), 1)
	assert.True(t, resp.Cookies()[0].Expires.After(time.Now().Add(6*24*time.Hour)))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", session.DefaultCookieName+"=tampered")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.False(t, found)
	assert.Empty(t, resp.Cookies())
}
