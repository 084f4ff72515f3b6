package gate_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	gate "github.com/goliatone/go-auth-gate"
)

// MockAuthenticator implements gate.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (gate.TokenPair, error) {
	args := m.Called(ctx, identifier, password)
	return args.Get(0).(gate.TokenPair), args.Error(1)
}

// MockAccountActions implements gate.AccountActions
type MockAccountActions struct {
	mock.Mock
}

func (m *MockAccountActions) AcceptInvitation(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

func (m *MockAccountActions) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAccountActions) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

// MockSessionHook implements gate.SessionHook
type MockSessionHook struct {
	mock.Mock
}

func (m *MockSessionHook) OnSignIn(c *fiber.Ctx, pair gate.TokenPair, remember bool) error {
	args := m.Called(c, pair, remember)
	return args.Error(0)
}

func (m *MockSessionHook) OnSignOut(c *fiber.Ctx) {
	m.Called(c)
}

// MockStorage implements gate.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Get(lifetime gate.Lifetime, key string) (string, bool) {
	args := m.Called(lifetime, key)
	return args.String(0), args.Bool(1)
}

func (m *MockStorage) Set(lifetime gate.Lifetime, key, value string) {
	m.Called(lifetime, key, value)
}

func (m *MockStorage) Remove(lifetime gate.Lifetime, key string) {
	m.Called(lifetime, key)
}

// countingStore wraps a TokenStore and counts Clear calls.
type countingStore struct {
	gate.TokenStore
	clears int
}

func (s *countingStore) Clear() {
	s.clears++
	s.TokenStore.Clear()
}

// stubAuth and stubRoles let guard tests bypass storage.
type stubAuth bool

func (s stubAuth) IsAuthenticated() bool { return bool(s) }

type stubRoles gate.Role

func (s stubRoles) Resolve() gate.Role { return gate.Role(s) }

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	token, err := gate.EncodeUnsigned(claims)
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T, role string) string {
	t.Helper()
	return makeToken(t, map[string]any{
		"sub":  "user-1",
		"Role": role,
		"exp":  fixedNow.Add(time.Hour).Unix(),
	})
}

func expiredToken(t *testing.T, role string) string {
	t.Helper()
	return makeToken(t, map[string]any{
		"sub":  "user-1",
		"Role": role,
		"exp":  fixedNow.Add(-time.Second).Unix(),
	})
}

// fakeRouterContext records the cookie traffic of a go-router request.
// Methods the tests never reach fall through to the nil embedded Context.
type fakeRouterContext struct {
	router.Context
	requestCookies map[string]string
	written        []*router.Cookie
}

func newFakeRouterContext(cookies map[string]string) *fakeRouterContext {
	if cookies == nil {
		cookies = map[string]string{}
	}
	return &fakeRouterContext{requestCookies: cookies}
}

func (f *fakeRouterContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := f.requestCookies[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (f *fakeRouterContext) Cookie(cookie *router.Cookie) {
	f.written = append(f.written, cookie)
}

func (f *fakeRouterContext) cookie(name string) *router.Cookie {
	var last *router.Cookie
	for _, c := range f.written {
		if c.Name == name {
			last = c
		}
	}
	return last
}
