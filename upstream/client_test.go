package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-auth-gate/upstream"
)

func newServer(t *testing.T, handler http.HandlerFunc) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return upstream.New(upstream.Config{BaseURL: srv.URL + "/"})
}

func richError(t *testing.T, err error) *errors.Error {
	t.Helper()
	require.Error(t, err)
	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	return richErr
}

func TestClient_Login(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/authenticate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"a.b.c","refreshToken":"r"}`))
	})

	pair, err := client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", pair.AccessToken)
	assert.Equal(t, "r", pair.RefreshToken)
}

func TestClient_LoginWrappedData(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"accessToken":"x.y.z"}}`))
	})

	pair, err := client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "x.y.z", pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)
}

func TestClient_LoginErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		base    *errors.Error
		message string
	}{
		{"rejected", http.StatusUnauthorized, `{"message":"Invalid credentials"}`, upstream.ErrRejected, "Invalid credentials"},
		{"server error", http.StatusInternalServerError, `oops`, upstream.ErrUnavailable, "oops"},
		{"no token", http.StatusOK, `{}`, upstream.ErrBadResponse, "missing access token"},
		{"not json", http.StatusOK, `<html>`, upstream.ErrBadResponse, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Login(context.Background(), "ada@example.com", "secret")
			assert.ErrorIs(t, err, tt.base)
			richErr := richError(t, err)
			assert.Equal(t, tt.base.TextCode, richErr.TextCode)
			assert.Equal(t, tt.base.Category, richErr.Category)

			apiErr, ok := richErr.Source.(*upstream.APIError)
			require.True(t, ok)
			assert.Equal(t, "authenticate", apiErr.Operation)
			if tt.message != "" {
				assert.Equal(t, tt.message, apiErr.Message)
			}
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := upstream.New(upstream.Config{BaseURL: srv.URL, Timeout: time.Second})
	err := client.ForgotPassword(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, upstream.ErrUnavailable)
	assert.Equal(t, upstream.TextCodeUnavailable, richError(t, err).TextCode)
}

func TestClient_AccountActions(t *testing.T) {
	var paths []string
	var bodies []map[string]any
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.AcceptInvitation(ctx, "inv", ""))
	require.NoError(t, client.ForgotPassword(ctx, "ada@example.com"))
	require.NoError(t, client.ResetPassword(ctx, "rst", "new-password"))

	assert.Equal(t, []string{
		"/api/auth/accept-invitation",
		"/api/auth/forgot-password",
		"/api/auth/reset-password",
	}, paths)
	assert.Equal(t, "inv", bodies[0]["token"])
	assert.NotContains(t, bodies[0], "password")
	assert.Equal(t, "ada@example.com", bodies[1]["email"])
	assert.Equal(t, "new-password", bodies[2]["password"])
	assert.Equal(t, "new-password", bodies[2]["confirmPassword"])
}

func TestClient_AccountActionRejected(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	})

	err := client.ResetPassword(context.Background(), "rst", "new-password")
	assert.ErrorIs(t, err, upstream.ErrRejected)
	assert.True(t, errors.IsAuth(err))

	apiErr, ok := richError(t, err).Source.(*upstream.APIError)
	require.True(t, ok)
	assert.Equal(t, "reset_password", apiErr.Operation)
	assert.Equal(t, "token expired", apiErr.Message)
}
