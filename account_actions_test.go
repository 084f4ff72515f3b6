package gate_test

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	gate "github.com/goliatone/go-auth-gate"
)

func newAccountsApp(accounts gate.AccountActions, sink gate.ActivitySink) *fiber.App {
	ctrl := gate.NewHTTPController(new(MockAuthenticator), gate.DefaultRoutes(), gate.DefaultCookieOptions())
	ctrl.Views = nil
	ctrl.Logger = gate.NopLogger{}
	ctrl.Accounts = accounts
	ctrl.Activity = sink

	app := fiber.New()
	ctrl.Register(app)
	return app
}

var (
	errRejected    = errors.New("request rejected", errors.CategoryAuth)
	errUnavailable = errors.New("service down", errors.CategoryOperation)
)

func TestHTTPController_AccountRoutesNeedAccounts(t *testing.T) {
	app := newAccountsApp(nil, nil)

	for _, path := range []string{"/auth/password/forgot", "/auth/password/reset", "/auth/invitation/accept"} {
		resp, err := app.Test(jsonRequest("POST", path, `{}`))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, path)
	}
}

func TestHTTPController_ForgotPassword(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		result   error
		expected int
	}{
		{"accepted", `{"email":"ada@example.com"}`, nil, fiber.StatusAccepted},
		{"unknown address looks accepted", `{"email":"ada@example.com"}`, errRejected, fiber.StatusAccepted},
		{"service down", `{"email":"ada@example.com"}`, errUnavailable, fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountActions)
			accounts.On("ForgotPassword", mock.Anything, "ada@example.com").Return(tt.result).Once()

			resp, err := newAccountsApp(accounts, nil).Test(jsonRequest("POST", "/auth/password/forgot", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)
			accounts.AssertExpectations(t)
		})
	}
}

func TestHTTPController_ForgotPasswordValidation(t *testing.T) {
	accounts := new(MockAccountActions)
	app := newAccountsApp(accounts, nil)

	resp, err := app.Test(jsonRequest("POST", "/auth/password/forgot", `{"email":"not-an-email"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, gate.TextCodeInvalidAccount, body["error_code"])
	assert.Contains(t, body["errors"], "email")
	accounts.AssertNotCalled(t, "ForgotPassword", mock.Anything, mock.Anything)
}

func TestHTTPController_ResetPassword(t *testing.T) {
	accounts := new(MockAccountActions)
	accounts.On("ResetPassword", mock.Anything, "rst", "new-password").Return(nil).Once()

	var events []gate.ActivityEvent
	sink := gate.ActivitySinkFunc(func(_ context.Context, event gate.ActivityEvent) error {
		events = append(events, event)
		return nil
	})

	resp, err := newAccountsApp(accounts, sink).Test(jsonRequest("POST", "/auth/password/reset",
		`{"token":"rst","password":"new-password","confirmPassword":"new-password"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/auth/sign-in", decodeBody(t, resp)["redirect"])

	require.Len(t, events, 1)
	assert.Equal(t, gate.ActivityEventPasswordReset, events[0].EventType)
	accounts.AssertExpectations(t)
}

func TestHTTPController_ResetPasswordValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing token", `{"password":"new-password","confirmPassword":"new-password"}`, "token"},
		{"short password", `{"token":"rst","password":"short","confirmPassword":"short"}`, "password"},
		{"mismatch", `{"token":"rst","password":"new-password","confirmPassword":"other-password"}`, "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountActions)
			resp, err := newAccountsApp(accounts, nil).Test(jsonRequest("POST", "/auth/password/reset", tt.body))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			errs, ok := decodeBody(t, resp)["errors"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, errs, tt.field)
			accounts.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHTTPController_AcceptInvitation(t *testing.T) {
	tests := []struct {
		name     string
		result   error
		expected int
	}{
		{"accepted", nil, fiber.StatusOK},
		{"expired invitation", errRejected, fiber.StatusBadRequest},
		{"service down", errUnavailable, fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountActions)
			accounts.On("AcceptInvitation", mock.Anything, "inv", "").Return(tt.result).Once()

			resp, err := newAccountsApp(accounts, nil).Test(jsonRequest("POST", "/auth/invitation/accept", `{"token":"inv"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)
			accounts.AssertExpectations(t)
		})
	}
}
