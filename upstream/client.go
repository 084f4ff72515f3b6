package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	gate "github.com/goliatone/go-auth-gate"
)

const (
	PathAuthenticate     = "api/auth/authenticate"
	PathAcceptInvitation = "api/auth/accept-invitation"
	PathForgotPassword   = "api/auth/forgot-password"
	PathResetPassword    = "api/auth/reset-password"
)

// Config holds auth API options.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

var (
	_ gate.Authenticator  = (*Client)(nil)
	_ gate.AccountActions = (*Client)(nil)
)

// Client calls the account endpoints of the auth API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Data         *struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data,omitempty"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, identifier, password string) (gate.TokenPair, error) {
	var resp tokenResponse
	if err := c.post(ctx, "authenticate", PathAuthenticate, loginRequest{Email: identifier, Password: password}, &resp); err != nil {
		return gate.TokenPair{}, err
	}

	pair := gate.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if pair.AccessToken == "" && resp.Data != nil {
		pair = gate.TokenPair{AccessToken: resp.Data.AccessToken, RefreshToken: resp.Data.RefreshToken}
	}

	if pair.AccessToken == "" {
		return gate.TokenPair{}, wrapAPIError(ErrBadResponse, &APIError{
			Operation: "authenticate",
			Status:    http.StatusOK,
			Message:   "missing access token",
		})
	}
	return pair, nil
}

type acceptInvitationRequest struct {
	Token    string `json:"token"`
	Password string `json:"password,omitempty"`
}

// AcceptInvitation verifies a user account from an invitation. password may
// be empty for invitations that already carry one.
func (c *Client) AcceptInvitation(ctx context.Context, token, password string) error {
	return c.post(ctx, "accept_invitation", PathAcceptInvitation, acceptInvitationRequest{Token: token, Password: password}, nil)
}

// ForgotPassword starts a password reset for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "forgot_password", PathForgotPassword, map[string]string{"email": email}, nil)
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword sets a new password. Confirmation is checked by the caller,
// so the API receives password twice.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.post(ctx, "reset_password", PathResetPassword, resetPasswordRequest{
		Token:           token,
		Password:        password,
		ConfirmPassword: password,
	}, nil)
}

func (c *Client) post(ctx context.Context, operation, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return wrapAPIError(ErrBadResponse, &APIError{Operation: operation, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return wrapAPIError(ErrUnavailable, &APIError{Operation: operation, Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapAPIError(ErrUnavailable, &APIError{Operation: operation, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapAPIError(ErrUnavailable, &APIError{Operation: operation, Status: resp.StatusCode, Err: err})
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return wrapAPIError(ErrUnavailable, &APIError{Operation: operation, Status: resp.StatusCode, Message: errorMessage(raw)})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return wrapAPIError(ErrRejected, &APIError{Operation: operation, Status: resp.StatusCode, Message: errorMessage(raw)})
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return wrapAPIError(ErrBadResponse, &APIError{Operation: operation, Status: resp.StatusCode, Err: err})
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
