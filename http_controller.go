package gate

import (
	"context"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// TokenPair is what the login collaborator hands back.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Authenticator performs the sign in network call.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (TokenPair, error)
}

// SessionHook is notified when tokens are stored or cleared.
type SessionHook interface {
	OnSignIn(c *fiber.Ctx, pair TokenPair, remember bool) error
	OnSignOut(c *fiber.Ctx)
}

// SignInPayload is the sign in form payload
type SignInPayload struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	Remember   bool   `form:"remember_me" json:"remember_me"`
}

// Validate will validate the payload
func (p SignInPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Identifier, validation.Required, validation.Length(3, 200)),
		validation.Field(&p.Password, validation.Required, validation.Length(1, 200)),
	)
}

// TokenHandoffPayload carries tokens obtained by the client itself.
type TokenHandoffPayload struct {
	AccessToken  string `form:"accessToken" json:"accessToken"`
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
	Remember     bool   `form:"rememberMe" json:"rememberMe"`
}

// Validate will validate the payload
func (p TokenHandoffPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.AccessToken, validation.Required, validation.By(decodableToken)),
	)
}

func decodableToken(value any) error {
	token, _ := value.(string)
	if _, err := NewTokenCodec().Inspect(token); err != nil {
		return errors.New("must be a three segment token with a JSON payload", errors.CategoryValidation)
	}
	return nil
}

// ControllerRoutes are the paths served by HTTPController
type ControllerRoutes struct {
	SignIn           string
	SignOut          string
	Handoff          string
	ForgotPassword   string
	ResetPassword    string
	AcceptInvitation string
}

// ControllerViews are the templates rendered by HTTPController
type ControllerViews struct {
	SignIn string
}

// HTTPController serves sign in, sign out and token handoff.
type HTTPController struct {
	Auth     Authenticator
	Accounts AccountActions
	Session  SessionHook
	Activity ActivitySink
	Logger   Logger
	Routes   Routes
	Cookies  CookieOptions
	Paths    *ControllerRoutes
	Views    *ControllerViews
	Options  []Option
}

// NewHTTPController creates a controller serving the sign in page of routes.
func NewHTTPController(auth Authenticator, routes Routes, cookies CookieOptions) *HTTPController {
	return &HTTPController{
		Auth:    auth,
		Logger:  defLogger{},
		Routes:  routes,
		Cookies: cookies,
		Paths: &ControllerRoutes{
			SignIn:  routes.SignIn,
			SignOut:          "/auth/sign-out",
			Handoff:          "/auth/session",
			ForgotPassword:   "/auth/password/forgot",
			ResetPassword:    "/auth/password/reset",
			AcceptInvitation: "/auth/invitation/accept",
		},
		Views: &ControllerViews{
			SignIn: "sign_in",
		},
	}
}

// Register mounts the controller handlers. guard runs before the sign in
// page. Sign out only answers POST. Account routes are mounted when
// Accounts is set.
func (h *HTTPController) Register(r fiber.Router, guard ...fiber.Handler) {
	signIn := append(append([]fiber.Handler{}, guard...), h.SignInShow)
	r.Get(h.Paths.SignIn, signIn...)
	r.Post(h.Paths.SignIn, h.SignInPost)
	r.Post(h.Paths.SignOut, h.SignOut)
	r.Post(h.Paths.Handoff, h.TokenHandoff)

	if h.Accounts == nil {
		return
	}
	r.Post(h.Paths.ForgotPassword, h.ForgotPassword)
	r.Post(h.Paths.ResetPassword, h.ResetPassword)
	r.Post(h.Paths.AcceptInvitation, h.AcceptInvitation)
}

func (h *HTTPController) gate(c *fiber.Ctx) *Gate {
	opts := append(append([]Option{}, h.Options...), WithLogger(h.Logger))
	return New(NewCookieStorage(c, h.Cookies), h.Routes, opts...)
}

// SignInShow renders the sign in page
func (h *HTTPController) SignInShow(c *fiber.Ctx) error {
	return h.respond(c, fiber.StatusOK, fiber.Map{
		"errors": nil,
		"record": SignInPayload{},
	})
}

// SignInPost authenticates against the collaborator and stores the tokens.
func (h *HTTPController) SignInPost(c *fiber.Ctx) error {
	payload := new(SignInPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("sign in parse payload", "error", err)
		return h.respond(c, fiber.StatusBadRequest, fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		h.Logger.Info("sign in validate payload", "error", err)
		return h.respond(c, fiber.StatusBadRequest, fiber.Map{
			"errors":     validationMessages(err),
			"error_code": ErrInvalidLoginPayload.TextCode,
			"record":     SignInPayload{Identifier: payload.Identifier, Remember: payload.Remember},
		})
	}

	if h.Auth == nil {
		return ErrAuthenticatorMissing
	}

	pair, err := h.Auth.Login(c.UserContext(), payload.Identifier, payload.Password)
	if err != nil {
		status := fiber.StatusUnauthorized
		message := "The credentials provided are invalid"
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category != errors.CategoryAuth {
			status = fiber.StatusBadGateway
			message = "Sign in is unavailable, try again later"
		}
		h.Logger.Info("sign in rejected", "identifier", payload.Identifier, "error", err)
		h.record(c, ActivityEvent{
			EventType: ActivityEventSignInFailure,
			Remember:  payload.Remember,
			Metadata:  map[string]any{"identifier": payload.Identifier, "status": status},
		})
		return h.respond(c, status, fiber.Map{
			"errors": map[string]string{"form": message},
			"record": SignInPayload{Identifier: payload.Identifier, Remember: payload.Remember},
		})
	}

	return h.complete(c, pair, payload.Remember)
}

// TokenHandoff stores tokens the client obtained from the login collaborator.
func (h *HTTPController) TokenHandoff(c *fiber.Ctx) error {
	payload := new(TokenHandoffPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "failed to parse payload",
			"error_code": ErrInvalidTokenHandoff.TextCode,
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      ErrInvalidTokenHandoff.Message,
			"error_code": ErrInvalidTokenHandoff.TextCode,
			"errors":     validationMessages(err),
		})
	}

	pair := TokenPair{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}
	g := h.gate(c)
	g.SignIn(pair.AccessToken, pair.RefreshToken, payload.Remember)
	if err := h.notifySignIn(c, pair, payload.Remember); err != nil {
		return err
	}

	h.record(c, ActivityEvent{
		EventType: ActivityEventTokenHandoff,
		UserID:    g.Store.Record().UserID,
		Role:      g.Role(),
		Remember:  payload.Remember,
	})

	return c.JSON(fiber.Map{
		"authenticated": g.IsAuthenticated(),
		"role":          g.Role(),
		"redirect":      g.DashboardPath(),
	})
}

// SignOut clears every stored value and goes back to sign in.
func (h *HTTPController) SignOut(c *fiber.Ctx) error {
	g := h.gate(c)
	event := ActivityEvent{
		EventType: ActivityEventSignOut,
		UserID:    g.Store.Record().UserID,
		Role:      g.Role(),
	}
	g.SignOut()
	h.record(c, event)
	if h.Session != nil {
		h.Session.OnSignOut(c)
	}
	return c.Redirect(h.Routes.SignIn, redirectStatus(c))
}

func (h *HTTPController) complete(c *fiber.Ctx, pair TokenPair, remember bool) error {
	g := h.gate(c)
	g.SignIn(pair.AccessToken, pair.RefreshToken, remember)

	if err := h.notifySignIn(c, pair, remember); err != nil {
		return err
	}

	target := g.DashboardPath()
	if !g.IsAuthenticated() {
		target = h.Routes.SignIn
	}

	h.Logger.Info("signed in", "role", g.Role(), "remember", remember, "redirect", target)
	h.record(c, ActivityEvent{
		EventType: ActivityEventSignIn,
		UserID:    g.Store.Record().UserID,
		Role:      g.Role(),
		Remember:  remember,
		Metadata:  map[string]any{"redirect": target},
	})
	return c.Redirect(target, fiber.StatusSeeOther)
}

func (h *HTTPController) notifySignIn(c *fiber.Ctx, pair TokenPair, remember bool) error {
	if h.Session == nil {
		return nil
	}
	if err := h.Session.OnSignIn(c, pair, remember); err != nil {
		h.Logger.Error("session hook failed", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "failed to create session")
	}
	return nil
}

func (h *HTTPController) record(c *fiber.Ctx, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(h.Activity).Record(c.UserContext(), event); err != nil {
		h.Logger.Warn("activity sink failed", "event", event.EventType, "error", err)
	}
}

func (h *HTTPController) respond(c *fiber.Ctx, status int, data fiber.Map) error {
	c.Status(status)
	if h.Views == nil || h.Views.SignIn == "" || wantsJSON(c) {
		return c.JSON(data)
	}
	return c.Render(h.Views.SignIn, data)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) ||
		strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

func validationMessages(err error) map[string]string {
	out := map[string]string{}
	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			out[field] = fieldErr.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

func redirectStatus(c *fiber.Ctx) int {
	if c.Method() == http.MethodGet || c.Method() == http.MethodHead {
		return fiber.StatusFound
	}
	return fiber.StatusSeeOther
}
