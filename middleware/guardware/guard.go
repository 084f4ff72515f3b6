package guardware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"

	gate "github.com/goliatone/go-auth-gate"
)

const DefaultContextKey = "gate_role"

// Config for the guard middleware
type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// Policy evaluated on every request.
	Policy gate.Policy
	// Routes used for sign in and dashboard targets.
	Routes gate.Routes
	// Cookies configures the default cookie backed storage.
	Cookies gate.CookieOptions
	// StorageFactory returns the visitor storage for a request. Defaults to cookies.
	StorageFactory func(*fiber.Ctx) gate.Storage
	// Prerender reports requests rendered without visitor storage. Such
	// requests are always allowed. Defaults to PrerenderHeader matching
	// PrerenderToken, and to never when PrerenderHeader is empty.
	Prerender func(*fiber.Ctx) bool
	// PrerenderHeader names the header the prerender service sends. Empty
	// disables prerender detection.
	PrerenderHeader string
	// PrerenderToken is the value PrerenderHeader must carry. When empty any
	// non empty header value is accepted.
	PrerenderToken string
	// RedirectHandler issues the redirect for a denied navigation.
	RedirectHandler func(*fiber.Ctx, gate.Decision) error
	// ContextKey stores the resolved role in Locals on allowed role gated requests.
	ContextKey string
	Logger     gate.Logger
	Options    []gate.Option
}

// New creates the guard middleware.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		nav := gate.Navigation{
			Target:      c.Path(),
			Current:     refererPath(c.Get(fiber.HeaderReferer)),
			Interactive: !cfg.Prerender(c),
		}

		g := gate.New(cfg.StorageFactory(c), cfg.Routes, cfg.Options...)
		decision := evaluate(g, cfg.Policy, nav, cfg.Logger)
		if !decision.Allowed() {
			return cfg.RedirectHandler(c, decision)
		}

		if nav.Interactive && cfg.Policy.Kind == gate.PolicyRoleGate {
			c.Locals(cfg.ContextKey, cfg.Policy.RequiredRole)
			c.SetUserContext(enrich(c.UserContext(), cfg.Policy, g, cfg.Logger))
		}

		return c.Next()
	}
}

// evaluate runs policy and serves a redirect to the navigation's own target
// as an allow.
func evaluate(g *gate.Gate, policy gate.Policy, nav gate.Navigation, logger gate.Logger) gate.Decision {
	decision := g.Evaluate(policy, nav)

	if !decision.Allowed() && decision.Path == nav.Target {
		// the navigation already heads to the redirect target
		logger.Debug("guard redirect to current target served as allow",
			"policy", policy.Name,
			"target", nav.Target,
		)
		return gate.Allow()
	}

	if !decision.Allowed() {
		logger.Info("guard redirect",
			"policy", policy.Name,
			"target", nav.Target,
			"redirect", decision.Path,
		)
	}
	return decision
}

func enrich(ctx context.Context, policy gate.Policy, g *gate.Gate, logger gate.Logger) context.Context {
	ctx = gate.WithRoleContext(ctx, policy.RequiredRole)
	if claims, ok := g.Claims(); ok {
		logger.Debug("guard claims", "claims", print.MaybePrettyJSON(claims))
		ctx = gate.WithClaimsContext(ctx, claims)
	}
	return ctx
}

// GetDefaultConfig fills unset fields of the first config.
func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Routes == (gate.Routes{}) {
		cfg.Routes = gate.DefaultRoutes()
	}

	if cfg.Policy.Name == "" && cfg.Policy.Kind == gate.PolicyRoleGate && cfg.Policy.RequiredRole == "" {
		panic("GATE: guard middleware configuration: Policy is required.")
	}

	if cfg.Cookies == (gate.CookieOptions{}) {
		cfg.Cookies = gate.DefaultCookieOptions()
	}

	if cfg.StorageFactory == nil {
		cookies := cfg.Cookies
		cfg.StorageFactory = func(c *fiber.Ctx) gate.Storage {
			return gate.NewCookieStorage(c, cookies)
		}
	}

	if cfg.Prerender == nil {
		header, token := cfg.PrerenderHeader, cfg.PrerenderToken
		cfg.Prerender = func(c *fiber.Ctx) bool {
			if header == "" {
				return false
			}
			return prerenderMatch(c.Get(header), token)
		}
	}

	if cfg.RedirectHandler == nil {
		cfg.RedirectHandler = defaultRedirectHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.Logger == nil {
		cfg.Logger = gate.NopLogger{}
	}

	cfg.Options = append([]gate.Option{gate.WithLogger(cfg.Logger)}, cfg.Options...)

	return cfg
}

// RoleFromLocals returns the role stored by the middleware.
func RoleFromLocals(c *fiber.Ctx, key ...string) (gate.Role, bool) {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	role, ok := c.Locals(k).(gate.Role)
	return role, ok
}

func defaultRedirectHandler(c *fiber.Ctx, d gate.Decision) error {
	return c.Redirect(d.Path, redirectStatus(c.Method()))
}

func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

func prerenderMatch(value, token string) bool {
	if value == "" {
		return false
	}
	if token == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(value), []byte(token)) == 1
}

func refererPath(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return u.Path
}
