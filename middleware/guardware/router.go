package guardware

import (
	"github.com/goliatone/go-router"

	gate "github.com/goliatone/go-auth-gate"
)

// RouterConfig configures the guard for applications built on go-router.
// Fields mirror Config.
type RouterConfig struct {
	Filter          func(router.Context) bool
	Policy          gate.Policy
	Routes          gate.Routes
	Cookies         gate.CookieOptions
	StorageFactory  func(router.Context) gate.Storage
	Prerender       func(router.Context) bool
	PrerenderHeader string
	PrerenderToken  string
	RedirectHandler func(router.Context, gate.Decision) error
	ContextKey      string
	Logger          gate.Logger
	Options         []gate.Option
}

// NewRouter creates the guard as a go-router middleware.
func NewRouter(config ...RouterConfig) router.MiddlewareFunc {
	cfg := GetDefaultRouterConfig(config...)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			nav := gate.Navigation{
				Target:      ctx.Path(),
				Current:     refererPath(ctx.GetString("Referer", "")),
				Interactive: !cfg.Prerender(ctx),
			}

			g := gate.New(cfg.StorageFactory(ctx), cfg.Routes, cfg.Options...)
			decision := evaluate(g, cfg.Policy, nav, cfg.Logger)
			if !decision.Allowed() {
				return cfg.RedirectHandler(ctx, decision)
			}

			if nav.Interactive && cfg.Policy.Kind == gate.PolicyRoleGate {
				ctx.Locals(cfg.ContextKey, cfg.Policy.RequiredRole)
				ctx.SetContext(enrich(ctx.Context(), cfg.Policy, g, cfg.Logger))
			}

			return next(ctx)
		}
	}
}

// GetDefaultRouterConfig fills unset fields of the first config.
func GetDefaultRouterConfig(config ...RouterConfig) (cfg RouterConfig) {
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
		cfg.StorageFactory = func(ctx router.Context) gate.Storage {
			return gate.NewRouterCookieStorage(ctx, cookies)
		}
	}

	if cfg.Prerender == nil {
		header, token := cfg.PrerenderHeader, cfg.PrerenderToken
		cfg.Prerender = func(ctx router.Context) bool {
			if header == "" {
				return false
			}
			return prerenderMatch(ctx.GetString(header, ""), token)
		}
	}

	if cfg.RedirectHandler == nil {
		cfg.RedirectHandler = func(ctx router.Context, d gate.Decision) error {
			return ctx.Redirect(d.Path, redirectStatus(ctx.Method()))
		}
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

// RoleFromContext returns the role stored by the router middleware.
func RoleFromContext(ctx router.Context, key ...string) (gate.Role, bool) {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	role, ok := ctx.Locals(k).(gate.Role)
	return role, ok
}
