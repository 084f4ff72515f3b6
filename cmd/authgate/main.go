package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/template/django/v3"
	"go.uber.org/zap"

	gate "github.com/goliatone/go-auth-gate"
	"github.com/goliatone/go-auth-gate/config"
	"github.com/goliatone/go-auth-gate/middleware/guardware"
	"github.com/goliatone/go-auth-gate/session"
	"github.com/goliatone/go-auth-gate/upstream"
)

//go:embed views
var viewsFS embed.FS

func main() {
	configPath := flag.String("config", os.Getenv("AUTHGATE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	base, err := newLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer base.Sync()

	app, err := newApp(cfg, base)
	if err != nil {
		base.Fatal("setup", zap.Error(err))
	}

	go func() {
		if err := app.Listen(cfg.Server.Address); err != nil {
			base.Error("server stopped", zap.Error(err))
		}
	}()

	sig := WaitExitSignal()
	base.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		base.Error("shutdown", zap.Error(err))
	}
}

func newApp(cfg *config.Config, base *zap.Logger) (*fiber.App, error) {
	templates, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}

	routes := gate.RoutesFromConfig(cfg)
	cookies := gate.CookieOptionsFromConfig(cfg)
	gateLogger := named(base, "gate")

	engine := django.NewFileSystem(http.FS(templates), ".html")
	engine.AddFuncMap(gate.TemplateHelpers(routes))

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		PassLocalsToViews:     true,
		Views:                 engine,
	})

	app.Use(csrf.New(csrf.Config{
		Extractor:      csrfExtractor(csrf.HeaderName, csrfFormField),
		CookieName:     "csrf_",
		CookieSecure:   cookies.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: cookies.SameSite,
		ContextKey:     "csrf",
	}))

	client := upstream.New(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	})

	ctrl := gate.NewHTTPController(client, routes, cookies)
	ctrl.Accounts = client
	ctrl.Logger = named(base, "auth:ctrl")
	ctrl.Activity = activityLogger(named(base, "activity"))

	if cfg.SessionEnabled() {
		manager, err := session.NewManager(session.Config{
			SigningKey: []byte(cfg.Session.SigningKey),
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Path:       cookies.Path,
			Secure:     cookies.Secure,
		})
		if err != nil {
			return nil, err
		}
		ctrl.Session = manager
		app.Use(session.Middleware(manager))
	}

	guard := func(policy gate.Policy) fiber.Handler {
		return guardware.New(guardware.Config{
			Policy:          policy,
			Routes:          routes,
			Cookies:         cookies,
			PrerenderHeader: cfg.GetPrerenderHeader(),
			PrerenderToken:  cfg.GetPrerenderToken(),
			Logger:          gateLogger,
		})
	}

	ctrl.Register(app, guard(gate.SignInPolicy()))

	admin := app.Group("/admin", guard(gate.AdminPolicy(routes)))
	admin.Get(trimGroup("/admin", routes.AdminDashboard), dashboard("admin_dashboard"))

	publisher := app.Group("/publisher", guard(gate.PublisherPolicy(routes)))
	publisher.Get(trimGroup("/publisher", routes.PublisherDashboard), dashboard("publisher_dashboard"))

	app.Get("/", func(c *fiber.Ctx) error {
		g := gate.New(gate.NewCookieStorage(c, cookies), routes, gate.WithLogger(gateLogger))
		if !g.IsAuthenticated() {
			return c.Redirect(routes.SignIn, fiber.StatusFound)
		}
		return c.Redirect(g.DashboardPath(), fiber.StatusFound)
	})

	return app, nil
}

const csrfFormField = "_csrf"

// csrfExtractor reads the token from header, then from the form field. Pages
// post forms; scripts send the header.
func csrfExtractor(header, field string) func(*fiber.Ctx) (string, error) {
	fromHeader := csrf.CsrfFromHeader(header)
	fromForm := csrf.CsrfFromForm(field)
	return func(c *fiber.Ctx) (string, error) {
		if token, err := fromHeader(c); err == nil && token != "" {
			return token, nil
		}
		return fromForm(c)
	}
}

func activityLogger(logger gate.Logger) gate.ActivitySink {
	return gate.ActivitySinkFunc(func(_ context.Context, event gate.ActivityEvent) error {
		logger.Info(string(event.EventType),
			"user_id", event.UserID,
			"role", event.Role,
			"remember", event.Remember,
			"metadata", event.Metadata,
		)
		return nil
	})
}

func dashboard(view string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := guardware.RoleFromLocals(c)
		claims, _ := gate.ClaimsFromContext(c.UserContext())
		data := fiber.Map{
			"role":  role.String(),
			"email": claims.Email(),
		}
		if p, ok := session.FromLocals(c); ok {
			data["session_id"] = p.ID
		}
		return c.Render(view, data)
	}
}

func trimGroup(prefix, path string) string {
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return path
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
