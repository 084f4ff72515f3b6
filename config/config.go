// Package config loads the authgate server configuration.
//
// Loading order:
//  1. Default values
//  2. YAML file values, when a path is given
//  3. .env file values, when present
//  4. AUTHGATE_* environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	gate "github.com/goliatone/go-auth-gate"
)

const envPrefix = "AUTHGATE_"

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Routes   RoutesConfig   `yaml:"routes"`
	Cookies  CookiesConfig  `yaml:"cookies"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// PrerenderHeader enables prerender detection. PrerenderToken is the
	// value the header must carry and is required once the header is set.
	PrerenderHeader string `yaml:"prerender_header"`
	PrerenderToken  string `yaml:"prerender_token"`
}

type RoutesConfig struct {
	SignIn             string `yaml:"sign_in"`
	AdminDashboard     string `yaml:"admin_dashboard"`
	PublisherDashboard string `yaml:"publisher_dashboard"`
}

type CookiesConfig struct {
	Domain          string `yaml:"domain"`
	Path            string `yaml:"path"`
	Secure          bool   `yaml:"secure"`
	PersistentHours int    `yaml:"persistent_hours"`
	EphemeralPrefix string `yaml:"ephemeral_prefix"`
}

type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig configures the signed server session. It is disabled unless
// a signing key is set.
type SessionConfig struct {
	SigningKey string        `yaml:"signing_key"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

var _ gate.Config = (*Config)(nil)

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Routes: RoutesConfig{
			SignIn:             gate.DefaultSignInPath,
			AdminDashboard:     gate.DefaultAdminDashboardPath,
			PublisherDashboard: gate.DefaultPublisherDashboardPath,
		},
		Cookies: CookiesConfig{
			Path:            gate.DefaultCookiePath,
			Secure:          true,
			PersistentHours: int(gate.DefaultPersistentTTL / time.Hour),
			EphemeralPrefix: gate.DefaultEphemeralPrefix,
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			CookieName: "session",
			TTL:        7 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read config file").
				WithMetadata(map[string]any{"path": path})
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse config file").
				WithMetadata(map[string]any{"path": path})
		}
	}

	// a missing .env is fine
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	str("ADDRESS", &c.Server.Address)
	str("PRERENDER_HEADER", &c.Server.PrerenderHeader)
	str("PRERENDER_TOKEN", &c.Server.PrerenderToken)
	str("SIGN_IN_PATH", &c.Routes.SignIn)
	str("ADMIN_DASHBOARD_PATH", &c.Routes.AdminDashboard)
	str("PUBLISHER_DASHBOARD_PATH", &c.Routes.PublisherDashboard)
	str("COOKIE_DOMAIN", &c.Cookies.Domain)
	str("COOKIE_PATH", &c.Cookies.Path)
	str("EPHEMERAL_PREFIX", &c.Cookies.EphemeralPrefix)
	str("UPSTREAM_URL", &c.Upstream.BaseURL)
	str("SESSION_SIGNING_KEY", &c.Session.SigningKey)
	str("SESSION_COOKIE_NAME", &c.Session.CookieName)
	str("LOG_LEVEL", &c.Logging.Level)

	if v, ok := lookup(envPrefix + "COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(err, "COOKIE_SECURE", v)
		}
		c.Cookies.Secure = b
	}

	if v, ok := lookup(envPrefix + "PERSISTENT_COOKIE_HOURS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(err, "PERSISTENT_COOKIE_HOURS", v)
		}
		c.Cookies.PersistentHours = n
	}

	if v, ok := lookup(envPrefix + "UPSTREAM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError(err, "UPSTREAM_TIMEOUT", v)
		}
		c.Upstream.Timeout = d
	}

	if v, ok := lookup(envPrefix + "SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError(err, "SESSION_TTL", v)
		}
		c.Session.TTL = d
	}

	if v, ok := lookup(envPrefix + "LOG_DEVELOPMENT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(err, "LOG_DEVELOPMENT", v)
		}
		c.Logging.Development = b
	}

	return nil
}

func envError(err error, name, value string) error {
	return errors.Wrap(err, errors.CategoryBadInput, "invalid environment value").
		WithMetadata(map[string]any{"variable": envPrefix + name, "value": value})
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	var prerenderToken []validation.Rule
	if c.Server.PrerenderHeader != "" {
		prerenderToken = append(prerenderToken, validation.Required, validation.Length(16, 0))
	}

	err := validation.Errors{
		"server.address":             validation.Validate(c.Server.Address, validation.Required),
		"server.prerender_token":     validation.Validate(c.Server.PrerenderToken, prerenderToken...),
		"routes.sign_in":             validation.Validate(c.Routes.SignIn, validation.Required, absolutePath),
		"routes.admin_dashboard":     validation.Validate(c.Routes.AdminDashboard, validation.Required, absolutePath),
		"routes.publisher_dashboard": validation.Validate(c.Routes.PublisherDashboard, validation.Required, absolutePath),
		"cookies.path":               validation.Validate(c.Cookies.Path, validation.Required, absolutePath),
		"cookies.persistent_hours":   validation.Validate(c.Cookies.PersistentHours, validation.Required, validation.Min(1)),
		"cookies.ephemeral_prefix":   validation.Validate(c.Cookies.EphemeralPrefix, validation.Required),
		"upstream.base_url":          validation.Validate(c.Upstream.BaseURL, validation.Required, is.URL),
		"logging.level":              validation.Validate(c.Logging.Level, validation.In("debug", "info", "warn", "error")),
	}.Filter()
	if err == nil {
		return nil
	}

	return errors.Wrap(err, errors.CategoryValidation, "invalid configuration").
		WithCode(errors.CodeBadRequest)
}

var absolutePath = validation.NewStringRule(func(s string) bool {
	return strings.HasPrefix(s, "/")
}, "must start with /")

// SessionEnabled reports whether a signing key was configured.
func (c *Config) SessionEnabled() bool {
	return c.Session.SigningKey != ""
}

func (c *Config) GetSignInPath() string {
	return c.Routes.SignIn
}

func (c *Config) GetAdminDashboardPath() string {
	return c.Routes.AdminDashboard
}

func (c *Config) GetPublisherDashboardPath() string {
	return c.Routes.PublisherDashboard
}

func (c *Config) GetCookieDomain() string {
	return c.Cookies.Domain
}

func (c *Config) GetCookiePath() string {
	return c.Cookies.Path
}

func (c *Config) GetCookieSecure() bool {
	return c.Cookies.Secure
}

func (c *Config) GetPersistentCookieDuration() int {
	return c.Cookies.PersistentHours
}

func (c *Config) GetEphemeralCookiePrefix() string {
	return c.Cookies.EphemeralPrefix
}

func (c *Config) GetPrerenderHeader() string {
	return c.Server.PrerenderHeader
}

func (c *Config) GetPrerenderToken() string {
	return c.Server.PrerenderToken
}
