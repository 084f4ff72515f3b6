package gate

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultCookiePath       = "/"
	DefaultEphemeralPrefix  = "session_"
	DefaultPersistentTTL    = 30 * 24 * time.Hour
	DefaultCookieSameSite   = fiber.CookieSameSiteLaxMode
	expiredCookieLookbehind = 24 * 365 * time.Hour
)

// CookieOptions controls how CookieStorage writes cookies.
type CookieOptions struct {
	Domain          string
	Path            string
	Secure          bool
	HTTPOnly        bool
	SameSite        string
	PersistentTTL   time.Duration
	EphemeralPrefix string
}

// DefaultCookieOptions returns secure, http only, lax cookies.
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Path:            DefaultCookiePath,
		Secure:          true,
		HTTPOnly:        true,
		SameSite:        DefaultCookieSameSite,
		PersistentTTL:   DefaultPersistentTTL,
		EphemeralPrefix: DefaultEphemeralPrefix,
	}
}

// CookieOptionsFromConfig reads cookie options from cfg, keeping defaults for empty values.
func CookieOptionsFromConfig(cfg Config) CookieOptions {
	opts := DefaultCookieOptions()
	if cfg == nil {
		return opts
	}
	opts.Domain = cfg.GetCookieDomain()
	opts.Secure = cfg.GetCookieSecure()
	if p := cfg.GetCookiePath(); p != "" {
		opts.Path = p
	}
	if h := cfg.GetPersistentCookieDuration(); h > 0 {
		opts.PersistentTTL = time.Duration(h) * time.Hour
	}
	if p := cfg.GetEphemeralCookiePrefix(); p != "" {
		opts.EphemeralPrefix = p
	}
	return opts
}

var _ Storage = (*CookieStorage)(nil)

// cookieJar reads request cookies and writes response cookies for one
// HTTP framework.
type cookieJar interface {
	cookie(name string) string
	setCookie(name, value string, expires time.Time, opts CookieOptions)
}

// CookieStorage stores values in the visitor's cookies. Persistent values are
// cookies with an expiry; Ephemeral values are session cookies. Writes made
// during the request are visible to later reads in the same request.
type CookieStorage struct {
	jar     cookieJar
	opts    CookieOptions
	now     func() time.Time
	written map[string]*string
}

// NewCookieStorage wraps the cookies of a fiber request.
func NewCookieStorage(c *fiber.Ctx, opts CookieOptions) *CookieStorage {
	return newCookieStorage(fiberJar{ctx: c}, opts)
}

func newCookieStorage(jar cookieJar, opts CookieOptions) *CookieStorage {
	if opts.Path == "" {
		opts.Path = DefaultCookiePath
	}
	if opts.PersistentTTL <= 0 {
		opts.PersistentTTL = DefaultPersistentTTL
	}
	if opts.EphemeralPrefix == "" {
		opts.EphemeralPrefix = DefaultEphemeralPrefix
	}
	if opts.SameSite == "" {
		opts.SameSite = DefaultCookieSameSite
	}
	return &CookieStorage{
		jar:     jar,
		opts:    opts,
		now:     time.Now,
		written: map[string]*string{},
	}
}

// CookieName returns the cookie name used for key under lifetime.
func (s *CookieStorage) CookieName(lifetime Lifetime, key string) string {
	if lifetime == Ephemeral {
		return s.opts.EphemeralPrefix + key
	}
	return key
}

func (s *CookieStorage) Get(lifetime Lifetime, key string) (string, bool) {
	name := s.CookieName(lifetime, key)
	if v, ok := s.written[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	v := s.jar.cookie(name)
	return v, v != ""
}

// Set writes value. A zero expiry makes the cookie a session cookie.
func (s *CookieStorage) Set(lifetime Lifetime, key, value string) {
	name := s.CookieName(lifetime, key)
	var expires time.Time
	if lifetime == Persistent {
		expires = s.now().Add(s.opts.PersistentTTL)
	}
	s.jar.setCookie(name, value, expires, s.opts)
	s.written[name] = &value
}

func (s *CookieStorage) Remove(lifetime Lifetime, key string) {
	name := s.CookieName(lifetime, key)
	s.jar.setCookie(name, "", s.now().Add(-expiredCookieLookbehind), s.opts)
	s.written[name] = nil
}

type fiberJar struct {
	ctx *fiber.Ctx
}

func (j fiberJar) cookie(name string) string {
	return j.ctx.Cookies(name)
}

func (j fiberJar) setCookie(name, value string, expires time.Time, opts CookieOptions) {
	j.ctx.Cookie(&fiber.Cookie{
		Name:        name,
		Value:       value,
		Path:        opts.Path,
		Domain:      opts.Domain,
		Expires:     expires,
		SessionOnly: expires.IsZero(),
		Secure:      opts.Secure,
		HTTPOnly:    opts.HTTPOnly,
		SameSite:    opts.SameSite,
	})
}
