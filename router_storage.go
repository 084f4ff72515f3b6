package gate

import (
	"time"

	"github.com/goliatone/go-router"
)

// NewRouterCookieStorage wraps the cookies of a go-router request. It behaves
// like NewCookieStorage for applications served through a router adapter.
func NewRouterCookieStorage(c router.Context, opts CookieOptions) *CookieStorage {
	return newCookieStorage(routerJar{ctx: c}, opts)
}

type routerJar struct {
	ctx router.Context
}

func (j routerJar) cookie(name string) string {
	return j.ctx.Cookies(name)
}

// a zero Expires leaves the cookie without an expiry, so the browser drops
// it when the session ends
func (j routerJar) setCookie(name, value string, expires time.Time, opts CookieOptions) {
	j.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expires,
		Secure:   opts.Secure,
		HTTPOnly: opts.HTTPOnly,
		SameSite: opts.SameSite,
	})
}
