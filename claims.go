package gate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a token. Values are kept as decoded from JSON;
// only exp and the role claim are interpreted.
type Claims map[string]any

// Expiration returns the exp claim. ok is false when exp is absent or zero.
// err is set when exp is present but not numeric.
func (c Claims) Expiration() (exp time.Time, ok bool, err error) {
	date, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil {
		return time.Time{}, false, ErrInvalidExpiration
	}
	if date == nil {
		return time.Time{}, false, nil
	}
	return date.Time, true, nil
}

// RoleClaim returns the raw role claim, trying each spelling in order.
func (c Claims) RoleClaim() (string, bool) {
	for _, key := range roleClaimKeys {
		if v, ok := c[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Role returns the normalized role carried by the claims.
func (c Claims) Role() Role {
	raw, ok := c.RoleClaim()
	if !ok {
		return RoleUnknown
	}
	return NormalizeRole(raw)
}

// Subject returns the sub claim
func (c Claims) Subject() string {
	return c.str("sub")
}

// Email returns the email claim
func (c Claims) Email() string {
	return c.str("email")
}

// UserID returns the identifier of the user, falling back to the subject.
func (c Claims) UserID() string {
	for _, key := range []string{"Id", "id", "uid"} {
		if v := c.str(key); v != "" {
			return v
		}
	}
	return c.Subject()
}

func (c Claims) str(key string) string {
	v, _ := c[key].(string)
	return v
}
