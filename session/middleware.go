package session

import "github.com/gofiber/fiber/v2"

// DefaultLocalsKey is where Middleware stores the verified session payload.
const DefaultLocalsKey = "session"

// Middleware slides the expiry of a valid session cookie on every request
// and exposes its payload through FromLocals. Requests without a valid
// session pass through untouched.
func Middleware(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p := m.Update(c); p != nil {
			c.Locals(DefaultLocalsKey, p)
		}
		return c.Next()
	}
}

// FromLocals returns the payload stored by Middleware.
func FromLocals(c *fiber.Ctx) (*Payload, bool) {
	p, ok := c.Locals(DefaultLocalsKey).(*Payload)
	return p, ok && p != nil
}
