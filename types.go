package gate

import (
	"fmt"
	"strings"
)

// Logger is the logging contract used across the gate. Args are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Lifetime identifies how long a stored value survives on the visitor side.
type Lifetime int

const (
	// Persistent values survive browser restarts.
	Persistent Lifetime = iota
	// Ephemeral values survive only the current browser session.
	Ephemeral
)

func (l Lifetime) String() string {
	switch l {
	case Persistent:
		return "persistent"
	case Ephemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// Storage is a key/value store partitioned by Lifetime.
// Implementations must treat a missing key and an empty value the same way.
type Storage interface {
	Get(lifetime Lifetime, key string) (string, bool)
	Set(lifetime Lifetime, key, value string)
	Remove(lifetime Lifetime, key string)
}

// AuthChecker answers whether the current visitor is authenticated.
type AuthChecker interface {
	IsAuthenticated() bool
}

// RoleSource resolves the role of the current visitor.
type RoleSource interface {
	Resolve() Role
}

// Config holds gate options
type Config interface {
	GetSignInPath() string
	GetAdminDashboardPath() string
	GetPublisherDashboardPath() string
	GetCookieDomain() string
	GetCookiePath() string
	GetCookieSecure() bool
	GetPersistentCookieDuration() int
	GetEphemeralCookiePrefix() string
	GetPrerenderHeader() string
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] GATE " + format(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] GATE " + format(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] GATE " + format(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] GATE " + format(msg, args...))
}

func format(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return newline(b.String())
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
