package gate

import "strings"

// Role is the authorization class of a visitor.
type Role string

const (
	RoleUnknown   Role = "unknown"
	RoleAdmin     Role = "admin"
	RolePublisher Role = "publisher"
)

// roleSynonyms folds lowercased claim values into roles.
var roleSynonyms = map[string]Role{
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"publisher":     RolePublisher,
	"publishers":    RolePublisher,
}

// roleClaimKeys lists the claim names carrying the role, in lookup order.
var roleClaimKeys = []string{"Role", "role"}

// NormalizeRole maps a raw role claim to a Role. It never fails:
// unmapped values are RoleUnknown.
func NormalizeRole(raw string) Role {
	if role, ok := roleSynonyms[strings.ToLower(raw)]; ok {
		return role
	}
	return RoleUnknown
}

// IsKnown reports whether the role maps to a dashboard.
func (r Role) IsKnown() bool {
	return r == RoleAdmin || r == RolePublisher
}

func (r Role) String() string {
	if r == "" {
		return string(RoleUnknown)
	}
	return string(r)
}

// GetAllRoles returns every role value, unknown included
func GetAllRoles() []Role {
	return []Role{RoleAdmin, RolePublisher, RoleUnknown}
}

// ParseRole parses a stored role value. Only the canonical names are accepted,
// synonyms are not folded here.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RolePublisher:
		return Role(s), true
	default:
		return RoleUnknown, false
	}
}
