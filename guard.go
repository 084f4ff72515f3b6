package gate

import "fmt"

// PolicyKind tags the variant of a Policy.
type PolicyKind int

const (
	// PolicyRoleGate admits only visitors holding RequiredRole.
	PolicyRoleGate PolicyKind = iota
	// PolicySignInPage sends authenticated visitors away from the sign in page.
	PolicySignInPage
)

func (k PolicyKind) String() string {
	switch k {
	case PolicyRoleGate:
		return "role_gate"
	case PolicySignInPage:
		return "sign_in_page"
	default:
		return fmt.Sprintf("policy_kind(%d)", int(k))
	}
}

// Policy is the declarative configuration of a guard.
type Policy struct {
	Name         string
	Kind         PolicyKind
	RequiredRole Role
	// OnDenied maps the role observed on a denied visitor to a redirect target.
	// Roles missing from the table go to the sign in page.
	OnDenied map[Role]string
}

// AdminPolicy admits admins and sends publishers to their dashboard.
func AdminPolicy(routes Routes) Policy {
	return Policy{
		Name:         "admin",
		Kind:         PolicyRoleGate,
		RequiredRole: RoleAdmin,
		OnDenied: map[Role]string{
			RolePublisher: routes.PublisherDashboard,
			RoleUnknown:   routes.SignIn,
		},
	}
}

// PublisherPolicy admits publishers and sends admins to their dashboard.
func PublisherPolicy(routes Routes) Policy {
	return Policy{
		Name:         "publisher",
		Kind:         PolicyRoleGate,
		RequiredRole: RolePublisher,
		OnDenied: map[Role]string{
			RoleAdmin:   routes.AdminDashboard,
			RoleUnknown: routes.SignIn,
		},
	}
}

// SignInPolicy redirects authenticated visitors from the sign in page to their dashboard.
func SignInPolicy() Policy {
	return Policy{
		Name: "sign_in",
		Kind: PolicySignInPage,
	}
}

// Navigation describes one navigation attempt.
type Navigation struct {
	Target  string
	Current string
	// Interactive is false while pages are rendered without visitor storage,
	// e.g. a prerender pass. Guards always allow such navigations.
	Interactive bool
}

// DecisionKind tags the variant of a Decision.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionRedirect
)

// Decision is the outcome of a guard.
type Decision struct {
	Kind DecisionKind
	Path string
}

// Allow lets the navigation complete.
func Allow() Decision {
	return Decision{Kind: DecisionAllow}
}

// RedirectTo cancels the navigation in favor of path.
func RedirectTo(path string) Decision {
	return Decision{Kind: DecisionRedirect, Path: path}
}

// Allowed reports whether the navigation may proceed.
func (d Decision) Allowed() bool {
	return d.Kind == DecisionAllow
}

func (d Decision) String() string {
	if d.Allowed() {
		return "allow"
	}
	return "redirect:" + d.Path
}

// Guard evaluates policies. It holds no per visitor state.
type Guard struct {
	routes Routes
	logger Logger
}

// NewGuard creates a Guard using routes for sign in and dashboard targets.
func NewGuard(routes Routes, opts ...Option) *Guard {
	o := applyOptions(opts...)
	return &Guard{
		routes: routes,
		logger: o.logger,
	}
}

// Routes returns the routes used by the guard.
func (g *Guard) Routes() Routes {
	return g.routes
}

// Evaluate runs policy for nav. It never fails: anything that cannot be
// established counts as not authenticated.
func (g *Guard) Evaluate(policy Policy, auth AuthChecker, roles RoleSource, nav Navigation) Decision {
	if !nav.Interactive {
		return Allow()
	}

	var d Decision
	switch policy.Kind {
	case PolicyRoleGate:
		d = g.roleGate(policy, auth, roles)
	case PolicySignInPage:
		d = g.signInPage(auth, roles, nav)
	default:
		g.logger.Error("unknown policy kind", "policy", policy.Name, "kind", policy.Kind)
		d = RedirectTo(g.routes.SignIn)
	}

	g.logger.Debug("guard decision",
		"policy", policy.Name,
		"target", nav.Target,
		"decision", d.String(),
	)
	return d
}

func (g *Guard) roleGate(policy Policy, auth AuthChecker, roles RoleSource) Decision {
	if !auth.IsAuthenticated() {
		return RedirectTo(g.routes.SignIn)
	}

	role := roles.Resolve()
	if role == policy.RequiredRole {
		return Allow()
	}

	if path, ok := policy.OnDenied[role]; ok && path != "" {
		return RedirectTo(path)
	}
	return RedirectTo(g.routes.SignIn)
}

func (g *Guard) signInPage(auth AuthChecker, roles RoleSource, nav Navigation) Decision {
	if nav.Target != g.routes.SignIn {
		return Allow()
	}
	if !auth.IsAuthenticated() {
		return Allow()
	}
	return RedirectTo(g.routes.Path(roles.Resolve()))
}
