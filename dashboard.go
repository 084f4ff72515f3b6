package gate

const (
	DefaultSignInPath             = "/auth/sign-in"
	DefaultAdminDashboardPath     = "/admin/dashboard"
	DefaultPublisherDashboardPath = "/publisher/dashboard"
)

// Routes is the DashboardRouter: it maps a role to its landing page.
type Routes struct {
	SignIn             string
	AdminDashboard     string
	PublisherDashboard string
}

// DefaultRoutes returns the stock landing pages.
func DefaultRoutes() Routes {
	return Routes{
		SignIn:             DefaultSignInPath,
		AdminDashboard:     DefaultAdminDashboardPath,
		PublisherDashboard: DefaultPublisherDashboardPath,
	}
}

// RoutesFromConfig reads landing pages from cfg, keeping defaults for empty values.
func RoutesFromConfig(cfg Config) Routes {
	r := DefaultRoutes()
	if cfg == nil {
		return r
	}
	if p := cfg.GetSignInPath(); p != "" {
		r.SignIn = p
	}
	if p := cfg.GetAdminDashboardPath(); p != "" {
		r.AdminDashboard = p
	}
	if p := cfg.GetPublisherDashboardPath(); p != "" {
		r.PublisherDashboard = p
	}
	return r
}

// Path returns the landing page for role. Unknown roles land on sign in.
func (r Routes) Path(role Role) string {
	switch role {
	case RoleAdmin:
		return r.AdminDashboard
	case RolePublisher:
		return r.PublisherDashboard
	default:
		return r.SignIn
	}
}
