package gate

// TemplateRoleKey is the view variable holding the visitor role.
var TemplateRoleKey = "role"

// TemplateHelpers returns functions and data for view engines that accept a
// global function map, such as the django engine's AddFuncMap.
//
// In templates, you can then use:
//
//	{% if is_known_role(role) %}
//	<a href="{{ dashboard_path(role) }}">Dashboard</a>
//	{% if has_role(role, roles.admin) %}
func TemplateHelpers(routes Routes) map[string]any {
	return map[string]any{
		"dashboard_path": func(role any) string {
			return routes.Path(templateRole(role))
		},
		"has_role": func(role any, want string) bool {
			return templateRole(role) == NormalizeRole(want)
		},
		"is_known_role": func(role any) bool {
			return templateRole(role).IsKnown()
		},
		"sign_in_path": routes.SignIn,
		"roles": map[string]string{
			"admin":     string(RoleAdmin),
			"publisher": string(RolePublisher),
			"unknown":   string(RoleUnknown),
		},
	}
}

func templateRole(v any) Role {
	switch r := v.(type) {
	case Role:
		return r
	case string:
		return NormalizeRole(r)
	default:
		return RoleUnknown
	}
}
