package gate

var _ RoleSource = (*RoleResolver)(nil)

// RoleResolver extracts the visitor's role from the stored token.
type RoleResolver struct {
	store  TokenStore
	codec  *TokenCodec
	logger Logger
}

// NewRoleResolver creates a RoleResolver over store.
func NewRoleResolver(store TokenStore, opts ...Option) *RoleResolver {
	o := applyOptions(opts...)
	return &RoleResolver{
		store:  store,
		codec:  o.codec,
		logger: o.logger,
	}
}

// Resolve returns the normalized role, RoleUnknown when there is no usable token
// or role claim.
func (r *RoleResolver) Resolve() Role {
	token, ok := r.store.Read()
	if !ok {
		return RoleUnknown
	}

	claims, ok := r.codec.Decode(token)
	if !ok {
		return RoleUnknown
	}

	role := claims.Role()
	if role == RoleUnknown {
		raw, _ := claims.RoleClaim()
		r.logger.Debug("token role not recognized", "role", raw)
	}
	return role
}
