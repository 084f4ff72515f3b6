package gate

// Gate binds the guard components to one visitor's storage. Build one per
// request; it carries nothing between navigations.
type Gate struct {
	Store    *StorageTokenStore
	State    *AuthState
	Resolver *RoleResolver
	guard    *Guard
	codec    *TokenCodec
}

// New composes a Gate over storage.
func New(storage Storage, routes Routes, opts ...Option) *Gate {
	o := applyOptions(opts...)
	shared := append(append([]Option{}, opts...), WithCodec(o.codec))
	store := NewTokenStore(storage, o.codec)
	return &Gate{
		Store:    store,
		State:    NewAuthState(store, shared...),
		Resolver: NewRoleResolver(store, shared...),
		guard:    NewGuard(routes, shared...),
		codec:    o.codec,
	}
}

// Evaluate runs policy against this visitor.
func (g *Gate) Evaluate(policy Policy, nav Navigation) Decision {
	return g.guard.Evaluate(policy, g.State, g.Resolver, nav)
}

// IsAuthenticated reports whether the visitor holds a valid token.
func (g *Gate) IsAuthenticated() bool {
	return g.State.IsAuthenticated()
}

// Role returns the visitor's role.
func (g *Gate) Role() Role {
	return g.Resolver.Resolve()
}

// Claims decodes the stored access token with the codec the gate was
// built with.
func (g *Gate) Claims() (Claims, bool) {
	token, ok := g.Store.Read()
	if !ok {
		return nil, false
	}
	return g.codec.Decode(token)
}

// DashboardPath returns the visitor's landing page.
func (g *Gate) DashboardPath() string {
	return g.guard.routes.Path(g.Role())
}

// SignIn persists tokens handed over by the login collaborator.
func (g *Gate) SignIn(accessToken, refreshToken string, remember bool) {
	g.Store.Persist(accessToken, refreshToken, remember)
}

// SignOut clears every stored value.
func (g *Gate) SignOut() {
	g.Store.Clear()
}
