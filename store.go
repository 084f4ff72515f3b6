package gate

import (
	"strconv"
	"time"
)

// Storage keys. Only KeyAccessToken is written to the Ephemeral lifetime.
const (
	KeyAccessToken     = "accessToken"
	KeyRefreshToken    = "refreshToken"
	KeyUserID          = "userId"
	KeyTokenExpiration = "tokenExpiration"
	KeyRememberMe      = "rememberMe"
	KeyUserRole        = "userRole"
)

// persistentKeys lists every key Clear removes from the Persistent lifetime.
var persistentKeys = []string{
	KeyAccessToken,
	KeyRefreshToken,
	KeyUserID,
	KeyTokenExpiration,
	KeyRememberMe,
	KeyUserRole,
}

// ephemeralKeys lists every key Clear removes from the Ephemeral lifetime.
var ephemeralKeys = []string{
	KeyAccessToken,
}

// TokenStore reads and writes the visitor's tokens.
type TokenStore interface {
	Persist(accessToken, refreshToken string, remember bool)
	Read() (string, bool)
	Clear()
}

// StoredAuthRecord is the full set of values written at sign in.
type StoredAuthRecord struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Expiration   time.Time
	Remember     bool
	Role         Role
	Lifetime     Lifetime
}

var _ TokenStore = (*StorageTokenStore)(nil)

// StorageTokenStore is the TokenStore backed by a Storage.
type StorageTokenStore struct {
	storage Storage
	codec   *TokenCodec
}

// NewTokenStore wraps storage. A nil codec uses NewTokenCodec.
func NewTokenStore(storage Storage, codec *TokenCodec) *StorageTokenStore {
	if codec == nil {
		codec = NewTokenCodec()
	}
	return &StorageTokenStore{
		storage: storage,
		codec:   codec,
	}
}

// Persist writes the access token to the Persistent lifetime when remember is
// set and to the Ephemeral lifetime otherwise. The other lifetime is left as is.
// Refresh token, remember flag and metadata decoded from the access token are
// always written to the Persistent lifetime.
func (s *StorageTokenStore) Persist(accessToken, refreshToken string, remember bool) {
	lifetime := Ephemeral
	if remember {
		lifetime = Persistent
	}

	s.storage.Set(lifetime, KeyAccessToken, accessToken)
	if refreshToken != "" {
		s.storage.Set(Persistent, KeyRefreshToken, refreshToken)
	}
	s.storage.Set(Persistent, KeyRememberMe, strconv.FormatBool(remember))

	claims, ok := s.codec.Decode(accessToken)
	if !ok {
		return
	}

	if id := claims.UserID(); id != "" {
		s.storage.Set(Persistent, KeyUserID, id)
	}

	if exp, ok, _ := claims.Expiration(); ok {
		s.storage.Set(Persistent, KeyTokenExpiration, strconv.FormatInt(exp.UnixMilli(), 10))
	}

	if role := claims.Role(); role.IsKnown() {
		s.StoreRole(role)
	}
}

// Read returns the access token. A Persistent token shadows an Ephemeral one.
func (s *StorageTokenStore) Read() (string, bool) {
	token, _, ok := s.read()
	return token, ok
}

func (s *StorageTokenStore) read() (string, Lifetime, bool) {
	if token, ok := s.storage.Get(Persistent, KeyAccessToken); ok && token != "" {
		return token, Persistent, true
	}
	if token, ok := s.storage.Get(Ephemeral, KeyAccessToken); ok && token != "" {
		return token, Ephemeral, true
	}
	return "", Persistent, false
}

// Clear removes every known key from both lifetimes. Safe to call repeatedly.
func (s *StorageTokenStore) Clear() {
	for _, key := range persistentKeys {
		s.storage.Remove(Persistent, key)
	}
	for _, key := range ephemeralKeys {
		s.storage.Remove(Ephemeral, key)
	}
}

// RefreshToken returns the stored refresh token.
func (s *StorageTokenStore) RefreshToken() (string, bool) {
	v, ok := s.storage.Get(Persistent, KeyRefreshToken)
	return v, ok && v != ""
}

// StoreRole caches role for quick access. Unknown roles are not cached.
func (s *StorageTokenStore) StoreRole(role Role) {
	if !role.IsKnown() {
		return
	}
	s.storage.Set(Persistent, KeyUserRole, string(role))
}

// StoredRole returns the cached role. It is a hint only, guards always
// resolve the role from the token.
func (s *StorageTokenStore) StoredRole() (Role, bool) {
	v, ok := s.storage.Get(Persistent, KeyUserRole)
	if !ok {
		return RoleUnknown, false
	}
	return ParseRole(v)
}

// Record reads every stored value independently.
func (s *StorageTokenStore) Record() StoredAuthRecord {
	rec := StoredAuthRecord{Role: RoleUnknown}

	rec.AccessToken, rec.Lifetime, _ = s.read()
	rec.RefreshToken, _ = s.RefreshToken()
	rec.UserID, _ = s.storage.Get(Persistent, KeyUserID)

	if v, ok := s.storage.Get(Persistent, KeyRememberMe); ok {
		rec.Remember, _ = strconv.ParseBool(v)
	}

	if v, ok := s.storage.Get(Persistent, KeyTokenExpiration); ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			rec.Expiration = time.UnixMilli(ms)
		}
	}

	if role, ok := s.StoredRole(); ok {
		rec.Role = role
	}

	return rec
}
