package gate

import "github.com/google/uuid"

// UserUUID parses UserID as a UUID.
func (c Claims) UserUUID() (uuid.UUID, bool) {
	id, err := uuid.Parse(c.UserID())
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
