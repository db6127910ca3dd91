package domain

import (
	"encoding/json"
	"time"
)

// Role is the coarse permission tier assigned by the backend.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether r grants admin access. Unknown roles never do.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Identity is the authenticated principal as seen by the client. The role is
// whatever the backend embedded in the session; it is never computed locally.
type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// UnmarshalJSON accepts the Mongo-style "_id" when "id" is absent. Encoding
// always uses "id".
func (i *Identity) UnmarshalJSON(data []byte) error {
	type plain Identity
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Identity(raw.plain)
	if i.ID == "" {
		i.ID = raw.MongoID
	}
	return nil
}

// User is the persisted account record on the backend.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string `json:"-"`
	Role         Role
	ProfileImage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the account into its public shape.
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}
