package domain

// Session is the client's current belief about who is logged in. It is a
// value: readers get a copy and never observe a half-applied update.
type Session struct {
	User    *Identity
	Token   string
	Loading bool
}

// Authenticated reports whether both halves of the session are present.
func (s Session) Authenticated() bool {
	return !s.Loading && s.User != nil && s.Token != ""
}

// Role returns the session's role, or the empty role when logged out.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Clone returns a deep copy so callers cannot mutate the store's identity.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
