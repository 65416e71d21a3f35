package auth

// Session identifies the caller. The zero value is an anonymous session.
type Session struct {
	UserID string
	Token  string
}

// Authenticated reports whether the session belongs to a signed-in user
func (s Session) Authenticated() bool {
	return s.UserID != ""
}
