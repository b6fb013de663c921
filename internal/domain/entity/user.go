package entity

// User is the session user a component acts for.
// The zero value is the anonymous user; its empty email is valid everywhere.
type User struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

// IsAnonymous returns true if no email is known for the user
func (u User) IsAnonymous() bool {
	return u.Email == ""
}

// IsAdmin returns true for administrator sessions
func (u User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
