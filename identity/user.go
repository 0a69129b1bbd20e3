// Package identity defines the user principal served by authgate.
package identity

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an identity principal. Username and email are unique
// case-insensitively; PasswordHash holds salt followed by the derived key and
// never leaves the process.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`

	PhotoData []byte `json:"-"`

	PasswordHash    []byte    `json:"-"`
	PasswordChanged time.Time `json:"password_changed"`
}

// FullName derives the display name from its parts. It is never stored.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Photo returns the base64 form of the stored photo, or "" when unset.
func (u *User) Photo() string {
	if len(u.PhotoData) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(u.PhotoData)
}

// PasswordExpired reports whether the password is older than the given window.
func (u *User) PasswordExpired(window time.Duration) bool {
	return time.Now().After(u.PasswordChanged.Add(window))
}
