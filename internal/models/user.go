package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// User is a commenter, keyed by email.
type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// NewUser suffixes the chosen name with a short hash of itself so display
// names stay distinguishable.
func NewUser(username, email string) *User {
	sum := sha256.Sum224([]byte(username))
	return &User{
		Email:    email,
		Username: username + "-" + hex.EncodeToString(sum[:])[:5],
	}
}

func (u *User) Label() string             { return string(LabelUser) }
func (u *User) PrimaryKey() (string, any) { return "email", u.Email }

func (u *User) Properties() map[string]any {
	return map[string]any{
		"email":    u.Email,
		"username": u.Username,
	}
}
