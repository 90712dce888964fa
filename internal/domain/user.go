package domain

import (
	"errors"
	"time"
)

// User is a person that can take part in trips. Identities come from the
// token issuer; profiles are mirrored locally so balances can show names.
type User struct {
	ID        string
	Name      string
	Username  string
	Email     string
	CreatedAt time.Time
}

// DisplayName returns the name shown in balance views.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrUserNotFound = errors.New("user not found")
)
