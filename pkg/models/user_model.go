package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/novabank/payportal/pkg/views"
)

// User maps to table `users`. The national ID number is stored AES-encrypted
// with a deterministic SHA-256 digest column carrying the uniqueness
// constraint. PasswordHash is a bcrypt hash and must never be serialized.
type User struct {
	ID            uuid.UUID
	FirstName     string
	LastName      string
	IDNumberEnc   string
	IDNumberHash  string
	AccountNumber string
	Username      string
	Email         string
	PasswordHash  string
	PhoneNumber   string
	Country       string
	Address       string
	City          string
	PostalCode    string
	Role          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToProfile returns the public projection sent to clients after login or
// registration. The password hash and encrypted national ID stay server-side.
func (u User) ToProfile() views.UserProfile {
	return views.UserProfile{
		ID:            u.ID.String(),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Username:      u.Username,
		Email:         u.Email,
		AccountNumber: u.AccountNumber,
		PhoneNumber:   u.PhoneNumber,
		Role:          u.Role,
	}
}
