package model

import (
	"strings"
	"time"

	"github.com/iliyamo/lost-and-found/internal/utils"
)

// User represents an application user record as stored in the `users`
// table.  PasswordHash is a bcrypt digest; the plaintext password is never
// kept.  Users are created by registration and never updated or deleted.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, trimmed and lower-cased.
//  PasswordHash – bcrypt hashed password.
//  Location     – optional free-text location.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Location     *string   // users.location (nullable)
	CreatedAt    time.Time // users.created_at
}

// PublicUser is the subset of a user returned over the API.
type PublicUser struct {
	ID       uint64  `json:"id"`
	Email    string  `json:"email"`
	Location *string `json:"location"`
}

// NormalizeEmail trims and lower-cases an email so that uniqueness is
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds a User with a freshly salted bcrypt hash of password.
func NewUser(email, password string, location *string, cost int) (*User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	return &User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Location:     location,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}, nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return utils.VerifyPassword(u.PasswordHash, plain)
}

// Public strips credentials from the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Location: u.Location}
}
