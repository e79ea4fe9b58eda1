package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcryptInput maps a password of any length onto bcrypt's 72-byte input.
// bcrypt rejects input past 72 bytes, so the password is reduced to
// its base64 SHA-256 digest (44 bytes, no NULs) first.
func bcryptInput(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword(bcryptInput(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(plain)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnPasswordCheck performs a bcrypt comparison that always fails.  Login
// calls it for unknown emails so that a missing account costs the same as a
// wrong password.  The dummy hash is generated once with the first cost seen.
func BurnPasswordCheck(plain string, cost int) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword(bcryptInput("lost-and-found"), cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, bcryptInput(plain))
}
