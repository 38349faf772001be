package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Users maps usernames to bcrypt password hashes.
type Users map[string]string

// dummyHash is compared against when the user does not exist so that
// unknown and known usernames take the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("artifactpg"), bcrypt.MinCost)

// Authenticate reports whether password matches the user's hash.
func (u Users) Authenticate(username, password string) bool {
	hash, ok := u[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword returns the bcrypt hash of password for a Users entry.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
