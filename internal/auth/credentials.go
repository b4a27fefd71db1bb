// Package auth implements the Basic Auth credential gate in front of the
// proxy. Every inbound request passes through it before any upstream contact.
package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"mlflow-auth-proxy/internal/config"
)

// Credentials holds the expected username and a bcrypt hash of the expected
// password. The raw password is hashed at construction and not retained, and
// the pair is immutable for the process lifetime.
type Credentials struct {
	username     []byte
	passwordHash []byte
}

// NewCredentials hashes the configured password and returns the credential
// pair used to gate every request.
func NewCredentials(cfg *config.Config) (*Credentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &Credentials{
		username:     []byte(cfg.Auth.Username),
		passwordHash: hash,
	}, nil
}

// Verify reports whether the supplied username and password match the
// configured pair. The password check goes through bcrypt, which compares
// against the stored hash in a way resistant to timing leakage. Both checks
// always run so a rejected username costs the same as a rejected password.
func (c *Credentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), c.username) == 1
	passOK := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
