package security

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ResearcherAuth checks the single researcher credential guarding the
// export endpoints
type ResearcherAuth struct {
	user         string
	passwordHash []byte
}

// NewResearcherAuth creates a checker for user and a bcrypt password hash.
// With an empty hash every check fails.
func NewResearcherAuth(user, passwordHash string) *ResearcherAuth {
	return &ResearcherAuth{user: user, passwordHash: []byte(passwordHash)}
}

// Enabled reports whether a password hash is configured
func (a *ResearcherAuth) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Check reports whether user and password match the configured credential
func (a *ResearcherAuth) Check(user, password string) bool {
	if !a.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword hashes a password for RESEARCHER_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
