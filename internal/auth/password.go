// Package auth provides password hashing, access-token signing, and the
// bearer-token middleware that resolves the caller's identity per request.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for new digests. Verification reads
// the cost back out of the stored digest, so this can be raised later without
// invalidating existing records.
const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the plaintext does not match
// the stored digest. Any other Verify error means the digest itself is
// malformed — a data-integrity problem, not a bad credential.
var ErrPasswordMismatch = errors.New("auth: password mismatch")

// PasswordService provides bcrypt hashing and verification.
//
// The cost is injectable so tests can use the bcrypt minimum (4) instead of
// paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Intended for tests; do not lower the cost in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash produces a salted bcrypt digest of the plaintext. The digest embeds
// its own salt and cost, so two calls with the same input yield different
// digests and verification is self-describing.
//
// Plaintexts longer than 72 bytes are rejected rather than silently
// truncated (a bcrypt limit).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(digest), nil
}

// Verify checks a plaintext password against a stored digest.
//
// Returns nil on match, ErrPasswordMismatch on a wrong password, and a
// wrapped error for a digest bcrypt cannot parse. The underlying comparison
// is constant-time.
func (p *PasswordService) Verify(digest, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password digest: %w", err)
	}
	return nil
}
