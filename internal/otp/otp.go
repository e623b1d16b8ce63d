package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// PendingCredential is a transient record pairing an email with an outstanding
// one-time code. It carries everything needed to promote the holder to a
// verified account once the code is confirmed.
type PendingCredential struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CodeHash  []byte    `json:"code_hash"`
	Birthday  time.Time `json:"birthday"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	// Login distinguishes a login challenge from a signup challenge.
	Login bool `json:"login"`
}

// GenerateCode returns a uniformly random six-digit numeric code. The range
// starts at 100000 so no leading-zero handling is needed.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", codeMin+n.Int64()), nil
}

// HashCode derives the at-rest form of a code. Plaintext codes live only in
// the generate-and-dispatch window.
func HashCode(code string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
}

// Match reports whether code corresponds to the credential's stored hash.
func (c PendingCredential) Match(code string) bool {
	return bcrypt.CompareHashAndPassword(c.CodeHash, []byte(code)) == nil
}
