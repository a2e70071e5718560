package relief

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialHasher turns secrets into storable hashes and checks them.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	// Verify compares secret against stored. legacy is true when stored is a
	// plaintext value written before hashing was introduced; such records
	// should be rehashed once the secret is known.
	Verify(stored, secret string) (ok, legacy bool)
}

// BcryptHasher hashes credentials with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher with the given cost. Out-of-range values
// select bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
		}
		return "", fmt.Errorf("hashing credential: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(stored, secret string) (bool, bool) {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) == 1, true
}

// IsHashed reports whether stored looks like a bcrypt hash rather than a
// legacy plaintext value.
func IsHashed(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}

// normalizeAnswer folds a security answer before hashing or comparing.
// Whitespace is significant.
func normalizeAnswer(answer string) string {
	return strings.ToLower(answer)
}

var _ CredentialHasher = (*BcryptHasher)(nil)
