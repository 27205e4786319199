// Package codes derives the one-time verification codes used across the
// marketplace (order confirmation, registration, password reset) and
// implements the salted credential hashing scheme.
package codes

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const saltHashLen = 64

func sum(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// OrderCode derives the confirmation code an order execution request must
// present for the given order identity and card token.
func OrderCode(orderID, cardToken string) string {
	return sum(orderID, cardToken)
}

// ResetCode derives the password reset code for a user.
func ResetCode(userID, email string) string {
	return sum(userID, email)
}

// UserCode derives the registration confirmation code from the user identity
// and the two halves of the stored credential hash.
func UserCode(name, saltHash, verifier, email string) string {
	return sum(name, saltHash, verifier, email)
}

// HashPassword produces the stored credential: a random salt is hashed, then
// sha256(sha256(password) || saltHash) is appended to the salt hash. The
// first 64 hex characters are the salt hash, the remainder the verifier.
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed generate salt: %w", err)
	}
	saltHash := sum(string(salt))

	return saltHash + sum(sum(password), saltHash), nil
}

// CheckPassword re-derives the verifier half from the candidate password and
// compares it against the stored credential. Plaintext is never compared.
func CheckPassword(password, stored string) bool {
	if len(stored) != 2*saltHashLen {
		return false
	}
	saltHash := stored[:saltHashLen]
	verifier := sum(sum(password), saltHash)

	return subtle.ConstantTimeCompare([]byte(verifier), []byte(stored[saltHashLen:])) == 1
}

// SplitHash returns the salt hash and verifier halves of a stored credential.
func SplitHash(stored string) (saltHash, verifier string) {
	if len(stored) < saltHashLen {
		return stored, ""
	}
	return stored[:saltHashLen], stored[saltHashLen:]
}
