package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/blake2b"
)

// PasswordDigest is the stored form of a room password.
type PasswordDigest [blake2b.Size256]byte

// HashPassword digests a room password. Digests of distinct passwords differ,
// so comparing digests keeps exact, case-sensitive matching.
func HashPassword(password string) PasswordDigest {
	return blake2b.Sum256([]byte(password))
}

// ComparePassword reports whether password matches the stored digest.
func ComparePassword(digest PasswordDigest, password string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare(digest[:], candidate[:]) == 1
}
