// Package auth holds credential hashing and session token helpers shared by
// the services.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Stored hashes are "hex(key).hex(salt)".
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

var (
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrMalformedHash is returned when a stored hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
)

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// HashPassword derives a salted scrypt credential with a fresh random salt.
func HashPassword(password string) (string, error) {
	salt, err := RandomBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// VerifyPassword checks password against a hash produced by HashPassword.
// The key comparison runs in constant time.
func VerifyPassword(password, stored string) error {
	keyHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok {
		return ErrMalformedHash
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return ErrMalformedHash
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return ErrMalformedHash
	}

	got, err := deriveKey(password, salt)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// RandomPassword returns an unguessable password for accounts that never log
// in locally.
func RandomPassword() (string, error) {
	b, err := RandomBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
