// Package passpkg hashes and verifies account credentials.
package passpkg

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest credential bcrypt accepts.
const MaxLength = 72

// Hash returns the bcrypt hash of the password.
func Hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedPassword), nil
}

// Check checks if the provided password is correct.
func Check(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// CheckAbsent spends the same work as Check against a fixed hash and always fails.
//
// Callers use it when the credential owner does not exist, so a lookup miss costs as much
// as a wrong password.
func CheckAbsent(password string) error {
	dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("absent-account"), bcrypt.DefaultCost)
		if err == nil {
			dummyHash = string(h)
		}
	})

	err := bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
	if err == nil {
		return bcrypt.ErrMismatchedHashAndPassword
	}

	return err
}
