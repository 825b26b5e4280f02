package service

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is fixed at provisioning time and embedded in every stored hash.
const PasswordCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt work as a real comparison so that
// unknown emails and wrong passwords take comparable time.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), PasswordCost)
		if err == nil {
			dummyHash = string(hashed)
		}
	})
	if dummyHash != "" {
		_ = CheckPassword(dummyHash, password)
	}
}
