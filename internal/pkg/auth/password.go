package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordNotSet is returned by Compare for accounts created through
// Telegram login, which have no password.
var ErrPasswordNotSet = errors.New("password not set")

// PasswordHasher defines hashing strategy for credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// BcryptHasher uses bcrypt to hash passwords.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates BcryptHasher; zero cost means bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash fails for passwords longer than 72 bytes, which bcrypt would
// otherwise truncate.
func (h *BcryptHasher) Hash(password string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	if hash == "" {
		return ErrPasswordNotSet
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
