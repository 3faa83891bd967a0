package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidToken reports a token that is malformed, forged or expired.
	ErrInvalidToken = errors.New("invalid auth token")
	// ErrTokenExpired is a more specific ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

type Options struct {
	TTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}
