package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

const tokenVersion = "v1"

var tokenEncoding = base64.RawURLEncoding

// Claims is the signed body of a session token.
type Claims struct {
	UserID    int64 `json:"uid"`
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// HMACStrategy issues "v1.<claims>.<signature>" tokens signed with
// HMAC-SHA256. Both segments are unpadded base64url.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: now}
}

// IssueToken generates signed auth token for the user.
func (s *HMACStrategy) IssueToken(userID int64) (string, error) {
	issued := s.now()
	body, err := json.Marshal(Claims{
		UserID:    userID,
		IssuedAt:  issued.Unix(),
		ExpiresAt: issued.Add(s.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	signed := tokenVersion + "." + tokenEncoding.EncodeToString(body)
	return signed + "." + s.sign(signed), nil
}

// ParseToken validates token and returns encoded user ID.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Verify checks signature and expiry and returns the claims.
func (s *HMACStrategy) Verify(token string) (Claims, error) {
	version, rest, ok := strings.Cut(token, ".")
	if !ok || version != tokenVersion {
		return Claims{}, ErrInvalidToken
	}
	body, sig, ok := strings.Cut(rest, ".")
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.sign(version+"."+body)), []byte(sig)) {
		return Claims{}, ErrInvalidToken
	}

	raw, err := tokenEncoding.DecodeString(body)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil || claims.UserID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	if !s.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return Claims{}, ErrTokenExpired
	}
	return claims, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return tokenEncoding.EncodeToString(mac.Sum(nil))
}
