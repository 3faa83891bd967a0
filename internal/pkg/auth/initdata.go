package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidInitData reports Mini App launch data that fails verification.
	ErrInvalidInitData = errors.New("invalid telegram init data")
	// ErrInitDataDisabled is returned when no bot token is configured.
	ErrInitDataDisabled = errors.New("telegram login disabled")
)

// TelegramUser is the user object Telegram embeds in Mini App launch data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// InitData is verified Mini App launch data.
type InitData struct {
	User     TelegramUser
	AuthDate time.Time
	QueryID  string
}

// InitDataVerifier checks the hash Telegram attaches to Mini App launch
// data. The signing key is HMAC-SHA256("WebAppData", botToken).
type InitDataVerifier struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewInitDataVerifier builds a verifier for the bot. Launch data older than
// maxAge is rejected; a non-positive maxAge disables the age check.
func NewInitDataVerifier(botToken string, maxAge time.Duration) *InitDataVerifier {
	v := &InitDataVerifier{maxAge: maxAge, now: time.Now}
	if botToken != "" {
		v.key = hmacSHA256([]byte("WebAppData"), []byte(botToken))
	}
	return v
}

// Verify parses raw launch data and checks its signature and age.
func (v *InitDataVerifier) Verify(raw string) (InitData, error) {
	if v.key == nil {
		return InitData{}, ErrInitDataDisabled
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}
	hash := values.Get("hash")
	if hash == "" {
		return InitData{}, fmt.Errorf("%w: missing hash", ErrInvalidInitData)
	}
	got, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(got, hmacSHA256(v.key, []byte(dataCheckString(values)))) {
		return InitData{}, fmt.Errorf("%w: hash mismatch", ErrInvalidInitData)
	}

	authUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return InitData{}, fmt.Errorf("%w: bad auth_date", ErrInvalidInitData)
	}
	authDate := time.Unix(authUnix, 0)
	if v.maxAge > 0 && v.now().Sub(authDate) > v.maxAge {
		return InitData{}, fmt.Errorf("%w: expired", ErrInvalidInitData)
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return InitData{}, fmt.Errorf("%w: bad user", ErrInvalidInitData)
	}
	return InitData{User: user, AuthDate: authDate, QueryID: values.Get("query_id")}, nil
}

// dataCheckString joins every field except hash as sorted key=value lines.
func dataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + values.Get(k)
	}
	return strings.Join(lines, "\n")
}

func hmacSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}
