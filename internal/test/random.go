package test

import "math/rand/v2"

const loginAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns an alphanumeric string with a length in
// [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	buf := make([]byte, minLen+rand.IntN(maxLen-minLen+1))
	for i := range buf {
		buf[i] = loginAlphabet[rand.IntN(len(loginAlphabet))]
	}
	return string(buf)
}

// RandomLogin returns a login that is unlikely to clash within a test run.
func RandomLogin(prefix string) string {
	return prefix + "-" + RandomASCIIString(6, 10)
}

// RandomChatID returns a positive Telegram chat id.
func RandomChatID() int64 {
	return rand.Int64N(1<<40) + 1
}
