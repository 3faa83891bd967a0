package model

import "time"

// User represents a marketplace member.
type User struct {
	ID             int64
	Login          string
	PasswordHash   string
	TelegramChatID int64
	CreatedAt      time.Time
}
