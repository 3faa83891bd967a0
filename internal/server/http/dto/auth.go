package dto

// AuthRequest describes login/password payload. TelegramChatID is only read
// on registration and links the user to the bot for push notices.
type AuthRequest struct {
	Login          string `json:"login"`
	Password       string `json:"password"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty"`
}

// TelegramLoginRequest carries the raw Mini App launch data
// (window.Telegram.WebApp.initData).
type TelegramLoginRequest struct {
	InitData string `json:"init_data"`
}

// SessionResponse is returned by every login route. The same token is also
// set as a cookie and in the Authorization response header.
type SessionResponse struct {
	Token string `json:"token"`
}

// LinkTelegramChatRequest sets the chat that receives push notices. Zero unlinks.
type LinkTelegramChatRequest struct {
	ChatID int64 `json:"chat_id"`
}
