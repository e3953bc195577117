package dto

// RegisterRequest is the payload for creating a user account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed token for an authenticated session.
type AuthResponse struct {
	Token string `json:"token"`
}

// PreferencesRequest updates the notification settings of a user.
type PreferencesRequest struct {
	NotifyEmail      string `json:"notify_email"`
	SummaryFrequency string `json:"summary_frequency"`
	TelegramChatID   int64  `json:"telegram_chat_id"`
}

// PreferencesResponse is the current notification settings of a user.
type PreferencesResponse struct {
	NotifyEmail      string `json:"notify_email"`
	SummaryFrequency string `json:"summary_frequency"`
	TelegramChatID   int64  `json:"telegram_chat_id"`
}