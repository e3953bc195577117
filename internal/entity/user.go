package entity

import "time"

// SummaryFrequency controls how often a user receives the aggregate
// distance-to-threshold summary email.
type SummaryFrequency string

const (
	SummaryFrequencyNone        SummaryFrequency = "none"
	SummaryFrequencyDaily       SummaryFrequency = "daily"
	SummaryFrequencyFriday      SummaryFrequency = "friday"
	SummaryFrequencyTriggerOnly SummaryFrequency = "trigger_only"
)

// Valid reports whether f is a known frequency value.
func (f SummaryFrequency) Valid() bool {
	switch f {
	case SummaryFrequencyNone, SummaryFrequencyDaily, SummaryFrequencyFriday, SummaryFrequencyTriggerOnly:
		return true
	}
	return false
}

type User struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Email            string           `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string           `gorm:"not null" json:"-"`
	NotifyEmail      string           `json:"notify_email"`
	SummaryFrequency SummaryFrequency `gorm:"not null;default:none" json:"summary_frequency"`
	TelegramChatID   int64            `json:"telegram_chat_id"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
