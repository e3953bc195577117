package entity

import (
	"time"

	"gorm.io/gorm"
)

// Position is one tracked equity holding. A position is only admitted once
// its price has doubled from the entry price; from then on the highest
// observed close ratchets upward and the exit threshold is always derived
// from it, never stored.
type Position struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"not null;index" json:"user_id"`
	Symbol               string         `gorm:"not null" json:"symbol"`
	CompanyName          string         `json:"company_name"`
	EntryPrice           float64        `gorm:"not null" json:"entry_price"`
	CurrentPrice         float64        `gorm:"not null" json:"current_price"`
	HighestClose         float64        `gorm:"not null" json:"highest_close"`
	HighestCloseDate     time.Time      `json:"highest_close_date"`
	TypicalVolatility    float64        `gorm:"not null" json:"typical_volatility"`
	VolatilityMultiplier float64        `gorm:"not null" json:"volatility_multiplier"`
	Triggered            bool           `gorm:"not null" json:"triggered"`
	TriggeredAt          *time.Time     `json:"triggered_at"`
	Version              int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
	User                 User           `gorm:"foreignKey:UserID" json:"-"`
}

func (Position) TableName() string {
	return "positions"
}
