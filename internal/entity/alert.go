package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Alert is a historical breach notice. One alert is emitted the first time a
// position closes at or below its threshold, never again for the same
// position.
type Alert struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	PositionID uint           `gorm:"not null" json:"position_id"`
	Symbol     string         `gorm:"not null" json:"symbol"`
	Message    string         `gorm:"not null" json:"message"`
	Data       datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
