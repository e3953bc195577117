package repository

import (
	"context"
	"errors"
	"time"

	"golang-ratchet-tracker/internal/entity"

	"gorm.io/gorm"
)

// ErrStaleUpdate is returned when a checked write lost the race against a
// concurrent writer; the caller skips the position instead of overwriting.
var ErrStaleUpdate = errors.New("position was modified concurrently")

// PositionsRepository is the batch-side view over positions: every user's
// holdings at once, with optimistic-version writes.
type PositionsRepository interface {
	GetAll(ctx context.Context) ([]entity.Position, error)
	UpdateChecked(ctx context.Context, position *entity.Position) error
}

type positionsRepository struct {
	db *gorm.DB
}

func NewPositionsRepository(db *gorm.DB) PositionsRepository {
	return &positionsRepository{db: db}
}

func (r *positionsRepository) GetAll(ctx context.Context) ([]entity.Position, error) {
	var positions []entity.Position
	if err := r.db.WithContext(ctx).Order("user_id asc, symbol asc").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// UpdateChecked persists the ratchet state only if nobody else bumped the
// version since the position was read. RowsAffected 0 means a client edit won
// the race.
func (r *positionsRepository) UpdateChecked(ctx context.Context, position *entity.Position) error {
	res := r.db.WithContext(ctx).Model(&entity.Position{}).
		Where("id = ? AND version = ?", position.ID, position.Version).
		Updates(map[string]interface{}{
			"current_price":      position.CurrentPrice,
			"highest_close":      position.HighestClose,
			"highest_close_date": position.HighestCloseDate,
			"triggered":          position.Triggered,
			"triggered_at":       position.TriggeredAt,
			"version":            position.Version + 1,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	position.Version++
	return nil
}
