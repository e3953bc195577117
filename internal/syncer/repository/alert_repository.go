package repository

import (
	"context"

	"golang-ratchet-tracker/internal/entity"

	"gorm.io/gorm"
)

// AlertsRepository persists breach notices accumulated during a run.
type AlertsRepository interface {
	CreateBatch(ctx context.Context, alerts []entity.Alert) error
}

type alertsRepository struct {
	db *gorm.DB
}

func NewAlertsRepository(db *gorm.DB) AlertsRepository {
	return &alertsRepository{db: db}
}

func (r *alertsRepository) CreateBatch(ctx context.Context, alerts []entity.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&alerts).Error
}
