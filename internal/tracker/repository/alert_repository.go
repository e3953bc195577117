package repository

import (
	"context"

	"golang-ratchet-tracker/internal/entity"

	"gorm.io/gorm"
)

type AlertsRepository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	GetByUser(ctx context.Context, userID uint, limit int) ([]entity.Alert, error)
}

type alertsRepository struct {
	db *gorm.DB
}

func NewAlertsRepository(db *gorm.DB) AlertsRepository {
	return &alertsRepository{db: db}
}

func (r *alertsRepository) Create(ctx context.Context, alert *entity.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertsRepository) GetByUser(ctx context.Context, userID uint, limit int) ([]entity.Alert, error) {
	var alerts []entity.Alert
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}
