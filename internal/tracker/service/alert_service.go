package service

import (
	"context"

	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/tracker/repository"
	"golang-ratchet-tracker/pkg/logger"
)

const defaultAlertLimit = 100

// AlertService exposes the per-user breach history.
type AlertService interface {
	List(ctx context.Context, userID uint) ([]entity.Alert, error)
}

type alertService struct {
	alerts repository.AlertsRepository
	log    *logger.Logger
}

func NewAlertService(alerts repository.AlertsRepository, log *logger.Logger) AlertService {
	return &alertService{alerts: alerts, log: log}
}

func (s *alertService) List(ctx context.Context, userID uint) ([]entity.Alert, error) {
	return s.alerts.GetByUser(ctx, userID, defaultAlertLimit)
}
