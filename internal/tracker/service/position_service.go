package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-ratchet-tracker/internal/engine"
	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/tracker/dto"
	"golang-ratchet-tracker/internal/tracker/repository"
	"golang-ratchet-tracker/pkg/logger"
	"golang-ratchet-tracker/pkg/utils"
)

var (
	ErrSymbolRequired  = errors.New("symbol is required")
	ErrSymbolExists    = errors.New("a position with this symbol already exists")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrNotDoubled      = errors.New("current price must be at least twice the entry price")
	ErrDeclineTooLarge = errors.New("typical volatility times multiplier must stay below 100 percent")
	ErrPositionNotFound = errors.New("position not found")
)

// PositionService exposes the client-facing ledger operations.
type PositionService interface {
	Create(ctx context.Context, userID uint, req dto.CreatePositionRequest) (*dto.PositionResponse, error)
	List(ctx context.Context, userID uint) ([]dto.PositionResponse, error)
	SetPrice(ctx context.Context, userID, positionID uint, price float64) (*dto.PositionResponse, error)
	Delete(ctx context.Context, userID, positionID uint) error
	SuggestVolatility(closes []float64) dto.SuggestVolatilityResponse
}

type positionService struct {
	positions repository.PositionsRepository
	alerts    repository.AlertsRepository
	log       *logger.Logger
	now       func() time.Time
}

func NewPositionService(positions repository.PositionsRepository, alerts repository.AlertsRepository, log *logger.Logger) PositionService {
	return &positionService{
		positions: positions,
		alerts:    alerts,
		log:       log,
		now:       utils.TimeNowEastern,
	}
}

func (s *positionService) Create(ctx context.Context, userID uint, req dto.CreatePositionRequest) (*dto.PositionResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, ErrSymbolRequired
	}
	if req.EntryPrice <= 0 || req.CurrentPrice <= 0 {
		return nil, ErrInvalidPrice
	}
	if !engine.CanAdmit(req.EntryPrice, req.CurrentPrice) {
		return nil, ErrNotDoubled
	}
	if req.TypicalVolatility < 0 || req.VolatilityMultiplier < 0 {
		return nil, fmt.Errorf("%w: negative volatility settings", ErrDeclineTooLarge)
	}
	if !engine.ValidDecline(req.TypicalVolatility, req.VolatilityMultiplier) {
		return nil, ErrDeclineTooLarge
	}

	if _, err := s.positions.FindByUserAndSymbol(ctx, userID, symbol); err == nil {
		return nil, ErrSymbolExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		companyName = symbol
	}

	now := s.now()
	position := &entity.Position{
		UserID:               userID,
		Symbol:               symbol,
		CompanyName:          companyName,
		EntryPrice:           req.EntryPrice,
		CurrentPrice:         req.CurrentPrice,
		HighestClose:         req.CurrentPrice,
		HighestCloseDate:     now,
		TypicalVolatility:    req.TypicalVolatility,
		VolatilityMultiplier: req.VolatilityMultiplier,
		Version:              1,
	}

	if err := s.positions.Create(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to create position: %w", err)
	}

	s.log.InfoContext(ctx, "Position created",
		logger.StringField("symbol", symbol),
		logger.Float64Field("entry_price", req.EntryPrice),
		logger.Float64Field("current_price", req.CurrentPrice),
	)

	resp := toPositionResponse(position)
	return &resp, nil
}

func (s *positionService) List(ctx context.Context, userID uint) ([]dto.PositionResponse, error) {
	positions, err := s.positions.Get(ctx, dto.GetPositionsParam{UserID: utils.ToPointer(userID)})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PositionResponse, 0, len(positions))
	for i := range positions {
		responses = append(responses, toPositionResponse(&positions[i]))
	}
	return responses, nil
}

// SetPrice applies a manual price edit through the same ratchet path the sync
// job uses, so a hand-entered close can trigger an alert too.
func (s *positionService) SetPrice(ctx context.Context, userID, positionID uint, price float64) (*dto.PositionResponse, error) {
	position, err := s.positions.FindByID(ctx, userID, positionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}

	upd, err := engine.ApplyPrice(position, price, s.now())
	if err != nil {
		return nil, ErrInvalidPrice
	}

	if upd.Changed {
		position.Version++
		if err := s.positions.Update(ctx, position); err != nil {
			return nil, fmt.Errorf("failed to update position: %w", err)
		}
	}

	if upd.Alert != nil {
		if err := s.alerts.Create(ctx, upd.Alert); err != nil {
			s.log.ErrorContext(ctx, "Failed to persist alert", logger.ErrorField(err), logger.StringField("symbol", position.Symbol))
		}
	}

	resp := toPositionResponse(position)
	return &resp, nil
}

func (s *positionService) Delete(ctx context.Context, userID, positionID uint) error {
	if err := s.positions.Delete(ctx, userID, positionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPositionNotFound
		}
		return err
	}
	return nil
}

func (s *positionService) SuggestVolatility(closes []float64) dto.SuggestVolatilityResponse {
	vol, ok := engine.SuggestVolatility(closes)
	return dto.SuggestVolatilityResponse{TypicalVolatility: vol, Found: ok}
}

func toPositionResponse(p *entity.Position) dto.PositionResponse {
	threshold := engine.ComputeThreshold(p.HighestClose, p.TypicalVolatility, p.VolatilityMultiplier)

	distance := 0.0
	if p.CurrentPrice > 0 {
		distance = (p.CurrentPrice - threshold) / p.CurrentPrice * 100
	}

	return dto.PositionResponse{
		ID:                   p.ID,
		Symbol:               p.Symbol,
		CompanyName:          p.CompanyName,
		EntryPrice:           p.EntryPrice,
		CurrentPrice:         p.CurrentPrice,
		HighestClose:         p.HighestClose,
		HighestCloseDate:     p.HighestCloseDate,
		TypicalVolatility:    p.TypicalVolatility,
		VolatilityMultiplier: p.VolatilityMultiplier,
		ThresholdPrice:       threshold,
		DistanceToThreshold:  distance,
		Triggered:            p.Triggered,
		TriggeredAt:          p.TriggeredAt,
		DateAdded:            p.CreatedAt,
	}
}
