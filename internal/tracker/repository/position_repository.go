package repository

import (
	"context"
	"errors"
	"strings"

	"golang-ratchet-tracker/internal/entity"
	"golang-ratchet-tracker/internal/tracker/dto"

	"gorm.io/gorm"
)

type PositionsRepository interface {
	Create(ctx context.Context, position *entity.Position) error
	Get(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error)
	FindByID(ctx context.Context, userID, id uint) (*entity.Position, error)
	FindByUserAndSymbol(ctx context.Context, userID uint, symbol string) (*entity.Position, error)
	Update(ctx context.Context, position *entity.Position) error
	Delete(ctx context.Context, userID, id uint) error
}

type positionsRepository struct {
	db *gorm.DB
}

func NewPositionsRepository(db *gorm.DB) PositionsRepository {
	return &positionsRepository{db: db}
}

func (r *positionsRepository) Create(ctx context.Context, position *entity.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *positionsRepository) Get(ctx context.Context, param dto.GetPositionsParam) ([]entity.Position, error) {
	var positions []entity.Position

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if param.UserID != nil {
		qFilter = append(qFilter, "user_id = ?")
		qFilterParam = append(qFilterParam, *param.UserID)
	}

	if len(param.Symbols) > 0 {
		qFilter = append(qFilter, "symbol IN (?)")
		qFilterParam = append(qFilterParam, param.Symbols)
	}

	query := r.db.WithContext(ctx)
	if len(qFilter) > 0 {
		query = query.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}

	if err := query.Order("symbol asc").Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *positionsRepository) FindByID(ctx context.Context, userID, id uint) (*entity.Position, error) {
	var position entity.Position
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&position, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

func (r *positionsRepository) FindByUserAndSymbol(ctx context.Context, userID uint, symbol string) (*entity.Position, error) {
	var position entity.Position
	err := r.db.WithContext(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &position, nil
}

func (r *positionsRepository) Update(ctx context.Context, position *entity.Position) error {
	return r.db.WithContext(ctx).Save(position).Error
}

func (r *positionsRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Position{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
