package repository

import (
	"context"

	"golang-ratchet-tracker/internal/entity"

	"gorm.io/gorm"
)

// UsersRepository is the batch-side view over users.
type UsersRepository interface {
	GetByIDs(ctx context.Context, ids []uint) ([]entity.User, error)
}

type usersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) UsersRepository {
	return &usersRepository{db: db}
}

func (r *usersRepository) GetByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id IN (?)", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
