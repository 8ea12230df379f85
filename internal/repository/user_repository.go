package repository

import (
	"context"

	"gorm.io/gorm"

	"projecthub/internal/model"
)

// UserRepository reads users for the digest job.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return storeErr("create user", err)
	}
	return nil
}

// ListDigestSubscribers returns users who opted into the weekly digest.
func (r *UserRepository) ListDigestSubscribers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("weekly_digest = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, storeErr("list digest subscribers", err)
	}
	return users, nil
}
