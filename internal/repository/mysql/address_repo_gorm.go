package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
	"github.com/siwamsingh/bookstore-backend/internal/repository"
)

type addressRepo struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) repository.AddressRepository {
	return &addressRepo{db: db}
}

// FindByIDForUser joins ownership into the lookup so an address belonging to
// another user is indistinguishable from a missing one.
func (r *addressRepo) FindByIDForUser(ctx context.Context, id, userID uint64) (*domain.Address, error) {
	var a domain.Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
