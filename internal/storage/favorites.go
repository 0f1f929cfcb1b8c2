package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/branchd-dev/storefront/internal/models"
)

// FavoriteStore keeps favorite product ids per backend profile and user
type FavoriteStore struct {
	db      *gorm.DB
	profile string
}

// NewFavoriteStore returns a favorites store for one backend profile
func NewFavoriteStore(db *gorm.DB, profile string) *FavoriteStore {
	return &FavoriteStore{db: db, profile: profile}
}

// List returns the user's favorite product ids, oldest first
func (f *FavoriteStore) List(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := f.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("profile = ? AND user_id = ?", f.profile, userID).
		Order("created_at ASC, id ASC").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

// Add marks a product as favorite. Adding an existing favorite is a no-op.
func (f *FavoriteStore) Add(ctx context.Context, userID, productID string) error {
	fav := models.Favorite{Profile: f.profile, UserID: userID, ProductID: productID}
	err := f.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove unmarks a product. Removing a missing favorite is a no-op.
func (f *FavoriteStore) Remove(ctx context.Context, userID, productID string) error {
	err := f.db.WithContext(ctx).
		Where("profile = ? AND user_id = ? AND product_id = ?", f.profile, userID, productID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}
