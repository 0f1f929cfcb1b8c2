package storefront

import (
	"context"
	"fmt"
)

// FavoriteStore persists favorite product ids per user
type FavoriteStore interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

// Favorites is the favorite set of one user
type Favorites struct {
	store  FavoriteStore
	userID string
}

// NewFavorites returns the favorites of userID
func NewFavorites(store FavoriteStore, userID string) *Favorites {
	return &Favorites{store: store, userID: userID}
}

// Set returns the favorite product ids as a set
func (f *Favorites) Set(ctx context.Context) (map[string]bool, error) {
	ids, err := f.store.List(ctx, f.userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Toggle flips the favorite state of a product and reports the new state
func (f *Favorites) Toggle(ctx context.Context, productID string) (bool, error) {
	set, err := f.Set(ctx)
	if err != nil {
		return false, err
	}
	if set[productID] {
		if err := f.store.Remove(ctx, f.userID, productID); err != nil {
			return true, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return false, nil
	}
	if err := f.store.Add(ctx, f.userID, productID); err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return true, nil
}
