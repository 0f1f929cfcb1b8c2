package storefront

import (
	"slices"

	"github.com/branchd-dev/storefront/internal/models"
)

// Filter narrows the product grid. Empty brand or type sets match everything.
type Filter struct {
	BrandIDs      []string
	TypeIDs       []string
	FavoritesOnly bool
}

// Apply returns the products that pass the filter, in their original order
func (f Filter) Apply(products []models.Product, favorites map[string]bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.FavoritesOnly && !favorites[p.ID] {
			continue
		}
		if len(f.BrandIDs) > 0 && !slices.Contains(f.BrandIDs, p.BrandID) {
			continue
		}
		if len(f.TypeIDs) > 0 && !slices.Contains(f.TypeIDs, p.ProductTypeID) {
			continue
		}
		out = append(out, p)
	}
	return out
}
