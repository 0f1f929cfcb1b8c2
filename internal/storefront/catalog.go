// Package storefront holds the customer-facing view state of the catalog: the
// loaded catalog, filters, favorites and the per-product image carousel.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/branchd-dev/storefront/internal/models"
)

// Lister lists every record of a catalog resource
type Lister[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
}

// Catalog is everything the product grid needs
type Catalog struct {
	Products []models.Product
	Types    []models.ProductType
	Brands   []models.Brand
}

// Loader fetches the three catalog resources
type Loader struct {
	Products Lister[models.Product]
	Types    Lister[models.ProductType]
	Brands   Lister[models.Brand]
}

// Load fetches products, product types and brands concurrently. The fetches are
// independent: a failed one leaves its slice empty and the others still fill in.
// The returned error joins every failure.
func (l Loader) Load(ctx context.Context) (*Catalog, error) {
	var (
		cat  Catalog
		errs [3]error
		g    errgroup.Group
	)

	g.Go(func() error {
		products, err := l.Products.ListAll(ctx)
		if err != nil {
			errs[0] = fmt.Errorf("failed to fetch products: %w", err)
			return nil
		}
		cat.Products = products
		return nil
	})
	g.Go(func() error {
		types, err := l.Types.ListAll(ctx)
		if err != nil {
			errs[1] = fmt.Errorf("failed to fetch product types: %w", err)
			return nil
		}
		cat.Types = types
		return nil
	})
	g.Go(func() error {
		brands, err := l.Brands.ListAll(ctx)
		if err != nil {
			errs[2] = fmt.Errorf("failed to fetch brands: %w", err)
			return nil
		}
		cat.Brands = brands
		return nil
	})
	_ = g.Wait()

	return &cat, errors.Join(errs[:]...)
}

// Product returns the product with id
func (c *Catalog) Product(id string) (models.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// BrandName resolves a brand id, falling back to the denormalized name on the product
func (c *Catalog) BrandName(p models.Product) string {
	for _, b := range c.Brands {
		if b.ID == p.BrandID {
			return b.Name
		}
	}
	return p.BrandName
}

// TypeName resolves a product type id, falling back to the denormalized name
func (c *Catalog) TypeName(p models.Product) string {
	for _, t := range c.Types {
		if t.ID == p.ProductTypeID {
			return t.Name
		}
	}
	return p.ProductTypeName
}

// BrandIDs maps brand names (case-sensitive) or ids onto ids. Unknown values are
// returned as an error.
func (c *Catalog) BrandIDs(values []string) ([]string, error) {
	return resolveIDs(values, c.Brands, func(b models.Brand) (string, string) { return b.ID, b.Name }, "brand")
}

// TypeIDs maps product type names or ids onto ids
func (c *Catalog) TypeIDs(values []string) ([]string, error) {
	return resolveIDs(values, c.Types, func(t models.ProductType) (string, string) { return t.ID, t.Name }, "product type")
}

func resolveIDs[T any](values []string, items []T, key func(T) (string, string), kind string) ([]string, error) {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		found := false
		for _, item := range items {
			id, name := key(item)
			if v == id || v == name {
				ids = append(ids, id)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown %s %q", kind, v)
		}
	}
	return ids, nil
}
