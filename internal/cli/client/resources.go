package client

import (
	"context"
	"net/http"

	"github.com/branchd-dev/storefront/internal/models"
)

// Resource is the CRUD surface shared by the catalog resources
type Resource[T any] struct {
	client *Client
	base   string
}

// Brands returns the brand resource
func (c *Client) Brands() *Resource[models.Brand] {
	return &Resource[models.Brand]{client: c, base: "/api/brand"}
}

// ProductTypes returns the product type resource
func (c *Client) ProductTypes() *Resource[models.ProductType] {
	return &Resource[models.ProductType]{client: c, base: "/api/product-type"}
}

// ListAll returns every record
func (r *Resource[T]) ListAll(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := r.client.doJSON(ctx, http.MethodGet, r.base+"/all", "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns one record
func (r *Resource[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var item T
	if _, err := r.client.doJSON(ctx, http.MethodGet, r.base+"/"+id, "", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create adds a record and returns the backend message
func (r *Resource[T]) Create(ctx context.Context, token string, item T) (string, error) {
	return r.client.doJSON(ctx, http.MethodPost, r.base+"/add", token, item, nil)
}

// Update replaces a record and returns the backend message
func (r *Resource[T]) Update(ctx context.Context, token, id string, item T) (string, error) {
	return r.client.doJSON(ctx, http.MethodPut, r.base+"/update/"+id, token, item, nil)
}

// Delete removes a record and returns the backend message
func (r *Resource[T]) Delete(ctx context.Context, token, id string) (string, error) {
	return r.client.doJSON(ctx, http.MethodDelete, r.base+"/delete/"+id, token, nil, nil)
}
