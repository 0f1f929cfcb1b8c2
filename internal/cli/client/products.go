package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/branchd-dev/storefront/internal/models"
)

// Upload is a new image file sent with a product
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProductInput is the multipart body of a product create or update
type ProductInput struct {
	Name           string
	Description    string
	Price          float64
	ProductTypeID  string
	BrandID        string
	ExistingImages []string
	NewImages      []Upload
	DeletedImages  []string
}

// ProductResource is the product resource. Reads are JSON; writes are multipart.
type ProductResource struct {
	*Resource[models.Product]
}

// Products returns the product resource
func (c *Client) Products() *ProductResource {
	return &ProductResource{Resource: &Resource[models.Product]{client: c, base: "/api/product"}}
}

// Create adds a product with its images
func (p *ProductResource) Create(ctx context.Context, token string, in ProductInput) (string, error) {
	return p.send(ctx, http.MethodPost, p.base+"/add", token, in)
}

// Update replaces a product, keeping ExistingImages and removing DeletedImages
func (p *ProductResource) Update(ctx context.Context, token, id string, in ProductInput) (string, error) {
	return p.send(ctx, http.MethodPut, p.base+"/update/"+id, token, in)
}

func (p *ProductResource) send(ctx context.Context, method, path, token string, in ProductInput) (string, error) {
	body, contentType, err := encodeProduct(in)
	if err != nil {
		return "", err
	}
	return p.client.do(ctx, method, path, token, contentType, body, nil)
}

func encodeProduct(in ProductInput) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", in.Name},
		{"description", in.Description},
		{"price", strconv.FormatFloat(in.Price, 'f', -1, 64)},
		{"productTypeId", in.ProductTypeID},
		{"brandId", in.BrandID},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}
	for _, name := range in.ExistingImages {
		if err := w.WriteField("existingImages", name); err != nil {
			return nil, "", fmt.Errorf("failed to write existing image: %w", err)
		}
	}
	for _, up := range in.NewImages {
		part, err := w.CreateFormFile("images", up.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, up.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write image %s: %w", up.Filename, err)
		}
	}
	for _, name := range in.DeletedImages {
		if err := w.WriteField("deletedImages", name); err != nil {
			return nil, "", fmt.Errorf("failed to write deleted image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
