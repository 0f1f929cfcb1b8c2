package apitest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/branchd-dev/storefront/internal/auth"
	"github.com/branchd-dev/storefront/internal/models"
)

// AddUser stores a verified account and returns it
func (s *Server) AddUser(user models.User, password string) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	if user.Role == models.RoleNone {
		user.Role = models.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(user.Email) != nil {
		return models.User{}, fmt.Errorf("user %s already exists", user.Email)
	}
	return s.addAccount(user, hash), nil
}

// SeedUser adds a verified account and returns it
func (s *Server) SeedUser(t testing.TB, user models.User, password string) models.User {
	t.Helper()
	created, err := s.AddUser(user, password)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return created
}

// Token issues a bearer token for a seeded user
func (s *Server) Token(t testing.TB, user models.User) string {
	t.Helper()
	token, err := s.issuer.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// User returns the stored account with id
func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, found := s.accounts[id]
	if !found {
		return models.User{}, false
	}
	return acc.user, true
}

// SeedBrand adds a brand
func (s *Server) SeedBrand(name string) models.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return brandStore{s}.add(name).(models.Brand)
}

// SeedType adds a product type
func (s *Server) SeedType(name string) models.ProductType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return typeStore{s}.add(name).(models.ProductType)
}

// SeedProduct adds a product. Images are stored with placeholder content.
func (s *Server) SeedProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for _, name := range p.Images {
		s.uploads[name] = []byte("image:" + name)
	}
	s.products = append(s.products, p)
	return s.withNames(p)
}

// Products returns the stored products
func (s *Server) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, s.withNames(p))
	}
	return out
}

// HasUpload reports whether an image is stored under name
func (s *Server) HasUpload(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := s.uploads[name]
	return found
}

// SetCode changes the code emailed for verification and password reset
func (s *Server) SetCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code = code
}
