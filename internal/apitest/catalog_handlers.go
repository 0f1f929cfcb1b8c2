package apitest

import (
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/branchd-dev/storefront/internal/models"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

// catalogStore is a named-record collection. Callers hold Server.mu.
type catalogStore interface {
	label() string
	all() any
	get(id string) (any, bool)
	add(name string) any
	rename(id, name string) (any, bool)
	remove(id string) bool
	inUse(id string) bool
}

// registerCatalog mounts the CRUD routes of a named-record resource under /api/<name>
func (s *Server) registerCatalog(name string, store catalogStore) {
	routes := s.router.Group("/api/" + name)

	routes.GET("/all", func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ok(c, "", store.all())
	})

	routes.GET("/:id", func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		item, found := store.get(c.Param("id"))
		if !found {
			fail(c, http.StatusNotFound, store.label()+" not found")
			return
		}
		ok(c, "", item)
	})

	routes.POST("/add", s.jwtAuthMiddleware(), s.adminOnly(), func(c *gin.Context) {
		var req nameRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			fail(c, http.StatusBadRequest, "Name is required")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		ok(c, store.label()+" added", store.add(strings.TrimSpace(req.Name)))
	})

	routes.PUT("/update/:id", s.jwtAuthMiddleware(), s.adminOnly(), func(c *gin.Context) {
		var req nameRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			fail(c, http.StatusBadRequest, "Name is required")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		item, found := store.rename(c.Param("id"), strings.TrimSpace(req.Name))
		if !found {
			fail(c, http.StatusNotFound, store.label()+" not found")
			return
		}
		ok(c, store.label()+" updated", item)
	})

	routes.DELETE("/delete/:id", s.jwtAuthMiddleware(), s.adminOnly(), func(c *gin.Context) {
		id := c.Param("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		if store.inUse(id) {
			fail(c, http.StatusConflict, store.label()+" is used by a product")
			return
		}
		if !store.remove(id) {
			fail(c, http.StatusNotFound, store.label()+" not found")
			return
		}
		ok(c, store.label()+" deleted", nil)
	})
}

type brandStore struct{ s *Server }

func (b brandStore) label() string { return "Brand" }

func (b brandStore) all() any { return slices.Clone(b.s.brands) }

func (b brandStore) get(id string) (any, bool) {
	i := slices.IndexFunc(b.s.brands, func(v models.Brand) bool { return v.ID == id })
	if i < 0 {
		return nil, false
	}
	return b.s.brands[i], true
}

func (b brandStore) add(name string) any {
	brand := models.Brand{ID: uuid.NewString(), Name: name}
	b.s.brands = append(b.s.brands, brand)
	return brand
}

func (b brandStore) rename(id, name string) (any, bool) {
	i := slices.IndexFunc(b.s.brands, func(v models.Brand) bool { return v.ID == id })
	if i < 0 {
		return nil, false
	}
	b.s.brands[i].Name = name
	return b.s.brands[i], true
}

func (b brandStore) remove(id string) bool {
	n := len(b.s.brands)
	b.s.brands = slices.DeleteFunc(b.s.brands, func(v models.Brand) bool { return v.ID == id })
	return len(b.s.brands) < n
}

func (b brandStore) inUse(id string) bool {
	return slices.ContainsFunc(b.s.products, func(p models.Product) bool { return p.BrandID == id })
}

type typeStore struct{ s *Server }

func (t typeStore) label() string { return "Product type" }

func (t typeStore) all() any { return slices.Clone(t.s.types) }

func (t typeStore) get(id string) (any, bool) {
	i := slices.IndexFunc(t.s.types, func(v models.ProductType) bool { return v.ID == id })
	if i < 0 {
		return nil, false
	}
	return t.s.types[i], true
}

func (t typeStore) add(name string) any {
	pt := models.ProductType{ID: uuid.NewString(), Name: name}
	t.s.types = append(t.s.types, pt)
	return pt
}

func (t typeStore) rename(id, name string) (any, bool) {
	i := slices.IndexFunc(t.s.types, func(v models.ProductType) bool { return v.ID == id })
	if i < 0 {
		return nil, false
	}
	t.s.types[i].Name = name
	return t.s.types[i], true
}

func (t typeStore) remove(id string) bool {
	n := len(t.s.types)
	t.s.types = slices.DeleteFunc(t.s.types, func(v models.ProductType) bool { return v.ID == id })
	return len(t.s.types) < n
}

func (t typeStore) inUse(id string) bool {
	return slices.ContainsFunc(t.s.products, func(p models.Product) bool { return p.ProductTypeID == id })
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].Email != users[j].Email {
			return users[i].Email < users[j].Email
		}
		return users[i].ID < users[j].ID
	})
}
