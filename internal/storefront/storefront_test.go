package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/storefront/internal/models"
)

var products = []models.Product{
	{ID: "p1", Name: "Chair", BrandID: "b1", ProductTypeID: "t1", Images: []string{"a.jpg", "b.jpg", "c.jpg"}},
	{ID: "p2", Name: "Desk", BrandID: "b2", ProductTypeID: "t1", Images: nil},
	{ID: "p3", Name: "Lamp", BrandID: "b1", ProductTypeID: "t2", Images: []string{"lamp.jpg"}},
}

func ids(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	favs := map[string]bool{"p2": true, "p3": true}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter matches all", Filter{}, []string{"p1", "p2", "p3"}},
		{"brand", Filter{BrandIDs: []string{"b1"}}, []string{"p1", "p3"}},
		{"type", Filter{TypeIDs: []string{"t1"}}, []string{"p1", "p2"}},
		{"brand and type", Filter{BrandIDs: []string{"b1"}, TypeIDs: []string{"t1"}}, []string{"p1"}},
		{"favorites only", Filter{FavoritesOnly: true}, []string{"p2", "p3"}},
		{"favorites and brand", Filter{FavoritesOnly: true, BrandIDs: []string{"b1"}}, []string{"p3"}},
		{"no match", Filter{BrandIDs: []string{"missing"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(products, favs)))
		})
	}
}

func TestCarousel(t *testing.T) {
	c := NewCarousel(products)

	assert.Equal(t, 0, c.Index("p1"))
	assert.Equal(t, 1, c.Next("p1"))
	assert.Equal(t, 2, c.Next("p1"))
	assert.Equal(t, 0, c.Next("p1"))
	assert.Equal(t, 2, c.Prev("p1"))

	img, ok := c.Current("p1")
	require.True(t, ok)
	assert.Equal(t, "c.jpg", img)

	// No images: nothing moves
	assert.Equal(t, 0, c.Next("p2"))
	_, ok = c.Current("p2")
	assert.False(t, ok)

	// Single image wraps onto itself
	assert.Equal(t, 0, c.Prev("p3"))

	c.Reset(products)
	assert.Equal(t, 0, c.Index("p1"))
}

func TestCarousel_ZeroValue(t *testing.T) {
	var c Carousel

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, c.Next("p1"))
		assert.Equal(t, 0, c.Prev("p1"))
	})
	_, ok := c.Current("p1")
	assert.False(t, ok)

	c.Reset(products)
	assert.Equal(t, 1, c.Next("p1"))
}

type memFavorites struct {
	mu   sync.Mutex
	data map[string][]string
}

func (m *memFavorites) List(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.data[userID]...), nil
}

func (m *memFavorites) Add(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = append(m.data[userID], productID)
	return nil
}

func (m *memFavorites) Remove(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.data[userID][:0]
	for _, id := range m.data[userID] {
		if id != productID {
			out = append(out, id)
		}
	}
	m.data[userID] = out
	return nil
}

func TestFavorites_Toggle(t *testing.T) {
	ctx := context.Background()
	favs := NewFavorites(&memFavorites{data: map[string][]string{}}, "u1")

	on, err := favs.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, on)

	set, err := favs.Set(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"p1": true}, set)

	on, err = favs.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, on)

	set, err = favs.Set(ctx)
	require.NoError(t, err)
	assert.Empty(t, set)
}

type staticLister[T any] struct {
	items []T
	err   error
}

func (s staticLister[T]) ListAll(context.Context) ([]T, error) {
	return s.items, s.err
}

func TestLoader_Load(t *testing.T) {
	l := Loader{
		Products: staticLister[models.Product]{items: products},
		Types:    staticLister[models.ProductType]{items: []models.ProductType{{ID: "t1", Name: "Furniture"}}},
		Brands:   staticLister[models.Brand]{items: []models.Brand{{ID: "b1", Name: "Acme"}}},
	}

	cat, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Products, 3)
	assert.Equal(t, "Acme", cat.BrandName(products[0]))
	assert.Equal(t, "Furniture", cat.TypeName(products[0]))

	p, ok := cat.Product("p3")
	require.True(t, ok)
	assert.Equal(t, "Lamp", p.Name)

	brandIDs, err := cat.BrandIDs([]string{"Acme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, brandIDs)

	_, err = cat.TypeIDs([]string{"Toys"})
	assert.Error(t, err)
}

func TestLoader_PartialFailure(t *testing.T) {
	boom := errors.New("boom")
	l := Loader{
		Products: staticLister[models.Product]{items: products},
		Types:    staticLister[models.ProductType]{err: boom},
		Brands:   staticLister[models.Brand]{items: []models.Brand{{ID: "b1", Name: "Acme"}}},
	}

	cat, err := l.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, cat.Products, 3)
	assert.Len(t, cat.Brands, 1)
	assert.Empty(t, cat.Types)
}
