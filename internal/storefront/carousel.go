package storefront

import "github.com/branchd-dev/storefront/internal/models"

// Carousel tracks the displayed image of each product
type Carousel struct {
	index  map[string]int
	images map[string][]string
}

// NewCarousel starts every product at its first image
func NewCarousel(products []models.Product) *Carousel {
	c := &Carousel{}
	c.Reset(products)
	return c
}

// Reset forgets all positions and starts every product at its first image
func (c *Carousel) Reset(products []models.Product) {
	c.index = make(map[string]int, len(products))
	c.images = make(map[string][]string, len(products))
	for _, p := range products {
		c.index[p.ID] = 0
		c.images[p.ID] = p.Images
	}
}

// Next advances to the following image, wrapping around. Products without images
// are ignored.
func (c *Carousel) Next(productID string) int {
	return c.step(productID, 1)
}

// Prev moves to the previous image, wrapping around
func (c *Carousel) Prev(productID string) int {
	return c.step(productID, -1)
}

func (c *Carousel) step(productID string, delta int) int {
	n := len(c.images[productID])
	if n == 0 {
		return c.index[productID]
	}
	c.index[productID] = (c.index[productID] + delta + n) % n
	return c.index[productID]
}

// Index returns the current image position of a product
func (c *Carousel) Index(productID string) int {
	return c.index[productID]
}

// Current returns the name of the displayed image
func (c *Carousel) Current(productID string) (string, bool) {
	imgs := c.images[productID]
	if len(imgs) == 0 {
		return "", false
	}
	return imgs[c.index[productID]], true
}
