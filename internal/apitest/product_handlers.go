package apitest

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/branchd-dev/storefront/internal/models"
)

const maxUploadMemory = 8 << 20

// withNames fills the denormalized brand and type names. Callers hold mu.
func (s *Server) withNames(p models.Product) models.Product {
	for _, b := range s.brands {
		if b.ID == p.BrandID {
			p.BrandName = b.Name
		}
	}
	for _, t := range s.types {
		if t.ID == p.ProductTypeID {
			p.ProductTypeName = t.Name
		}
	}
	p.Images = slices.Clone(p.Images)
	return p
}

func (s *Server) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p models.Product) bool { return p.ID == id })
}

func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, s.withNames(p))
	}
	ok(c, "", products)
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	ok(c, "", s.withNames(s.products[i]))
}

// productForm is the decoded multipart body of a product write
type productForm struct {
	product  models.Product
	existing []string
	deleted  []string
	files    []*multipart.FileHeader
}

func parseProductForm(c *gin.Context) (*productForm, string) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "Invalid form data"
	}
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	price, err := strconv.ParseFloat(value("price"), 64)
	if err != nil || price < 0 {
		return nil, "Invalid price"
	}

	pf := &productForm{
		product: models.Product{
			Name:          value("name"),
			Description:   value("description"),
			Price:         price,
			ProductTypeID: value("productTypeId"),
			BrandID:       value("brandId"),
		},
		existing: form.Value["existingImages"],
		deleted:  form.Value["deletedImages"],
		files:    form.File["images"],
	}
	if pf.product.Name == "" {
		return nil, "Name is required"
	}
	return pf, ""
}

// validRefs reports whether the brand and type ids exist. Callers hold mu.
func (s *Server) validRefs(p models.Product) bool {
	brandOK := slices.ContainsFunc(s.brands, func(b models.Brand) bool { return b.ID == p.BrandID })
	typeOK := slices.ContainsFunc(s.types, func(t models.ProductType) bool { return t.ID == p.ProductTypeID })
	return brandOK && typeOK
}

// readUploads stores every uploaded file under a generated name
func readUploads(files []*multipart.FileHeader) (map[string][]byte, []string, error) {
	stored := make(map[string][]byte, len(files))
	names := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}
		name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		stored[name] = data
		names = append(names, name)
	}
	return stored, names, nil
}

func (s *Server) addProduct(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadMemory)
	pf, msg := parseProductForm(c)
	if pf == nil {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	stored, names, err := readUploads(pf.files)
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read images")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validRefs(pf.product) {
		fail(c, http.StatusBadRequest, "Unknown brand or product type")
		return
	}

	p := pf.product
	p.ID = uuid.NewString()
	p.Images = names
	for name, data := range stored {
		s.uploads[name] = data
	}
	s.products = append(s.products, p)
	ok(c, "Product added", s.withNames(p))
}

func (s *Server) updateProduct(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadMemory)
	pf, msg := parseProductForm(c)
	if pf == nil {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	stored, names, err := readUploads(pf.files)
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to read images")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	if !s.validRefs(pf.product) {
		fail(c, http.StatusBadRequest, "Unknown brand or product type")
		return
	}

	current := s.products[i]
	images := make([]string, 0, len(pf.existing)+len(names))
	for _, name := range pf.existing {
		if slices.Contains(current.Images, name) && !slices.Contains(pf.deleted, name) {
			images = append(images, name)
		}
	}
	images = append(images, names...)

	for _, name := range pf.deleted {
		delete(s.uploads, name)
	}
	for name, data := range stored {
		s.uploads[name] = data
	}

	p := pf.product
	p.ID = current.ID
	p.Images = images
	s.products[i] = p
	ok(c, "Product updated", s.withNames(p))
}

func (s *Server) deleteProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	for _, name := range s.products[i].Images {
		delete(s.uploads, name)
	}
	s.products = slices.Delete(s.products, i, i+1)
	ok(c, "Product deleted", nil)
}

func (s *Server) serveUpload(c *gin.Context) {
	s.mu.Lock()
	data, found := s.uploads[c.Param("name")]
	s.mu.Unlock()
	if !found {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
