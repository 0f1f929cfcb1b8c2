package models

// Brand is a catalog brand
type Brand struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// ProductType is a catalog product category
type ProductType struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// Product is a catalog product. Images holds stored file names served under /uploads.
type Product struct {
	ID              string   `json:"_id,omitempty"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	ProductTypeID   string   `json:"productTypeId"`
	BrandID         string   `json:"brandId"`
	ProductTypeName string   `json:"productTypeName,omitempty"`
	BrandName       string   `json:"brandName,omitempty"`
	Images          []string `json:"images"`
}
