package models

import "time"

// All field copying between Product and its transfer shapes lives in this file.

// NewProductFromCreate builds an unsaved Product from a create request.
// Both timestamps are set to now; the category is kept as given.
func NewProductFromCreate(req CreateProductRequest, now time.Time) Product {
	now = now.UTC()
	return Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       intValue(req.Stock),
		Category:    req.Category,
		Image:       req.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyUpdate overwrites the mutable fields of p from req and refreshes UpdatedAt.
// ID and CreatedAt are left untouched.
func (p *Product) ApplyUpdate(req UpdateProductRequest, now time.Time) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = intValue(req.Stock)
	p.Category = req.Category
	p.Image = req.Image
	p.UpdatedAt = now.UTC()
}

// NewProductResponse maps a stored product to its API view.
func NewProductResponse(p Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewProductResponses maps a slice of products. It never returns nil so the
// JSON encoding of an empty result is [] rather than null.
func NewProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductResponse(p))
	}
	return out
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
