package domain

import "time"

// Product is the catalog entity the order workflow reads for validation and
// whose stock it adjusts as orders move through their lifecycle.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceCents   int64     `json:"price_cents"`
	Sizes        []string  `json:"sizes"`
	Images       []string  `json:"images"`
	CountInStock int       `json:"count_in_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasSize reports whether the size is one of the product's configured sizes.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// PrimaryImage returns the image used on order snapshots and emails.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
