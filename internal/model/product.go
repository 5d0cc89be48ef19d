package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalogue item together with its category and brand flags.
type Product struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	CategoryID uuid.UUID       `json:"categoryId" db:"category_id"`
	BrandID    uuid.UUID       `json:"brandId" db:"brand_id"`
	IsListed   bool            `json:"isListed" db:"is_listed"`
	IsDeleted  bool            `json:"-" db:"is_deleted"`
	Variants   []Variant       `json:"variants"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`

	CategoryListed  bool `json:"-" db:"category_listed"`
	CategoryDeleted bool `json:"-" db:"category_deleted"`
	BrandListed     bool `json:"-" db:"brand_listed"`
	BrandDeleted    bool `json:"-" db:"brand_deleted"`
}

// Variant is a size of a product with its own stock.
type Variant struct {
	Size  string `json:"size" db:"size"`
	Stock int    `json:"stock" db:"stock"`
}

// Available reports whether the product, its category and its brand can be sold.
func (p *Product) Available() bool {
	return p.IsListed && !p.IsDeleted &&
		p.CategoryListed && !p.CategoryDeleted &&
		p.BrandListed && !p.BrandDeleted
}

// Variant returns the variant with the given size.
func (p *Product) Variant(size string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Size == size {
			return v, true
		}
	}
	return Variant{}, false
}

// PricedProduct is a product with the best applicable offer resolved.
type PricedProduct struct {
	Product
	EffectivePrice  decimal.Decimal  `json:"effectivePrice"`
	OfferDiscount   decimal.Decimal  `json:"offerDiscount"`
	OfferID         *uuid.UUID       `json:"offerId,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}
