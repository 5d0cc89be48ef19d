package pricing

import (
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferIndex holds the offers active at a point in time, keyed by their target.
type OfferIndex struct {
	byProduct  map[uuid.UUID][]model.Offer
	byCategory map[uuid.UUID][]model.Offer
}

// NewOfferIndex keeps the offers active at now. Offers sharing a target are
// all kept; Resolve compares their savings against the actual price.
func NewOfferIndex(offers []model.Offer, now time.Time) OfferIndex {
	idx := OfferIndex{
		byProduct:  make(map[uuid.UUID][]model.Offer),
		byCategory: make(map[uuid.UUID][]model.Offer),
	}
	for _, o := range offers {
		if !o.ActiveAt(now) {
			continue
		}
		switch o.TargetType {
		case model.OfferTargetProduct:
			idx.byProduct[o.TargetID] = append(idx.byProduct[o.TargetID], o)
		case model.OfferTargetCategory:
			idx.byCategory[o.TargetID] = append(idx.byCategory[o.TargetID], o)
		}
	}
	return idx
}

// Resolution is the outcome of resolving offers for one catalogue price.
type Resolution struct {
	EffectivePrice  decimal.Decimal
	Saving          decimal.Decimal
	Offer           *model.Offer
	DiscountPercent *decimal.Decimal
}

// Resolve picks the single offer with the largest absolute saving on price.
// A product offer wins a tie against a category offer.
func (idx OfferIndex) Resolve(productID, categoryID uuid.UUID, price decimal.Decimal) Resolution {
	res := Resolution{EffectivePrice: price, Saving: decimal.Zero}

	candidates := make([]model.Offer, 0, len(idx.byProduct[productID])+len(idx.byCategory[categoryID]))
	candidates = append(candidates, idx.byProduct[productID]...)
	candidates = append(candidates, idx.byCategory[categoryID]...)

	for i := range candidates {
		saving := candidates[i].Discount.Saving(price)
		if res.Offer != nil && !saving.GreaterThan(res.Saving) {
			continue
		}
		if !saving.IsPositive() {
			continue
		}
		winner := candidates[i]
		res.Offer = &winner
		res.Saving = saving
	}

	if res.Offer == nil {
		return res
	}

	res.EffectivePrice = Round2(price.Sub(res.Saving))
	res.Saving = price.Sub(res.EffectivePrice)
	if res.Offer.Discount.Kind == model.DiscountPercentage {
		pct := res.Offer.Discount.Value
		res.DiscountPercent = &pct
	}
	return res
}

// PriceProduct attaches the resolved effective price to a product.
func (idx OfferIndex) PriceProduct(p model.Product) model.PricedProduct {
	res := idx.Resolve(p.ID, p.CategoryID, p.Price)
	priced := model.PricedProduct{
		Product:         p,
		EffectivePrice:  res.EffectivePrice,
		OfferDiscount:   res.Saving,
		DiscountPercent: res.DiscountPercent,
	}
	if res.Offer != nil {
		id := res.Offer.ID
		priced.OfferID = &id
	}
	return priced
}
