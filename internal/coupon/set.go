package coupon

import (
	"sort"

	"github.com/rabi-77/ecommerce-sub000/internal/model"
)

// mapSet implements Set using a map keyed by normalised code.
type mapSet struct {
	coupons map[string]model.Coupon
}

// NewMapSet creates a new map-based coupon set.
func NewMapSet(capacity int) Set {
	return &mapSet{
		coupons: make(map[string]model.Coupon, capacity),
	}
}

// Get returns the coupon with the given code.
func (s *mapSet) Get(code string) (model.Coupon, bool) {
	c, ok := s.coupons[model.NormalizeCode(code)]
	return c, ok
}

// All returns every coupon ordered by code.
func (s *mapSet) All() []model.Coupon {
	out := make([]model.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Size returns the number of coupons in the set.
func (s *mapSet) Size() int {
	return len(s.coupons)
}

// Add stores c, replacing any coupon with the same code.
func (s *mapSet) Add(c model.Coupon) {
	c.Code = model.NormalizeCode(c.Code)
	s.coupons[c.Code] = c
}

// Merge combines sets in order. A code in a later set replaces the same code in an earlier one.
func Merge(sets ...Set) Set {
	size := 0
	for _, s := range sets {
		size += s.Size()
	}
	merged := NewMapSet(size).(*mapSet)
	for _, s := range sets {
		for _, c := range s.All() {
			merged.Add(c)
		}
	}
	return merged
}
