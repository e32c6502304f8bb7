package book

import "lob/internal/common"

// NewBids creates the buy side of a book. Levels are sorted greatest price
// first so the best bid is the tree minimum.
func NewBids() *Side {
	return newSide(common.Buy, func(a, b *PriceLevel) bool {
		return a.price.GreaterThan(b.price)
	})
}
