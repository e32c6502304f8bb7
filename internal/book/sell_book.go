package book

import "lob/internal/common"

// NewAsks creates the sell side of a book. Levels are sorted least price
// first so the best ask is the tree minimum.
func NewAsks() *Side {
	return newSide(common.Sell, func(a, b *PriceLevel) bool {
		return a.price.LessThan(b.price)
	})
}
