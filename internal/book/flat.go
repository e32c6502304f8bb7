package book

import "github.com/shopspring/decimal"

// FlatPriceLevel is a detached copy of a price level.
type FlatPriceLevel struct {
	PriceLevel decimal.Decimal
	Orders     []Resting
}

// FlattenLevels copies levels out of the tree so callers can inspect them
// without holding pointers into the book.
func FlattenLevels(levels []*PriceLevel) []FlatPriceLevel {
	flat := make([]FlatPriceLevel, len(levels))
	for i, level := range levels {
		orders := make([]Resting, len(level.orders))
		for j, o := range level.orders {
			orders[j] = *o
		}
		flat[i] = FlatPriceLevel{
			PriceLevel: level.price,
			Orders:     orders,
		}
	}
	return flat
}

// Quantity sums the remaining quantity of the level.
func (l FlatPriceLevel) Quantity() int64 {
	var total int64
	for _, o := range l.Orders {
		total += o.Quantity
	}
	return total
}
