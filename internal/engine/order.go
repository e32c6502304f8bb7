package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"lob/internal/book"
	"lob/internal/common"
)

// taker is the working state of an incoming order during one matching pass.
type taker struct {
	id        uint64
	side      common.Side
	remaining int64
	total     int64
	timestamp time.Time
	seq       uint64
}

func newTaker(h common.Header, ts time.Time, seq uint64) *taker {
	return &taker{
		id:        h.ID,
		side:      h.Side,
		remaining: h.Quantity,
		total:     h.Quantity,
		timestamp: ts,
		seq:       seq,
	}
}

// resting converts what is left of the taker into a book entry.
func (t *taker) resting(price decimal.Decimal) *book.Resting {
	return &book.Resting{
		ID:            t.id,
		Side:          t.side,
		Price:         price,
		Quantity:      t.remaining,
		TotalQuantity: t.total,
		Timestamp:     t.timestamp,
		Seq:           t.seq,
	}
}

// crosses returns the price condition for a priced taker: a buy crosses an
// ask at or below its limit, a sell crosses a bid at or above it.
func crosses(side common.Side, limit decimal.Decimal) func(decimal.Decimal) bool {
	if side == common.Buy {
		return func(best decimal.Decimal) bool { return limit.GreaterThanOrEqual(best) }
	}
	return func(best decimal.Decimal) bool { return limit.LessThanOrEqual(best) }
}

// anyPrice is the market order condition.
func anyPrice(decimal.Decimal) bool { return true }
