package book

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lob/internal/common"
)

// Resting is an order held in a book side. Only Quantity changes while it
// rests, through matching or a reduce-only amend.
type Resting struct {
	ID            uint64          // Order id
	Side          common.Side     // Book side it rests on
	Price         decimal.Decimal // Limit price
	Quantity      int64           // Remaining quantity
	TotalQuantity int64           // Quantity originally requested
	Timestamp     time.Time       // Submission time
	Seq           uint64          // Arrival sequence, breaks timestamp ties
}

// before reports whether a has time priority over b at the same price.
func (a *Resting) before(b *Resting) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Seq < b.Seq
}

func (r Resting) String() string {
	return fmt.Sprintf("%d %s %d/%d@%s", r.ID, r.Side, r.Quantity, r.TotalQuantity, r.Price)
}
