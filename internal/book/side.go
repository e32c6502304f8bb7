package book

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"lob/internal/common"
)

var ErrCorruptBook = errors.New("book invariant violated")

type PriceLevel struct {
	price  decimal.Decimal
	orders []*Resting // Sorted by (timestamp, seq)
}

type PriceLevels = btree.BTreeG[*PriceLevel]

// Side holds the resting orders of one side of the book in price-time
// priority. Price levels live in a btree whose minimum is the best price;
// each level keeps its orders in time order.
type Side struct {
	side   common.Side
	less   func(a, b *PriceLevel) bool
	levels *PriceLevels
	index  map[uint64]*Resting

	// Some book keeping
	volume int64 // Track the resting liquidity of the side.
}

func newSide(side common.Side, less func(a, b *PriceLevel) bool) *Side {
	return &Side{
		side:   side,
		less:   less,
		levels: btree.NewBTreeG(less),
		index:  make(map[uint64]*Resting),
	}
}

// Side returns which side of the book this is.
func (s *Side) Side() common.Side { return s.side }

// Depth is the number of resting orders.
func (s *Side) Depth() int { return len(s.index) }

// Volume is the total resting quantity.
func (s *Side) Volume() int64 { return s.volume }

func (s *Side) Empty() bool { return len(s.index) == 0 }

func (s *Side) Contains(id uint64) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns a copy of the resting order with the given id.
func (s *Side) Get(id uint64) (Resting, bool) {
	o, ok := s.index[id]
	if !ok {
		return Resting{}, false
	}
	return *o, true
}

// Insert places an order at its price-time position. The level is found in
// O(log n) and the order is binary searched into the level, which is an
// append for orders arriving in time order.
func (s *Side) Insert(o *Resting) error {
	if o.Quantity <= 0 {
		return fmt.Errorf("insert %d: %w", o.ID, common.ErrNonPositiveQuantity)
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("insert %d: %w", o.ID, common.ErrNonPositivePrice)
	}
	if o.Side != s.side {
		return fmt.Errorf("insert %d on %s side: %w", o.ID, s.side, common.ErrInvalidSide)
	}
	if s.Contains(o.ID) {
		return fmt.Errorf("insert %d: %w", o.ID, common.ErrDuplicateOrder)
	}

	// Levels comparator only accounts for price levels, so we create a dummy
	// price level for the search.
	level, ok := s.levels.GetMut(&PriceLevel{price: o.Price})
	if ok {
		i := sort.Search(len(level.orders), func(i int) bool {
			return o.before(level.orders[i])
		})
		level.orders = append(level.orders, nil)
		copy(level.orders[i+1:], level.orders[i:])
		level.orders[i] = o
	} else {
		s.levels.Set(&PriceLevel{
			price:  o.Price,
			orders: []*Resting{o},
		})
	}

	s.index[o.ID] = o
	s.volume += o.Quantity
	return nil
}

// Best returns the highest priority resting order.
func (s *Side) Best() (*Resting, bool) {
	level, ok := s.levels.Min()
	if !ok {
		return nil, false
	}
	return level.orders[0], true
}

// Top aggregates the best price level.
func (s *Side) Top() (common.Quote, bool) {
	level, ok := s.levels.Min()
	if !ok {
		return common.Quote{}, false
	}
	q := common.Quote{Price: level.price, Orders: len(level.orders)}
	for _, o := range level.orders {
		q.Quantity += o.Quantity
	}
	return q, true
}

// ConsumeBest takes up to qty from the best order and returns what is left
// of it. An order reaching zero is removed from the side.
func (s *Side) ConsumeBest(qty int64) int64 {
	level, ok := s.levels.MinMut()
	if !ok {
		return 0
	}
	head := level.orders[0]
	qty = min(qty, head.Quantity)
	head.Quantity -= qty
	s.volume -= qty

	if head.Quantity > 0 {
		return head.Quantity
	}

	level.orders[0] = nil
	level.orders = level.orders[1:]
	if len(level.orders) == 0 {
		s.levels.Delete(level)
	}
	delete(s.index, head.ID)
	return 0
}

// Reduce lowers the quantity of a resting order without touching its queue
// position. The new quantity has to be positive and strictly smaller than the
// current one.
func (s *Side) Reduce(id uint64, quantity int64) error {
	o, ok := s.index[id]
	if !ok {
		return fmt.Errorf("reduce %d: %w", id, common.ErrOrderNotFound)
	}
	if quantity <= 0 || quantity >= o.Quantity {
		return fmt.Errorf("reduce %d from %d to %d: %w", id, o.Quantity, quantity, common.ErrQuantityNotReduced)
	}
	s.volume -= o.Quantity - quantity
	o.Quantity = quantity
	return nil
}

// Remove takes an order out of the side.
func (s *Side) Remove(id uint64) (Resting, bool) {
	o, ok := s.index[id]
	if !ok {
		return Resting{}, false
	}

	level, ok := s.levels.GetMut(&PriceLevel{price: o.Price})
	if ok {
		for i, resting := range level.orders {
			if resting == o {
				level.orders = append(level.orders[:i], level.orders[i+1:]...)
				break
			}
		}
		if len(level.orders) == 0 {
			s.levels.Delete(level)
		}
	}

	delete(s.index, id)
	s.volume -= o.Quantity
	return *o, true
}

// Orders returns copies of all resting orders in priority order.
func (s *Side) Orders() []Resting {
	orders := make([]Resting, 0, len(s.index))
	s.levels.Scan(func(level *PriceLevel) bool {
		for _, o := range level.orders {
			orders = append(orders, *o)
		}
		return true
	})
	return orders
}

// Levels returns a snapshot of the side, best level first.
func (s *Side) Levels() []FlatPriceLevel {
	return FlattenLevels(s.levels.Items())
}

// Validate walks the side and checks the book invariants: sorted levels,
// time order inside a level, positive quantities and a consistent index.
func (s *Side) Validate() error {
	var (
		count  int
		volume int64
		prev   *PriceLevel
		err    error
	)
	s.levels.Scan(func(level *PriceLevel) bool {
		if len(level.orders) == 0 {
			err = fmt.Errorf("%w: empty level %s", ErrCorruptBook, level.price)
			return false
		}
		if prev != nil && !s.less(prev, level) {
			err = fmt.Errorf("%w: level %s out of order after %s", ErrCorruptBook, level.price, prev.price)
			return false
		}
		for i, o := range level.orders {
			switch {
			case o.Quantity <= 0:
				err = fmt.Errorf("%w: order %d has quantity %d", ErrCorruptBook, o.ID, o.Quantity)
			case o.Side != s.side:
				err = fmt.Errorf("%w: order %d on wrong side", ErrCorruptBook, o.ID)
			case !o.Price.Equal(level.price):
				err = fmt.Errorf("%w: order %d priced %s in level %s", ErrCorruptBook, o.ID, o.Price, level.price)
			case i > 0 && !level.orders[i-1].before(o):
				err = fmt.Errorf("%w: order %d out of time order", ErrCorruptBook, o.ID)
			case s.index[o.ID] != o:
				err = fmt.Errorf("%w: order %d missing from index", ErrCorruptBook, o.ID)
			}
			if err != nil {
				return false
			}
			count++
			volume += o.Quantity
		}
		prev = level
		return true
	})
	if err != nil {
		return err
	}
	if count != len(s.index) {
		return fmt.Errorf("%w: index holds %d orders, levels hold %d", ErrCorruptBook, len(s.index), count)
	}
	if volume != s.volume {
		return fmt.Errorf("%w: volume %d, levels hold %d", ErrCorruptBook, s.volume, volume)
	}
	return nil
}
