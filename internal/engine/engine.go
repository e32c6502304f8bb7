package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lob/internal/book"
	"lob/internal/common"
)

// Engine is the matching engine for a single instrument. It owns the bid and
// ask sides of the book and is not safe for concurrent use; wrap it in a
// shard.Shard or guard it externally.
type Engine struct {
	symbol string
	bids   *book.Side
	asks   *book.Side

	// Arrival counter, breaks ties between equal submission timestamps.
	seq uint64

	now    func() time.Time
	logger zerolog.Logger
}

func New(symbol string, opts ...Option) *Engine {
	engine := &Engine{
		symbol: symbol,
		bids:   book.NewBids(),
		asks:   book.NewAsks(),
		now:    time.Now,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.logger = engine.logger.With().Str("symbol", symbol).Logger()
	return engine
}

func (engine *Engine) Symbol() string { return engine.symbol }

// Submit runs one order through the book and returns the fills it produced,
// in execution order. Validation happens before the book is touched, so a
// rejected order leaves the engine unchanged.
//
// Orders without a timestamp are stamped with the engine clock on arrival.
func (engine *Engine) Submit(order common.Order) ([]common.Fill, error) {
	if err := engine.admit(order); err != nil {
		engine.logger.Warn().Err(err).Msg("order rejected")
		return nil, err
	}

	h := order.Head()
	ts := h.Timestamp
	if ts.IsZero() {
		ts = engine.now()
	}
	engine.seq++
	t := newTaker(h, ts, engine.seq)

	switch o := order.(type) {
	case common.LimitOrder:
		return engine.handleLimit(t, o.Price)
	case *common.LimitOrder:
		return engine.handleLimit(t, o.Price)
	case common.MarketOrder, *common.MarketOrder:
		return engine.handleMarket(t), nil
	case common.IOCOrder:
		return engine.handleIOC(t, o.Price), nil
	case *common.IOCOrder:
		return engine.handleIOC(t, o.Price), nil
	default:
		return nil, fmt.Errorf("order %d (%T): %w", h.ID, order, common.ErrUnknownOrderType)
	}
}

func (engine *Engine) SubmitLimit(o common.LimitOrder) ([]common.Fill, error) {
	return engine.Submit(o)
}

func (engine *Engine) SubmitMarket(o common.MarketOrder) ([]common.Fill, error) {
	return engine.Submit(o)
}

func (engine *Engine) SubmitIOC(o common.IOCOrder) ([]common.Fill, error) {
	return engine.Submit(o)
}

// admit checks an incoming order against the variant rules and the book.
func (engine *Engine) admit(order common.Order) error {
	if err := common.Validate(order); err != nil {
		return err
	}
	h := order.Head()
	if h.Symbol != engine.symbol {
		return fmt.Errorf("order %d for %q on %q book: %w", h.ID, h.Symbol, engine.symbol, common.ErrSymbolMismatch)
	}
	if engine.bids.Contains(h.ID) || engine.asks.Contains(h.ID) {
		return fmt.Errorf("order %d: %w", h.ID, common.ErrDuplicateOrder)
	}
	return nil
}

// AmendQuantity reduces the quantity of a resting order, keeping its place in
// the queue. Increases are rejected; they need a cancel and a new order.
func (engine *Engine) AmendQuantity(id uint64, quantity int64) error {
	for _, side := range []*book.Side{engine.bids, engine.asks} {
		if !side.Contains(id) {
			continue
		}
		if err := side.Reduce(id, quantity); err != nil {
			engine.logger.Warn().Err(err).Uint64("id", id).Msg("amend rejected")
			return err
		}
		engine.logger.Debug().
			Uint64("id", id).
			Int64("quantity", quantity).
			Msg("order amended")
		return nil
	}
	return fmt.Errorf("amend %d: %w", id, common.ErrOrderNotFound)
}

// CancelOrder removes a resting order. It reports false when the id is not
// resting, which makes repeated cancels harmless.
func (engine *Engine) CancelOrder(id uint64) bool {
	for _, side := range []*book.Side{engine.bids, engine.asks} {
		if o, ok := side.Remove(id); ok {
			engine.logger.Debug().
				Uint64("id", id).
				Stringer("side", o.Side).
				Int64("quantity", o.Quantity).
				Msg("order cancelled")
			return true
		}
	}
	return false
}

// ---- Introspection ----

func (engine *Engine) sideOf(side common.Side) *book.Side {
	if side == common.Buy {
		return engine.bids
	}
	return engine.asks
}

// BookDepth is the number of resting orders on a side.
func (engine *Engine) BookDepth(side common.Side) int {
	return engine.sideOf(side).Depth()
}

// BookVolume is the total resting quantity on a side.
func (engine *Engine) BookVolume(side common.Side) int64 {
	return engine.sideOf(side).Volume()
}

func (engine *Engine) BestBid() (common.Quote, bool) {
	return engine.bids.Top()
}

func (engine *Engine) BestAsk() (common.Quote, bool) {
	return engine.asks.Top()
}

// Levels returns a snapshot of one side, best price first.
func (engine *Engine) Levels(side common.Side) []book.FlatPriceLevel {
	return engine.sideOf(side).Levels()
}

// Orders returns a snapshot of one side's resting orders in priority order.
func (engine *Engine) Orders(side common.Side) []book.Resting {
	return engine.sideOf(side).Orders()
}

// Order looks up a resting order on either side.
func (engine *Engine) Order(id uint64) (book.Resting, bool) {
	if o, ok := engine.bids.Get(id); ok {
		return o, true
	}
	return engine.asks.Get(id)
}

// Validate checks both sides and that the book is not crossed.
func (engine *Engine) Validate() error {
	if err := engine.bids.Validate(); err != nil {
		return fmt.Errorf("bids: %w", err)
	}
	if err := engine.asks.Validate(); err != nil {
		return fmt.Errorf("asks: %w", err)
	}
	for _, o := range engine.bids.Orders() {
		if engine.asks.Contains(o.ID) {
			return fmt.Errorf("%w: order %d rests on both sides", book.ErrCorruptBook, o.ID)
		}
	}
	bid, bidOk := engine.bids.Top()
	ask, askOk := engine.asks.Top()
	if bidOk && askOk && bid.Price.GreaterThanOrEqual(ask.Price) {
		return fmt.Errorf("%w: crossed book, bid %s ask %s", book.ErrCorruptBook, bid.Price, ask.Price)
	}
	return nil
}
