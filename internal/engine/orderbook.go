package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lob/internal/book"
	"lob/internal/common"
)

// opposite returns the side a taker trades against: buys lift asks, sells
// hit bids.
func (engine *Engine) opposite(side common.Side) *book.Side {
	if side == common.Buy {
		return engine.asks
	}
	return engine.bids
}

// match consumes the opposite side in price-time priority while the taker has
// quantity left and the best resting price is acceptable to it. Every
// execution happens at the maker's price, so any price improvement goes to
// the taker.
func (engine *Engine) match(t *taker, acceptable func(decimal.Decimal) bool) []common.Fill {
	levels := engine.opposite(t.side)
	now := engine.now()

	var fills []common.Fill
	for t.remaining > 0 {
		maker, ok := levels.Best()
		if !ok || !acceptable(maker.Price) {
			break
		}

		matchQty := min(t.remaining, maker.Quantity)
		fill := common.NewFill(engine.symbol, t.side, t.id, maker.ID, maker.Price, matchQty, now)
		fills = append(fills, fill)

		t.remaining -= matchQty
		left := levels.ConsumeBest(matchQty)

		engine.logger.Debug().
			Str("trade", fill.TradeID.String()).
			Uint64("buy", fill.BuyOrderID).
			Uint64("sell", fill.SellOrderID).
			Stringer("price", fill.Price).
			Int64("quantity", matchQty).
			Int64("maker_left", left).
			Msg("fill")
	}
	return fills
}

// handleLimit matches a limit order up to its limit price and rests whatever
// is left on its own side.
func (engine *Engine) handleLimit(t *taker, price decimal.Decimal) ([]common.Fill, error) {
	fills := engine.match(t, crosses(t.side, price))
	if t.remaining == 0 {
		return fills, nil
	}

	// Limit orders are placed on the same side as their order.Side, because
	// they are resting.
	if err := engine.sideOf(t.side).Insert(t.resting(price)); err != nil {
		// admit rules out every Insert failure, so the book is broken.
		engine.logger.Error().Err(err).Uint64("id", t.id).Msg("unable to rest order")
		return fills, fmt.Errorf("%w: %w", book.ErrCorruptBook, err)
	}
	engine.logger.Debug().
		Uint64("id", t.id).
		Stringer("side", t.side).
		Stringer("price", price).
		Int64("quantity", t.remaining).
		Msg("order resting")
	return fills, nil
}

// handleMarket sweeps the opposite side regardless of price. Market orders
// are always liquidity takers; quantity the book cannot cover is dropped.
func (engine *Engine) handleMarket(t *taker) []common.Fill {
	fills := engine.match(t, anyPrice)
	engine.discard(t, "market")
	return fills
}

// handleIOC matches like a limit order but never rests the remainder.
func (engine *Engine) handleIOC(t *taker, price decimal.Decimal) []common.Fill {
	fills := engine.match(t, crosses(t.side, price))
	engine.discard(t, "ioc")
	return fills
}

func (engine *Engine) discard(t *taker, kind string) {
	if t.remaining == 0 {
		return
	}
	engine.logger.Debug().
		Uint64("id", t.id).
		Str("type", kind).
		Int64("discarded", t.remaining).
		Msg("remainder discarded")
}
