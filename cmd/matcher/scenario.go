package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"lob/internal/common"
	"lob/internal/shard"
)

// runScenario builds a small book on the shard and walks it through each
// order type, an amend and a cancel.
func runScenario(ctx context.Context, s *shard.Shard) error {
	symbol := s.Symbol()
	logger := log.With().Str("symbol", symbol).Logger()

	price := decimal.RequireFromString

	// Orders carry no timestamp, so the engine stamps them on arrival.
	var (
		arrival  time.Time
		orders   []common.Order
		buildErr error
	)
	add := func(o common.Order, err error) {
		buildErr = errors.Join(buildErr, err)
		orders = append(orders, o)
	}

	// Building the order book.
	add(common.NewLimitOrder(1, symbol, common.Buy, 100, price("150.50"), arrival))
	add(common.NewLimitOrder(2, symbol, common.Buy, 200, price("150.25"), arrival))
	add(common.NewLimitOrder(3, symbol, common.Buy, 150, price("150.00"), arrival))
	add(common.NewLimitOrder(4, symbol, common.Sell, 100, price("151.00"), arrival))
	add(common.NewLimitOrder(5, symbol, common.Sell, 150, price("151.25"), arrival))
	add(common.NewLimitOrder(6, symbol, common.Sell, 200, price("151.50"), arrival))
	// Market buy lifts the best ask.
	add(common.NewMarketOrder(7, symbol, common.Buy, 50, arrival))
	// Crossing limit buy, partially filled, the rest rests.
	add(common.NewLimitOrder(8, symbol, common.Buy, 300, price("151.20"), arrival))
	// IOC fills what it can up to its limit and drops the rest.
	add(common.NewIOCOrder(9, symbol, common.Buy, 500, price("152.00"), arrival))
	if buildErr != nil {
		return buildErr
	}

	for _, o := range orders {
		fills, err := s.Submit(ctx, o)
		if err != nil {
			return fmt.Errorf("submit %v: %w", o, err)
		}
		var filled int64
		for _, f := range fills {
			filled += f.Quantity
		}
		logger.Info().
			Str("order", fmt.Sprint(o)).
			Int("fills", len(fills)).
			Int64("filled", filled).
			Msg("order submitted")
	}

	if err := logBook(ctx, s); err != nil {
		return err
	}

	// Halve the best bid, then try to grow it back.
	bids, err := s.Levels(ctx, common.Buy)
	if err != nil {
		return err
	}
	if len(bids) > 0 {
		best := bids[0].Orders[0]
		if err := s.Amend(ctx, best.ID, best.Quantity/2); err != nil {
			return err
		}
		logger.Info().Uint64("id", best.ID).Int64("quantity", best.Quantity/2).Msg("order amended")

		err := s.Amend(ctx, best.ID, best.Quantity)
		if !errors.Is(err, common.ErrAmendRejected) {
			return fmt.Errorf("amend up of %d: expected rejection, got %v", best.ID, err)
		}
		logger.Info().Err(err).Uint64("id", best.ID).Msg("increase rejected")
	}

	for _, id := range []uint64{3, 3, 999} {
		ok, err := s.Cancel(ctx, id)
		if err != nil {
			return err
		}
		logger.Info().Uint64("id", id).Bool("found", ok).Msg("cancel")
	}

	return logBook(ctx, s)
}

func logBook(ctx context.Context, s *shard.Shard) error {
	for _, side := range []common.Side{common.Buy, common.Sell} {
		levels, err := s.Levels(ctx, side)
		if err != nil {
			return err
		}
		depth, err := s.Depth(ctx, side)
		if err != nil {
			return err
		}
		event := log.Info().Str("symbol", s.Symbol()).Stringer("side", side).Int("depth", depth)
		for i, level := range levels {
			event = event.Int64(fmt.Sprintf("%d@%s", i, level.PriceLevel.StringFixed(2)), level.Quantity())
		}
		event.Msg("book")
	}
	return nil
}
