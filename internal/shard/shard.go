// Package shard gives an engine a single owning goroutine. Commands from any
// number of callers are queued and applied one at a time, which is the
// serialization the engine itself does not provide.
package shard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lob/internal/book"
	"lob/internal/common"
	"lob/internal/engine"
)

const (
	DefaultQueueSize = 100
)

var ErrShardClosed = errors.New("shard closed")

// Reporter receives the fills of every submission, in the order the engine
// produced them. It is called from the shard goroutine.
type Reporter interface {
	ReportFills(symbol string, fills []common.Fill) error
}

type task struct {
	run func(*engine.Engine)
}

type Shard struct {
	engine   *engine.Engine
	reporter Reporter
	tasks    chan task
	t        *tomb.Tomb
	logger   zerolog.Logger
}

// New starts a shard owning eng. The shard stops when ctx is done or Stop is
// called. The engine must not be used directly afterwards.
func New(ctx context.Context, eng *engine.Engine, queueSize int, reporter Reporter) *Shard {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	t, _ := tomb.WithContext(ctx)
	s := &Shard{
		engine:   eng,
		reporter: reporter,
		tasks:    make(chan task, queueSize),
		t:        t,
		logger:   log.With().Str("symbol", eng.Symbol()).Logger(),
	}
	t.Go(s.loop)
	return s
}

func (s *Shard) Symbol() string { return s.engine.Symbol() }

// Stop shuts the shard down and waits for the owning goroutine to exit.
// Commands already queued are run first. Calls that lose the race with
// shutdown return ErrShardClosed and have no effect on the book.
func (s *Shard) Stop() error {
	s.t.Kill(nil)
	err := s.t.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Shard) loop() error {
	s.logger.Info().Msg("shard running")
	defer s.logger.Info().Msg("shard stopped")

	for {
		select {
		case <-s.t.Dying():
			s.drain()
			return nil
		case job := <-s.tasks:
			job.run(s.engine)
		}
	}
}

// drain runs whatever is still queued so no accepted command is lost.
func (s *Shard) drain() {
	for {
		select {
		case job := <-s.tasks:
			job.run(s.engine)
		default:
			return
		}
	}
}

// call runs fn on the shard goroutine and waits for its result. Once a task
// has been queued it runs to completion even if ctx ends first; ctx only
// bounds how long the caller waits.
func call[T any](ctx context.Context, s *Shard, fn func(*engine.Engine) T) (T, error) {
	var zero T
	reply := make(chan T, 1)
	job := task{run: func(eng *engine.Engine) { reply <- fn(eng) }}

	select {
	case s.tasks <- job:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.t.Dying():
		return zero, ErrShardClosed
	}

	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.t.Dead():
		// The loop may have finished the task just before exiting.
		select {
		case res := <-reply:
			return res, nil
		default:
			return zero, ErrShardClosed
		}
	}
}

type submitResult struct {
	fills []common.Fill
	err   error
}

// Submit runs an order through the engine and reports its fills.
//
// If ctx ends after the order was queued, Submit returns ctx.Err() but the
// order is still executed and its fills still reach the Reporter. Callers
// that give up waiting should treat the outcome as unknown and consult the
// book or the Reporter.
func (s *Shard) Submit(ctx context.Context, order common.Order) ([]common.Fill, error) {
	res, err := call(ctx, s, func(eng *engine.Engine) submitResult {
		fills, err := eng.Submit(order)
		s.report(fills)
		return submitResult{fills: fills, err: err}
	})
	if err != nil {
		return nil, err
	}
	return res.fills, res.err
}

// Amend reduces the quantity of a resting order. Like Submit, a queued amend
// is applied even when ctx ends first.
func (s *Shard) Amend(ctx context.Context, id uint64, quantity int64) error {
	amendErr, err := call(ctx, s, func(eng *engine.Engine) error {
		return eng.AmendQuantity(id, quantity)
	})
	if err != nil {
		return err
	}
	return amendErr
}

// Cancel removes a resting order, reporting whether it was found. Like
// Submit, a queued cancel is applied even when ctx ends first.
func (s *Shard) Cancel(ctx context.Context, id uint64) (bool, error) {
	return call(ctx, s, func(eng *engine.Engine) bool {
		return eng.CancelOrder(id)
	})
}

// Depth returns the number of resting orders on a side.
func (s *Shard) Depth(ctx context.Context, side common.Side) (int, error) {
	return call(ctx, s, func(eng *engine.Engine) int {
		return eng.BookDepth(side)
	})
}

// Levels returns a snapshot of one side of the book.
func (s *Shard) Levels(ctx context.Context, side common.Side) ([]book.FlatPriceLevel, error) {
	return call(ctx, s, func(eng *engine.Engine) []book.FlatPriceLevel {
		return eng.Levels(side)
	})
}

func (s *Shard) report(fills []common.Fill) {
	if s.reporter == nil || len(fills) == 0 {
		return
	}
	if err := s.reporter.ReportFills(s.engine.Symbol(), fills); err != nil {
		s.logger.Error().Err(err).Int("fills", len(fills)).Msg("unable to report fills")
	}
}
