package shard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lob/internal/common"
	"lob/internal/engine"
)

// --- Setup & Helpers --------------------------------------------------------

const testSymbol = "AAPL"

type MockReporter struct {
	mu    sync.Mutex
	fills []common.Fill
	err   error
}

func (r *MockReporter) ReportFills(symbol string, fills []common.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fills = append(r.fills, fills...)
	return r.err
}

func (r *MockReporter) Fills() []common.Fill {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]common.Fill(nil), r.fills...)
}

func createTestShard(t *testing.T, reporter Reporter) (*Shard, *engine.Engine) {
	t.Helper()
	eng := engine.New(testSymbol, engine.WithLogger(zerolog.Nop()))
	s := New(context.Background(), eng, 0, reporter)
	t.Cleanup(func() { _ = s.Stop() })
	return s, eng
}

func limit(t *testing.T, id uint64, side common.Side, qty int64, price string) common.LimitOrder {
	t.Helper()
	o, err := common.NewLimitOrder(id, testSymbol, side, qty, decimal.RequireFromString(price), time.Time{})
	require.NoError(t, err)
	return o
}

// --- Tests ------------------------------------------------------------------

func TestShard_Commands(t *testing.T) {
	reporter := &MockReporter{}
	s, _ := createTestShard(t, reporter)
	ctx := context.Background()

	fills, err := s.Submit(ctx, limit(t, 1, common.Buy, 100, "150.50"))
	require.NoError(t, err)
	assert.Empty(t, fills)

	fills, err = s.Submit(ctx, limit(t, 2, common.Sell, 50, "150.00"))
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, fills, reporter.Fills())

	depth, err := s.Depth(ctx, common.Buy)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	assert.ErrorIs(t, s.Amend(ctx, 1, 150), common.ErrAmendRejected)
	require.NoError(t, s.Amend(ctx, 1, 20))

	levels, err := s.Levels(ctx, common.Buy)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(20), levels[0].Quantity())

	ok, err := s.Cancel(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Submit(ctx, limit(t, 3, common.Buy, 0, "1"))
	assert.ErrorIs(t, err, common.ErrInvalidOrder)
}

func TestShard_ConcurrentCallers(t *testing.T) {
	reporter := &MockReporter{}
	s, eng := createTestShard(t, reporter)
	ctx := context.Background()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			side := common.Side(w % 2)
			for i := 0; i < perWorker; i++ {
				id := uint64(w*perWorker + i + 1)
				_, err := s.Submit(ctx, limit(t, id, side, 10, "100"))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, s.Stop())

	// Equal buy and sell volume at one price always matches out.
	assert.Equal(t, 0, eng.BookDepth(common.Buy))
	assert.Equal(t, 0, eng.BookDepth(common.Sell))
	require.NoError(t, eng.Validate())

	var total int64
	for _, f := range reporter.Fills() {
		total += f.Quantity
	}
	assert.Equal(t, int64(workers/2*perWorker*10), total)
}

func TestShard_Stopped(t *testing.T) {
	s, _ := createTestShard(t, nil)
	require.NoError(t, s.Stop())

	_, err := s.Submit(context.Background(), limit(t, 1, common.Buy, 1, "1"))
	assert.ErrorIs(t, err, ErrShardClosed)
	_, err = s.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrShardClosed)
}

func TestShard_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(testSymbol, engine.WithLogger(zerolog.Nop()))
	s := New(ctx, eng, 1, nil)

	cancel()
	assert.NoError(t, s.Stop())

	_, err := s.Depth(context.Background(), common.Buy)
	assert.ErrorIs(t, err, ErrShardClosed)
}

func TestShard_ReporterErrorDoesNotFailSubmit(t *testing.T) {
	reporter := &MockReporter{err: errors.New("downstream unavailable")}
	s, _ := createTestShard(t, reporter)
	ctx := context.Background()

	_, err := s.Submit(ctx, limit(t, 1, common.Sell, 5, "10"))
	require.NoError(t, err)
	fills, err := s.Submit(ctx, limit(t, 2, common.Buy, 5, "10"))
	require.NoError(t, err)
	assert.Len(t, fills, 1)
	assert.Len(t, reporter.Fills(), 1)
}

// blockShard parks the shard goroutine until the returned func is called.
func blockShard(t *testing.T, s *Shard) (release func()) {
	t.Helper()
	started := make(chan struct{})
	block := make(chan struct{})
	go func() {
		_, _ = call(context.Background(), s, func(*engine.Engine) struct{} {
			close(started)
			<-block
			return struct{}{}
		})
	}()
	<-started
	return func() { close(block) }
}

func TestShard_StopRunsQueuedCommands(t *testing.T) {
	eng := engine.New(testSymbol, engine.WithLogger(zerolog.Nop()))
	s := New(context.Background(), eng, 16, nil)
	release := blockShard(t, s)

	const queued = 10
	errs := make(chan error, queued)
	for i := 0; i < queued; i++ {
		order := limit(t, uint64(i+1), common.Buy, 1, "100")
		go func() {
			_, err := s.Submit(context.Background(), order)
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return len(s.tasks) == queued }, time.Second, time.Millisecond)

	s.t.Kill(nil)
	release()
	require.NoError(t, s.Stop())

	for i := 0; i < queued; i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, queued, eng.BookDepth(common.Buy))
}

func TestShard_SubmitExecutesAfterCallerGivesUp(t *testing.T) {
	reporter := &MockReporter{}
	s, eng := createTestShard(t, reporter)

	_, err := s.Submit(context.Background(), limit(t, 1, common.Sell, 5, "10"))
	require.NoError(t, err)
	release := blockShard(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	buy := limit(t, 2, common.Buy, 5, "10")
	errs := make(chan error, 1)
	go func() {
		_, err := s.Submit(ctx, buy)
		errs <- err
	}()
	require.Eventually(t, func() bool { return len(s.tasks) == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	release()
	require.NoError(t, s.Stop())
	assert.Len(t, reporter.Fills(), 1, "queued order still trades")
	assert.Equal(t, 0, eng.BookDepth(common.Sell))
}
