package tally

import (
	"context"
	"github.com/orbs-network/govnr"
	"github.com/orbs-network/orbs-tally/instrumentation/logfields"
	"github.com/orbs-network/orbs-tally/instrumentation/trace"
	"github.com/orbs-network/orbs-tally/synchronization"
	"github.com/orbs-network/scribe/log"
	"golang.org/x/time/rate"
	"math/big"
	"sync"
	"time"
)

// CountWatcher polls the candidate count and starts a new cycle, seeded with the observation, whenever it changes
type CountWatcher struct {
	*synchronization.PeriodicalTrigger
	aggregator *Aggregator
	logger     log.Logger

	mu struct {
		sync.Mutex
		lastObserved *big.Int
	}
}

func NewCountWatcher(ctx context.Context, interval time.Duration, aggregator *Aggregator, parentLogger log.Logger) *CountWatcher {
	w := &CountWatcher{
		aggregator: aggregator,
		logger:     parentLogger.WithTags(log.String("trigger", "count-watcher")),
	}
	w.PeriodicalTrigger = synchronization.NewPeriodicalTrigger(ctx, "tally count watcher", interval, w.logger, func() {
		w.observe(trace.NewContext(ctx, "count-watcher"))
	}, nil)
	return w
}

// observe returns true if the observation enqueued a new cycle
func (w *CountWatcher) observe(ctx context.Context) bool {
	count, err := w.aggregator.ObserveCount(ctx)
	if err != nil {
		w.logger.Info("failed observing candidate count", log.Error(err), trace.LogFieldFrom(ctx))
		return false
	}

	if !w.changed(count) {
		return false
	}

	w.logger.Info("candidate count changed, starting a new cycle", log.String("observed-count", count.String()), trace.LogFieldFrom(ctx))
	w.aggregator.RefreshWithObservedCount(ctx, count)
	return true
}

func (w *CountWatcher) changed(count *big.Int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	previous := w.mu.lastObserved
	w.mu.lastObserved = count
	if previous != nil {
		return previous.Cmp(count) != 0
	}

	// first observation is compared with what is already displayed
	latest := w.aggregator.Latest()
	return !latest.IsOk() || !count.IsUint64() || uint64(len(latest.Candidates)) != count.Uint64()
}

// Poller runs a full refresh on every tick
type Poller struct {
	*synchronization.PeriodicalTrigger
}

func NewPoller(ctx context.Context, interval time.Duration, aggregator *Aggregator, parentLogger log.Logger) *Poller {
	logger := parentLogger.WithTags(log.String("trigger", "poller"))
	return &Poller{
		PeriodicalTrigger: synchronization.NewPeriodicalTrigger(ctx, "tally poller", interval, logger, func() {
			aggregator.Refresh(trace.NewContext(ctx, "poller"))
		}, nil),
	}
}

// ManualTrigger starts a refresh on request, at most once per minimal interval
type ManualTrigger struct {
	ctx        context.Context
	aggregator *Aggregator
	limiter    *rate.Limiter
	logger     log.Logger
}

func NewManualTrigger(ctx context.Context, minInterval time.Duration, aggregator *Aggregator, parentLogger log.Logger) *ManualTrigger {
	return &ManualTrigger{
		ctx:        ctx,
		aggregator: aggregator,
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		logger:     parentLogger.WithTags(log.String("trigger", "manual")),
	}
}

// Trigger returns false without starting a cycle when rate limited
func (m *ManualTrigger) Trigger(ctx context.Context) bool {
	if !m.limiter.Allow() {
		m.logger.Info("manual refresh rate limited", trace.LogFieldFrom(ctx))
		return false
	}

	requestCtx := trace.NewContext(m.ctx, "manual-refresh")
	if tc, ok := trace.FromContext(ctx); ok {
		requestCtx = trace.PropagateContext(m.ctx, tc)
	}

	govnr.Once(logfields.GovnrErrorer(m.logger), func() {
		m.aggregator.Refresh(requestCtx)
	})
	return true
}
