// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package tally

import (
	"context"
	"github.com/ethereum/go-ethereum/common"
	"github.com/orbs-network/orbs-tally/instrumentation/logfields"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/instrumentation/trace"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/orbs-network/scribe/log"
	"math/big"
	"sync"
	"sync/atomic"
	"time"
)

var LogTag = log.Service("tally-aggregator")

type aggregatorConfig interface {
	TallyContractAddress() string
	TallyCallTimeout() time.Duration
	TallyMaxCandidates() uint32
}

type metrics struct {
	refreshTime      *metric.Histogram
	refreshes        *metric.Rate
	failedRefreshes  *metric.Gauge
	staleResults     *metric.Gauge
	candidateCount   *metric.Gauge
	lastAppliedCycle *metric.Gauge
	lastError        *metric.Text
}

func newMetrics(factory metric.Factory, callTimeout time.Duration) *metrics {
	return &metrics{
		refreshTime:      factory.NewLatency("Tally.Refresh.Time", callTimeout),
		refreshes:        factory.NewRate("Tally.Refresh.PerSecond"),
		failedRefreshes:  factory.NewGauge("Tally.Refresh.Failed.Count"),
		staleResults:     factory.NewGauge("Tally.Refresh.Stale.Count"),
		candidateCount:   factory.NewGauge("Tally.Candidates.Count"),
		lastAppliedCycle: factory.NewGauge("Tally.Cycle.LastApplied"),
		lastError:        factory.NewText("Tally.Refresh.LastError"),
	}
}

// Aggregator turns the candidate count into a dependent batch of candidate reads and
// keeps the result of the newest cycle that completed.
type Aggregator struct {
	config   aggregatorConfig
	address  common.Address
	executor ledgerreader.BatchReadExecutor
	cache    *ledgerreader.ReadCache
	logger   log.Logger
	metrics  *metrics

	lastIssuedCycle uint64

	applyMutex sync.Mutex // orders apply and handler notification
	handlers   []ResultHandler

	mu struct {
		sync.RWMutex
		latest             *AggregationResult
		latestAppliedCycle uint64
	}
}

func NewAggregator(config aggregatorConfig, executor ledgerreader.BatchReadExecutor, parentLogger log.Logger, metricFactory metric.Factory) *Aggregator {
	address := common.HexToAddress(config.TallyContractAddress())
	logger := parentLogger.WithTags(LogTag, logfields.ContractAddress(address.Hex()))

	return &Aggregator{
		config:   config,
		address:  address,
		executor: executor,
		cache:    ledgerreader.NewReadCache(),
		logger:   logger,
		metrics:  newMetrics(metricFactory, config.TallyCallTimeout()),
	}
}

func (a *Aggregator) ContractAddress() common.Address {
	return a.address
}

// RegisterResultHandler must be called before the first refresh
func (a *Aggregator) RegisterResultHandler(handler ResultHandler) {
	a.applyMutex.Lock()
	defer a.applyMutex.Unlock()
	a.handlers = append(a.handlers, handler)
}

// Latest returns a copy of the last applied result, nil before the first apply
func (a *Aggregator) Latest() *AggregationResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mu.latest.clone()
}

func (a *Aggregator) LatestAppliedCycle() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mu.latestAppliedCycle
}

// Refresh runs one complete cycle and returns its result, which is applied only if no newer cycle was applied first
func (a *Aggregator) Refresh(ctx context.Context) *AggregationResult {
	return a.runCycle(ctx, a.beginCycle())
}

// RefreshWithObservedCount runs a cycle whose candidate count is already known
func (a *Aggregator) RefreshWithObservedCount(ctx context.Context, count *big.Int) *AggregationResult {
	cycle := a.beginCycle()
	a.cache.Put(cycle, ledgerreader.CandidateCountRead(a.address), ledgerreader.Succeeded(count))
	return a.runCycle(ctx, cycle)
}

// ObserveCount reads the candidate count outside of any cycle
func (a *Aggregator) ObserveCount(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.TallyCallTimeout())
	defer cancel()

	outcomes, err := a.executeBatch(ctx, []*ledgerreader.ReadDescriptor{ledgerreader.CandidateCountRead(a.address)})
	if err != nil {
		return nil, err
	}
	return decodeCount(outcomes[0])
}

func (a *Aggregator) beginCycle() uint64 {
	cycle := atomic.AddUint64(&a.lastIssuedCycle, 1)
	a.cache.BeginCycle(cycle)
	return cycle
}

func (a *Aggregator) runCycle(ctx context.Context, cycle uint64) *AggregationResult {
	start := time.Now()
	defer a.metrics.refreshTime.RecordSince(start)
	a.metrics.refreshes.Measure(1)

	ctx, cancel := context.WithTimeout(ctx, a.config.TallyCallTimeout())
	defer cancel()

	logger := a.logger.WithTags(trace.LogFieldFrom(ctx), logfields.Cycle(cycle))

	candidates, err := a.aggregate(ctx, cycle, logger)
	result := &AggregationResult{Cycle: cycle, Candidates: candidates, Err: err}
	if err != nil {
		result.Candidates = nil
	}

	a.apply(result, logger)
	return result.clone()
}

func (a *Aggregator) aggregate(ctx context.Context, cycle uint64, logger log.Logger) ([]CandidateRecord, error) {
	count, err := a.candidateCount(ctx, cycle)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered candidate count", logfields.CandidateCount(count))

	if count == 0 {
		return []CandidateRecord{}, nil
	}

	descriptors := ledgerreader.CandidateReads(a.address, count)
	outcomes, err := a.executeBatch(ctx, descriptors)
	if err != nil {
		return nil, err
	}
	for i, outcome := range outcomes {
		a.cache.Put(cycle, descriptors[i], outcome)
	}

	return reduceCandidates(count, outcomes)
}

func (a *Aggregator) candidateCount(ctx context.Context, cycle uint64) (uint64, error) {
	read := ledgerreader.CandidateCountRead(a.address)

	outcome, found := a.cache.Get(cycle, read)
	if !found {
		outcomes, err := a.executeBatch(ctx, []*ledgerreader.ReadDescriptor{read})
		if err != nil {
			return 0, err
		}
		outcome = outcomes[0]
		a.cache.Put(cycle, read, outcome)
	}

	value, err := decodeCount(outcome)
	if err != nil {
		return 0, err
	}
	count, err := toSafeUint64(value, "candidate count")
	if err != nil {
		return 0, err
	}
	if max := uint64(a.config.TallyMaxCandidates()); count > max {
		return 0, ledgerreader.RangeErrorf("candidate count %d exceeds the configured maximum of %d", count, max)
	}
	return count, nil
}

func (a *Aggregator) executeBatch(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
	outcomes, err := a.executor.ExecuteBatch(ctx, descriptors)
	if err != nil {
		return nil, ledgerreader.Classify(err, "batch read failed")
	}
	if len(outcomes) != len(descriptors) {
		return nil, ledgerreader.DecodeErrorf("executor returned %d outcomes for %d reads", len(outcomes), len(descriptors))
	}
	return outcomes, nil
}

func (a *Aggregator) apply(result *AggregationResult, logger log.Logger) {
	a.applyMutex.Lock()
	defer a.applyMutex.Unlock()

	if !a.setLatestIfNewer(result) {
		a.metrics.staleResults.Inc()
		logger.Info("dropping result of superseded cycle", log.Uint64("latest-applied-cycle", a.LatestAppliedCycle()))
		return
	}

	a.metrics.lastAppliedCycle.UpdateUint64(result.Cycle)
	if result.IsOk() {
		a.metrics.candidateCount.Update(int64(len(result.Candidates)))
		a.metrics.lastError.Update("")
		logger.Info("applied tally", logfields.CandidateCount(uint64(len(result.Candidates))))
	} else {
		a.metrics.failedRefreshes.Inc()
		a.metrics.lastError.Update(result.Err.Error())
		logger.Info("applied failed tally", log.Error(result.Err))
	}

	for _, handler := range a.handlers {
		handler.HandleAggregationResult(result.clone())
	}
}

func (a *Aggregator) setLatestIfNewer(result *AggregationResult) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if result.Cycle <= a.mu.latestAppliedCycle {
		return false
	}
	a.mu.latest = result
	a.mu.latestAppliedCycle = result.Cycle
	return true
}
