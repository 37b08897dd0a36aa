package tally

import (
	"context"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/orbs-network/scribe/log"
	"math/big"
	"sync"
	"sync/atomic"
	"time"
)

const testContractAddress = "0xddAEfFb5eaD735E1Cc5Ce04b980958f82F2C373f"

type tallyConfigForTests struct {
	maxCandidates uint32
	callTimeout   time.Duration
}

func (c *tallyConfigForTests) TallyContractAddress() string {
	return testContractAddress
}

func (c *tallyConfigForTests) TallyCallTimeout() time.Duration {
	return c.callTimeout
}

func (c *tallyConfigForTests) TallyMaxCandidates() uint32 {
	return c.maxCandidates
}

func defaultTestConfig() *tallyConfigForTests {
	return &tallyConfigForTests{maxCandidates: 100, callTimeout: time.Second}
}

type fakeCandidate struct {
	name  string
	votes *big.Int
}

// fakeLedger plays the executor against an in-memory candidate list
type fakeLedger struct {
	mu struct {
		sync.Mutex
		count      *big.Int
		candidates []fakeCandidate
		countErr   error
		batchErr   error
		itemErrs   map[int]error
	}
	countCalls       int32
	candidateBatches int32
	beforeCandidates func(batch int32)
}

func newFakeLedger(candidates ...fakeCandidate) *fakeLedger {
	f := &fakeLedger{}
	f.setCandidates(candidates...)
	return f
}

func candidate(name string, votes int64) fakeCandidate {
	return fakeCandidate{name: name, votes: big.NewInt(votes)}
}

func (f *fakeLedger) setCandidates(candidates ...fakeCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.candidates = candidates
	f.mu.count = big.NewInt(int64(len(candidates)))
}

func (f *fakeLedger) setCount(count *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.count = count
}

func (f *fakeLedger) failCount(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.countErr = err
}

func (f *fakeLedger) failCandidateBatch(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.batchErr = err
}

func (f *fakeLedger) failItem(index int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mu.itemErrs == nil {
		f.mu.itemErrs = make(map[int]error)
	}
	f.mu.itemErrs[index] = err
}

func (f *fakeLedger) ExecuteBatch(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
	if len(descriptors) == 1 && descriptors[0].FunctionName == ledgerreader.GetCandidateCount {
		atomic.AddInt32(&f.countCalls, 1)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.mu.countErr != nil {
			return nil, f.mu.countErr
		}
		return []*ledgerreader.ReadOutcome{ledgerreader.Succeeded(f.mu.count)}, nil
	}

	batch := atomic.AddInt32(&f.candidateBatches, 1)
	if f.beforeCandidates != nil {
		f.beforeCandidates(batch)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mu.batchErr != nil {
		return nil, f.mu.batchErr
	}
	outcomes := make([]*ledgerreader.ReadOutcome, len(descriptors))
	for i, d := range descriptors {
		index := int(d.Arguments[0].Int64())
		if err, failed := f.mu.itemErrs[index]; failed {
			outcomes[i] = ledgerreader.Failed(err)
		} else if index < len(f.mu.candidates) {
			outcomes[i] = ledgerreader.Succeeded(f.mu.candidates[index].name, f.mu.candidates[index].votes)
		} else {
			outcomes[i] = ledgerreader.Failed(ledgerreader.TransportError(context.DeadlineExceeded, "index out of bounds"))
		}
	}
	return outcomes, nil
}

func (f *fakeLedger) CandidateBatches() int32 {
	return atomic.LoadInt32(&f.candidateBatches)
}

func (f *fakeLedger) CountCalls() int32 {
	return atomic.LoadInt32(&f.countCalls)
}

type recordingHandler struct {
	mu      sync.Mutex
	results []*AggregationResult
}

func (h *recordingHandler) HandleAggregationResult(result *AggregationResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, result)
}

func (h *recordingHandler) cycles() []uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var cycles []uint64
	for _, r := range h.results {
		cycles = append(cycles, r.Cycle)
	}
	return cycles
}

func newAggregatorForTests(executor ledgerreader.BatchReadExecutor, logger log.Logger) *Aggregator {
	return NewAggregator(defaultTestConfig(), executor, logger, metric.NewRegistry())
}

func kindOf(err error) ledgerreader.ErrorKind {
	kind, _ := ledgerreader.KindOf(err)
	return kind
}
