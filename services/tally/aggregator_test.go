// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package tally

import (
	"context"
	"fmt"
	"github.com/google/go-cmp/cmp"
	"github.com/orbs-network/go-mock"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/orbs-network/orbs-tally/test/with"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
)

func TestRefresh_AssemblesCandidatesInBatchOrder(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 10), candidate("Bob", 5), candidate("Carol", 0))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.NoError(t, result.Err)
		expected := []CandidateRecord{
			{Id: 0, Name: "Alice", VoteCount: 10},
			{Id: 1, Name: "Bob", VoteCount: 5},
			{Id: 2, Name: "Carol", VoteCount: 0},
		}
		if diff := cmp.Diff(expected, result.Candidates); diff != "" {
			t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
		}
		require.Equal(t, result, aggregator.Latest())
	})
}

func TestRefresh_ProducesExactlyCountRecordsWithContiguousIds(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		for _, count := range []int{1, 2, 7, 50} {
			var candidates []fakeCandidate
			for i := 0; i < count; i++ {
				candidates = append(candidates, candidate(fmt.Sprintf("candidate-%d", i), int64(i*3)))
			}
			aggregator := newAggregatorForTests(newFakeLedger(candidates...), harness.Logger)

			result := aggregator.Refresh(context.Background())

			require.NoError(t, result.Err)
			require.Len(t, result.Candidates, count)
			for i, record := range result.Candidates {
				require.EqualValues(t, i, record.Id, "ids must follow batch position")
				require.Equal(t, candidates[i].name, record.Name)
			}
		}
	})
}

func TestRefresh_ZeroCandidatesIsAnEmptySuccess(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		executor := &ledgerreader.MockBatchReadExecutor{}
		executor.When("ExecuteBatch", mock.Any, mock.Any).Call(func(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
			require.Len(t, descriptors, 1)
			require.Equal(t, ledgerreader.GetCandidateCount, descriptors[0].FunctionName)
			return []*ledgerreader.ReadOutcome{ledgerreader.Succeeded(big.NewInt(0))}, nil
		}).Times(1)
		aggregator := newAggregatorForTests(executor, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.True(t, result.IsOk())
		require.NotNil(t, result.Candidates)
		require.Empty(t, result.Candidates)
		ok, err := executor.Verify()
		require.True(t, ok, "expected only the count read, %v", err)
	})
}

func TestRefresh_CountTransportFailureSkipsCandidateBatch(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1))
		ledger.failCount(errors.New("connection reset by peer"))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.False(t, result.IsOk())
		require.Equal(t, ledgerreader.TransportErrorKind, kindOf(result.Err))
		require.Empty(t, result.Candidates)
		require.Zero(t, ledger.CandidateBatches(), "no candidate reads may follow a failed count read")
	})
}

func TestRefresh_CandidateBatchTransportFailureFailsTheCycle(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2), candidate("Carol", 3))
		ledger.failCandidateBatch(errors.New("connection refused"))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.False(t, result.IsOk())
		require.Equal(t, ledgerreader.TransportErrorKind, kindOf(result.Err))
		require.Contains(t, result.Err.Error(), "connection refused")
		require.Nil(t, result.Candidates)
		require.EqualValues(t, 1, ledger.CandidateBatches())
		require.Equal(t, result, aggregator.Latest())
	})
}

func TestRefresh_FailedCountItemIsReportedAsTransportError(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		executor := &ledgerreader.MockBatchReadExecutor{}
		executor.When("ExecuteBatch", mock.Any, mock.Any).Return([]*ledgerreader.ReadOutcome{
			ledgerreader.Failed(ledgerreader.TransportError(errors.New("execution reverted"), "eth_call failed")),
		}, nil).Times(1)
		aggregator := newAggregatorForTests(executor, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.Equal(t, ledgerreader.TransportErrorKind, kindOf(result.Err))
		ok, err := executor.Verify()
		require.True(t, ok, "expected a single batch, %v", err)
	})
}

func TestRefresh_OneFailedItemFailsTheWholeCycleDeterministically(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 10), candidate("Bob", 5), candidate("Carol", 0), candidate("Dave", 2))
		ledger.failItem(3, ledgerreader.TransportError(errors.New("timeout"), "eth_call failed"))
		ledger.failItem(1, ledgerreader.DecodeErrorf("garbage"))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		first := aggregator.Refresh(context.Background())
		second := aggregator.Refresh(context.Background())

		require.False(t, first.IsOk())
		require.Nil(t, first.Candidates, "a failed cycle carries no partial table")
		require.Equal(t, ledgerreader.DecodeErrorKind, kindOf(first.Err), "lowest failing position decides the error")
		require.Contains(t, first.Err.Error(), "candidate 1")
		require.Equal(t, first.Err.Error(), second.Err.Error(), "identical outcomes must give identical results")
	})
}

func TestRefresh_VoteCountAboveSafeRangeIsRangeError(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		tooBig := new(big.Int).Lsh(big.NewInt(1), 53)
		ledger := newFakeLedger(candidate("Alice", 1), fakeCandidate{name: "Bob", votes: tooBig})
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.Equal(t, ledgerreader.RangeErrorKind, kindOf(result.Err))
		require.Nil(t, result.Candidates)
	})
}

func TestRefresh_VoteCountAtSafeBoundaryIsKept(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(fakeCandidate{name: "Alice", votes: big.NewInt(MaxSafeVoteCount)})
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.NoError(t, result.Err)
		require.EqualValues(t, MaxSafeVoteCount, result.Candidates[0].VoteCount)
	})
}

func TestRefresh_CountAboveConfiguredMaximumIsRangeError(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger()
		ledger.setCount(big.NewInt(101))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.Equal(t, ledgerreader.RangeErrorKind, kindOf(result.Err))
		require.Zero(t, ledger.CandidateBatches())
	})
}

func TestRefresh_ShortOutcomeListIsDecodeError(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		executor := &ledgerreader.MockBatchReadExecutor{}
		executor.When("ExecuteBatch", mock.Any, mock.Any).Call(func(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
			if descriptors[0].FunctionName == ledgerreader.GetCandidateCount {
				return []*ledgerreader.ReadOutcome{ledgerreader.Succeeded(big.NewInt(2))}, nil
			}
			return []*ledgerreader.ReadOutcome{ledgerreader.Succeeded("Alice", big.NewInt(1))}, nil
		}).Times(2)
		aggregator := newAggregatorForTests(executor, harness.Logger)

		result := aggregator.Refresh(context.Background())

		require.Equal(t, ledgerreader.DecodeErrorKind, kindOf(result.Err))
	})
}

func TestRefresh_LateResultOfOlderCycleIsDiscarded(t *testing.T) {
	for _, olderFails := range []bool{false, true} {
		t.Run(fmt.Sprintf("older cycle fails: %v", olderFails), func(t *testing.T) {
			with.Logging(t, func(harness *with.LoggingHarness) {
				ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2))
				blocked := make(chan struct{})
				release := make(chan struct{})
				ledger.beforeCandidates = func(batch int32) {
					if batch == 1 {
						close(blocked)
						<-release
						if olderFails {
							ledger.failItem(0, ledgerreader.TransportError(errors.New("late failure"), "eth_call failed"))
						}
					}
				}
				aggregator := newAggregatorForTests(ledger, harness.Logger)
				handler := &recordingHandler{}
				aggregator.RegisterResultHandler(handler)

				olderDone := make(chan *AggregationResult)
				go func() {
					olderDone <- aggregator.Refresh(context.Background())
				}()
				<-blocked

				newer := aggregator.Refresh(context.Background())
				close(release)
				older := <-olderDone

				require.EqualValues(t, 1, older.Cycle)
				require.EqualValues(t, 2, newer.Cycle)
				require.Equal(t, newer, aggregator.Latest())
				require.EqualValues(t, 2, aggregator.LatestAppliedCycle())
				require.Equal(t, []uint64{2}, handler.cycles(), "the superseded result must never reach handlers")
			})
		})
	}
}

func TestRefresh_NewerCycleReplacesOlderResultWholesale(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2))
		aggregator := newAggregatorForTests(ledger, harness.Logger)
		handler := &recordingHandler{}
		aggregator.RegisterResultHandler(handler)

		first := aggregator.Refresh(context.Background())
		ledger.failCount(errors.New("node unavailable"))
		second := aggregator.Refresh(context.Background())

		require.True(t, first.IsOk())
		require.False(t, second.IsOk())
		require.Equal(t, second, aggregator.Latest(), "an error from a newer cycle replaces an older table")
		require.Len(t, first.Candidates, 2, "an applied result is never mutated")
		require.Equal(t, []uint64{1, 2}, handler.cycles())
	})
}

func TestLatest_ChangingAReturnedResultDoesNotAffectTheAppliedOne(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2))
		aggregator := newAggregatorForTests(ledger, harness.Logger)
		handler := &recordingHandler{}
		aggregator.RegisterResultHandler(handler)

		refreshed := aggregator.Refresh(context.Background())
		refreshed.Candidates[0].Name = "Mallory"
		latest := aggregator.Latest()
		latest.Candidates[1].VoteCount = 1000
		latest.Candidates = append(latest.Candidates, CandidateRecord{Id: 2, Name: "Eve"})

		again := aggregator.Latest()
		require.Equal(t, []CandidateRecord{
			{Id: 0, Name: "Alice", VoteCount: 1},
			{Id: 1, Name: "Bob", VoteCount: 2},
		}, again.Candidates)
		require.Equal(t, "Alice", handler.results[0].Candidates[0].Name)
	})
}

func TestRefreshWithObservedCount_UsesObservationInsteadOfReadingCount(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2), candidate("Carol", 3))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		result := aggregator.RefreshWithObservedCount(context.Background(), big.NewInt(2))

		require.NoError(t, result.Err)
		require.Len(t, result.Candidates, 2, "batch size must match the count of the same cycle")
		require.Zero(t, ledger.CountCalls())
	})
}

func TestRefreshWithObservedCount_ObservationDoesNotLeakIntoNextCycle(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2), candidate("Carol", 3))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		aggregator.RefreshWithObservedCount(context.Background(), big.NewInt(1))
		result := aggregator.Refresh(context.Background())

		require.NoError(t, result.Err)
		require.Len(t, result.Candidates, 3)
		require.EqualValues(t, 1, ledger.CountCalls())
	})
}

func TestRefresh_ConcurrentCyclesApplyInIncreasingOrder(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1), candidate("Bob", 2))
		aggregator := newAggregatorForTests(ledger, harness.Logger)
		handler := &recordingHandler{}
		aggregator.RegisterResultHandler(handler)

		done := make(chan struct{})
		for i := 0; i < 10; i++ {
			go func() {
				aggregator.Refresh(context.Background())
				done <- struct{}{}
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		require.EqualValues(t, 10, aggregator.Latest().Cycle)
		applied := handler.cycles()
		for i := 1; i < len(applied); i++ {
			require.True(t, applied[i] > applied[i-1], "handlers must see strictly increasing cycles, got %v", applied)
		}
	})
}

func TestObserveCount_DoesNotStartACycle(t *testing.T) {
	with.Logging(t, func(harness *with.LoggingHarness) {
		ledger := newFakeLedger(candidate("Alice", 1))
		aggregator := newAggregatorForTests(ledger, harness.Logger)

		count, err := aggregator.ObserveCount(context.Background())

		require.NoError(t, err)
		require.EqualValues(t, 1, count.Int64())
		require.Nil(t, aggregator.Latest())
		require.Zero(t, aggregator.LatestAppliedCycle())
	})
}
