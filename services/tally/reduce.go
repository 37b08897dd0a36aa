package tally

import (
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/pkg/errors"
	"math/big"
)

// MaxSafeVoteCount is the largest integer a JSON number keeps exactly in a browser
const MaxSafeVoteCount = 1<<53 - 1

var maxSafe = big.NewInt(MaxSafeVoteCount)

func toSafeUint64(value *big.Int, what string) (uint64, error) {
	if value.Sign() < 0 {
		return 0, ledgerreader.RangeErrorf("%s is negative: %s", what, value)
	}
	if value.Cmp(maxSafe) > 0 {
		return 0, ledgerreader.RangeErrorf("%s %s exceeds the safe integer range", what, value)
	}
	return value.Uint64(), nil
}

func decodeCount(outcome *ledgerreader.ReadOutcome) (*big.Int, error) {
	if outcome == nil {
		return nil, ledgerreader.DecodeErrorf("missing outcome for %s", ledgerreader.GetCandidateCount)
	}
	if !outcome.IsSuccess() {
		return nil, ledgerreader.Classify(outcome.Err, "candidate count read failed")
	}
	if len(outcome.Values) != 1 {
		return nil, ledgerreader.DecodeErrorf("expected 1 value for %s, got %d", ledgerreader.GetCandidateCount, len(outcome.Values))
	}
	count, ok := outcome.Values[0].(*big.Int)
	if !ok || count == nil {
		return nil, ledgerreader.DecodeErrorf("expected integer candidate count, got %T", outcome.Values[0])
	}
	return count, nil
}

func decodeCandidate(id uint64, outcome *ledgerreader.ReadOutcome) (CandidateRecord, error) {
	if outcome == nil {
		return CandidateRecord{}, ledgerreader.DecodeErrorf("missing outcome for candidate %d", id)
	}
	if !outcome.IsSuccess() {
		return CandidateRecord{}, ledgerreader.Classify(outcome.Err, "candidate read failed")
	}
	if len(outcome.Values) != 2 {
		return CandidateRecord{}, ledgerreader.DecodeErrorf("expected (name, voteCount) for candidate %d, got %d values", id, len(outcome.Values))
	}
	name, ok := outcome.Values[0].(string)
	if !ok {
		return CandidateRecord{}, ledgerreader.DecodeErrorf("expected string name for candidate %d, got %T", id, outcome.Values[0])
	}
	votes, ok := outcome.Values[1].(*big.Int)
	if !ok || votes == nil {
		return CandidateRecord{}, ledgerreader.DecodeErrorf("expected integer vote count for candidate %d, got %T", id, outcome.Values[1])
	}
	voteCount, err := toSafeUint64(votes, "vote count")
	if err != nil {
		return CandidateRecord{}, err
	}
	return CandidateRecord{Id: id, Name: name, VoteCount: voteCount}, nil
}

// reduceCandidates fails on the first failing position, so the same outcomes always reduce to the same error
func reduceCandidates(count uint64, outcomes []*ledgerreader.ReadOutcome) ([]CandidateRecord, error) {
	if uint64(len(outcomes)) != count {
		return nil, ledgerreader.DecodeErrorf("expected %d candidate outcomes, got %d", count, len(outcomes))
	}

	candidates := make([]CandidateRecord, 0, count)
	for i, outcome := range outcomes {
		record, err := decodeCandidate(uint64(i), outcome)
		if err != nil {
			return nil, errors.Wrapf(err, "candidate %d", i)
		}
		candidates = append(candidates, record)
	}
	return candidates, nil
}
