package tally

// CandidateRecord is immutable once built; Id is the batch position it was read from.
type CandidateRecord struct {
	Id        uint64
	Name      string
	VoteCount uint64
}

// AggregationResult is the outcome of a single refresh cycle: either the ordered candidates or an error.
type AggregationResult struct {
	Cycle      uint64
	Candidates []CandidateRecord
	Err        error
}

func (r *AggregationResult) IsOk() bool {
	return r != nil && r.Err == nil
}

// clone gives every reader its own candidate slice so the applied result cannot be changed through it
func (r *AggregationResult) clone() *AggregationResult {
	if r == nil {
		return nil
	}
	c := *r
	if r.Candidates != nil {
		c.Candidates = make([]CandidateRecord, len(r.Candidates))
		copy(c.Candidates, r.Candidates)
	}
	return &c
}

type ResultHandler interface {
	HandleAggregationResult(result *AggregationResult)
}
