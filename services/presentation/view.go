package presentation

import (
	"encoding/json"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/orbs-network/orbs-tally/services/tally"
	"github.com/pkg/errors"
)

type CandidateView struct {
	Id        uint64 `json:"id"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"voteCount"`
}

// TallyView is built from exactly one applied result, so a table and an error never mix
type TallyView struct {
	Cycle      uint64           `json:"cycle"`
	Candidates []*CandidateView `json:"candidates"`
	Error      string           `json:"error,omitempty"`
	ErrorKind  string           `json:"errorKind,omitempty"`
}

func ViewOf(result *tally.AggregationResult) *TallyView {
	view := &TallyView{Candidates: []*CandidateView{}}
	if result == nil {
		return view
	}

	view.Cycle = result.Cycle
	if !result.IsOk() {
		view.Error = result.Err.Error()
		if kind, ok := ledgerreader.KindOf(result.Err); ok {
			view.ErrorKind = kind.String()
		}
		return view
	}

	for _, c := range result.Candidates {
		view.Candidates = append(view.Candidates, &CandidateView{Id: c.Id, Name: c.Name, VoteCount: c.VoteCount})
	}
	return view
}

func (v *TallyView) HasError() bool {
	return v.Error != ""
}

func (v *TallyView) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	return data, errors.Wrap(err, "failed marshaling tally view")
}

func (v *TallyView) Marshal() ([]byte, error) {
	data, err := json.Marshal(v)
	return data, errors.Wrap(err, "failed marshaling tally view")
}
