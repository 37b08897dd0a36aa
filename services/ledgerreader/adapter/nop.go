package adapter

import (
	"context"
	"github.com/orbs-network/orbs-tally/services/ledgerreader"
	"github.com/pkg/errors"
)

type NopExecutor struct {
}

func (n NopExecutor) ExecuteBatch(ctx context.Context, descriptors []*ledgerreader.ReadDescriptor) ([]*ledgerreader.ReadOutcome, error) {
	return nil, ledgerreader.TransportError(errors.New("I'm the NOP batch read executor"), "no ethereum endpoint configured")
}
