package ledgerreader

import (
	"context"
	"github.com/orbs-network/go-mock"
)

type MockBatchReadExecutor struct {
	mock.Mock
}

func (m *MockBatchReadExecutor) ExecuteBatch(ctx context.Context, descriptors []*ReadDescriptor) ([]*ReadOutcome, error) {
	ret := m.Called(ctx, descriptors)
	if out := ret.Get(0); out != nil {
		return out.([]*ReadOutcome), ret.Error(1)
	} else {
		return nil, ret.Error(1)
	}
}
