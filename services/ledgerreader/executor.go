package ledgerreader

import "context"

// BatchReadExecutor runs a list of reads together. The returned outcomes have the
// same length and order as the descriptors and each item fails independently.
// A non-nil error means the batch as a whole could not be executed.
type BatchReadExecutor interface {
	ExecuteBatch(ctx context.Context, descriptors []*ReadDescriptor) ([]*ReadOutcome, error)
}
