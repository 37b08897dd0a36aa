package ledgerreader

// ReadOutcome is the per-item result of a batch, correlated to its request by position.
type ReadOutcome struct {
	Values []interface{}
	Err    error
}

func Succeeded(values ...interface{}) *ReadOutcome {
	return &ReadOutcome{Values: values}
}

func Failed(err error) *ReadOutcome {
	return &ReadOutcome{Err: err}
}

func (o *ReadOutcome) IsSuccess() bool {
	return o != nil && o.Err == nil
}
