package ledgerreader

import (
	"fmt"
	"github.com/pkg/errors"
)

type ErrorKind int

const (
	TransportErrorKind ErrorKind = iota + 1
	DecodeErrorKind
	RangeErrorKind
)

func (k ErrorKind) String() string {
	switch k {
	case TransportErrorKind:
		return "TransportError"
	case DecodeErrorKind:
		return "DecodeError"
	case RangeErrorKind:
		return "RangeError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the only error type surfaced by a refresh; Kind classifies it for the presentation layer.
type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

func TransportError(cause error, message string) error {
	return &Error{Kind: TransportErrorKind, cause: errors.Wrap(cause, message)}
}

func DecodeError(cause error, message string) error {
	return &Error{Kind: DecodeErrorKind, cause: errors.Wrap(cause, message)}
}

func DecodeErrorf(format string, args ...interface{}) error {
	return &Error{Kind: DecodeErrorKind, cause: errors.Errorf(format, args...)}
}

func RangeErrorf(format string, args ...interface{}) error {
	return &Error{Kind: RangeErrorKind, cause: errors.Errorf(format, args...)}
}

type causer interface {
	Cause() error
}

// KindOf walks the pkg/errors cause chain looking for a classified error
func KindOf(err error) (ErrorKind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		c, ok := err.(causer)
		if !ok {
			return 0, false
		}
		err = c.Cause()
	}
	return 0, false
}

// unclassified errors are treated as transport failures
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	return TransportError(err, message)
}
