package infra

import (
	"errors"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
)

type StoreErrorKind string

// Store-level error kinds, mapped by the usecase layer onto the engine's
// error taxonomy.
const (
	KindNotFound     StoreErrorKind = "NOT_FOUND"
	KindStoreFailure StoreErrorKind = "STORE_FAILURE"
	KindPartialWrite StoreErrorKind = "PARTIAL_WRITE"
	KindStreamClosed StoreErrorKind = "STREAM_CLOSED"
)

type StoreError struct {
	Kind StoreErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e StoreError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e StoreError) Unwrap() error {
	return e.err
}

func WrapStoreErr(kind StoreErrorKind, msg string, err error) error {
	if err != nil {
		err = errs.Wrap(err, msg)
	}
	return StoreError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind StoreErrorKind) bool {
	var e StoreError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
