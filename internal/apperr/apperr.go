// Package apperr classifies failures so the CLI can map them to stable exit codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindArgument Kind = "ARGUMENT"
	KindNotFound Kind = "NOT_FOUND"
	KindProvider Kind = "PROVIDER"
	KindParse    Kind = "PARSE"
	KindInternal Kind = "INTERNAL"
)

// Exit codes shared with shell automation wrapping the tools.
const (
	ExitOK       = 0
	ExitArgument = 1
	ExitNotFound = 2
	ExitProvider = 3
)

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Reason
	}
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func Argument(reason string, err error) *Error { return newError(KindArgument, reason, err) }
func NotFound(reason string, err error) *Error { return newError(KindNotFound, reason, err) }
func Provider(reason string, err error) *Error { return newError(KindProvider, reason, err) }
func Parse(reason string, err error) *Error    { return newError(KindParse, reason, err) }

// Argumentf is a convenience for the common case of a bad flag value.
func Argumentf(format string, args ...any) *Error {
	return newError(KindArgument, fmt.Sprintf(format, args...), nil)
}

func NotFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of the outermost classified error in the chain,
// or KindInternal when nothing in the chain is classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindNotFound:
		return ExitNotFound
	case KindProvider:
		return ExitProvider
	default:
		return ExitArgument
	}
}
