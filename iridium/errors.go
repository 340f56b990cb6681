package iridium

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrUncorrectableBlock = errors.New("uncorrectable block")
	ErrUnknownFieldValue  = errors.New("unknown field value")
	ErrUnsupported        = errors.New("unsupported frame type")
	ErrNoUniqueWord       = errors.New("no unique word")
)

// MalformedInputError reports input that does not match the expected grammar.
type MalformedInputError struct {
	Line   string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s: %q", e.Reason, e.Line)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// UncorrectableBlockError is returned when a BCH repair runs out of its error budget.
type UncorrectableBlockError struct {
	Code  string
	Block int
}

func (e *UncorrectableBlockError) Error() string {
	return fmt.Sprintf("uncorrectable %s block %d", e.Code, e.Block)
}

func (e *UncorrectableBlockError) Unwrap() error { return ErrUncorrectableBlock }

// UnknownFieldValueError reports an enumerated value missing from its lookup table.
type UnknownFieldValueError struct {
	Field string
	Value string
}

func (e *UnknownFieldValueError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Field, e.Value)
}

func (e *UnknownFieldValueError) Unwrap() error { return ErrUnknownFieldValue }

func malformed(line, format string, args ...any) error {
	return &MalformedInputError{Line: line, Reason: fmt.Sprintf(format, args...)}
}
