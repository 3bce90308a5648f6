package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInputDirectory = errors.New("input directory does not exist")
	ErrNoEligibleFiles       = errors.New("no eligible image files found")
)

// DecodeError reports a source file whose bytes could not be turned into a bitmap.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteError reports an output artifact that could not be persisted.
type WriteError struct {
	File string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.File, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
