package cpitree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCharacters is returned for a malformed prefix-length sequence.
	ErrInvalidCharacters = errors.New("invalid hierarchy characters")
	// ErrVocabularyMismatch is returned when group codes and names differ in length.
	ErrVocabularyMismatch = errors.New("group codes and names differ in length")
	// ErrUnknownCode is returned when an item code is missing from the backing table.
	ErrUnknownCode = errors.New("code not found in backing table")
	// ErrEmptyGroup is returned when a group is built without children.
	ErrEmptyGroup = errors.New("group has no children")
	// ErrShortCode is returned for an item code no longer than the prefix
	// length of a group depth.
	ErrShortCode = errors.New("item code too short for hierarchy depth")
	// ErrInvalidWeight is returned for negative or NaN item weights.
	ErrInvalidWeight = errors.New("invalid item weight")
)

// BuildError reports which code or depth made a tree build fail.
type BuildError struct {
	Code  string
	Depth int
	Err   error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("build tree at depth %d: %v", e.Depth, e.Err)
	}
	return fmt.Sprintf("build tree at depth %d, code %q: %v", e.Depth, e.Code, e.Err)
}

// Unwrap returns the underlying error
func (e *BuildError) Unwrap() error {
	return e.Err
}
