package cpi

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when the matrices, weights, dates,
	// codes or names of a base disagree in size.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNonMonthlyDates is returned when a date axis is not a contiguous
	// sequence of months.
	ErrNonMonthlyDates = errors.New("dates are not a contiguous monthly axis")
	// ErrDuplicateCode is returned when an item code appears twice in a base.
	ErrDuplicateCode = errors.New("duplicate item code")
	// ErrNonConsecutiveBases is returned when the eras of a country structure
	// overlap or leave a gap.
	ErrNonConsecutiveBases = errors.New("bases are not consecutive")
	// ErrEmpty is returned for containers without periods, items or bases.
	ErrEmpty = errors.New("empty container")
)

// ValidationError describes a failed structural check on a container.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if ve.Value != nil {
		return fmt.Sprintf("%s: %s (%v)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

func dimensionError(field string, got, want int) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("expected %d, got %d", want, got),
		Value:   got,
		Err:     ErrDimensionMismatch,
	}
}
