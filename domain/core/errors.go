package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Input errors
	ErrEmptyTable      = errors.New("table has no rows or columns to profile")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrLengthMismatch  = errors.New("column lengths do not match")

	// Dispatch errors
	ErrUnknownEngine = errors.New("engine is not recognised by summarizer")
	ErrInvalidSort   = errors.New(`"sort" should be "ascending", "descending" or "none"`)

	// Type graph errors
	ErrTypeCycle   = errors.New("type graph contains a cycle")
	ErrUnknownType = errors.New("unknown semantic type")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewEngineError(engine string) error {
	return fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
}

func NewSortError(sort string) error {
	return fmt.Errorf("%w (got %q)", ErrInvalidSort, sort)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrDuplicateColumn) ||
		errors.Is(err, ErrLengthMismatch)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidSort) ||
		errors.Is(err, ErrUnknownEngine)
}
