package query

import (
	"errors"
	"fmt"
)

// Policy limits for generated queries
const (
	// MaxLimit is the largest row limit a plan may carry
	MaxLimit = 100000

	// DefaultLimit is the row limit used when the caller gives none
	DefaultLimit = 1000

	// MaxFilters is the maximum number of custom filters per query
	MaxFilters = 10

	// MaxColumnNameLength is the maximum length for a column name
	MaxColumnNameLength = 256
)

var (
	// ErrUnknownColumn is returned when a query references a column the table does not have
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnknownOperator is returned for operator names outside the supported set
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrTooManyFilters is returned when more than MaxFilters filters are supplied
	ErrTooManyFilters = errors.New("too many filters")

	// ErrLimitOutOfRange is returned when a limit is not in [1, max]
	ErrLimitOutOfRange = errors.New("limit out of range")

	// ErrColumnNameTooLong is returned when column name is too long
	ErrColumnNameTooLong = errors.New("column name too long")

	// ErrEmptyColumnName is returned when a column reference is empty
	ErrEmptyColumnName = errors.New("column name cannot be empty")

	// ErrEmptyProjection is returned when an explicit select list is empty
	ErrEmptyProjection = errors.New("select list cannot be empty")
)

// ValidateColumnName validates column name length
func ValidateColumnName(name string) error {
	if name == "" {
		return ErrEmptyColumnName
	}
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrColumnNameTooLong, len(name), MaxColumnNameLength)
	}
	return nil
}

// ValidateLimit checks 1 <= limit <= max. A non-positive max means MaxLimit.
func ValidateLimit(limit, max int) error {
	if max <= 0 {
		max = MaxLimit
	}
	if limit < 1 || limit > max {
		return fmt.Errorf("%w: %d (allowed 1-%d)", ErrLimitOutOfRange, limit, max)
	}
	return nil
}
