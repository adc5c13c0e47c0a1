package table

import "errors"

// Sentinel errors for engine operations.
var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrNotSortable      = errors.New("column is not sortable")
	ErrInvalidDirection = errors.New("invalid sort direction")
	ErrInvalidPageSize  = errors.New("page size must be positive")
)
