package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/kpiboard/schema"
)

// Sentinel errors.
var (
	ErrItemNotFound       = errors.New("template item not found")
	ErrInvalidCoefficient = errors.New("invalid coefficient")
	ErrNoTemplate         = errors.New("operator has no KPI template")
)

// FormulaError records a formula that could not produce a score for an item.
// It is logged and the item scores 0.
type FormulaError struct {
	ItemID    schema.ItemID
	Indicator string
	Err       error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("indicator %q (id %s): %v", e.Indicator, e.ItemID, e.Err)
}

func (e *FormulaError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when a write to the data source fails.
// The caller's state is left untouched.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
