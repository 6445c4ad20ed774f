package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/naufalhakim/catatin/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrEmptySlice   = errors.New("slice cannot be empty")
	ErrInvalidID    = errors.New("id must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures a row ID is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateExpense checks the fields required before an insert or update.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if strings.TrimSpace(expense.OwnerID) == "" {
		return fmt.Errorf("%w: expense owner", ErrEmptyString)
	}
	if strings.TrimSpace(expense.Item) == "" {
		return fmt.Errorf("%w: expense item", ErrEmptyString)
	}
	if expense.Amount <= 0 {
		return fmt.Errorf("expense amount must be positive, got %d", expense.Amount)
	}
	if expense.ExpenseDate.IsZero() {
		return fmt.Errorf("expense date must be set")
	}
	return nil
}

// validateExpenses validates a batch for insert.
func validateExpenses(expenses []model.Expense) error {
	if expenses == nil {
		return fmt.Errorf("%w: expenses", ErrNilParameter)
	}
	if len(expenses) == 0 {
		return fmt.Errorf("%w: expenses", ErrEmptySlice)
	}
	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return fmt.Errorf("expense at index %d: %w", i, err)
		}
	}
	return nil
}
