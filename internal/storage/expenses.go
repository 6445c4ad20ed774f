package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

const expenseColumns = `id, owner_id, item, amount, category_id, expense_date, notes, created_at, updated_at`

// CreateExpense inserts a single expense and returns it with its ID set.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (owner_id, item, amount, category_id, expense_date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.OwnerID, expense.Item, expense.Amount, expense.CategoryID,
		expense.ExpenseDate, expense.Notes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense id: %w", err)
	}
	return s.GetExpense(ctx, id, expense.OwnerID)
}

// CreateExpenses inserts a batch and returns the number of rows written.
func (s *SQLiteStorage) CreateExpenses(ctx context.Context, ownerID string, expenses []model.Expense) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return createExpenses(ctx, s.db, ownerID, expenses)
}

func (t *sqliteTx) CreateExpenses(ctx context.Context, ownerID string, expenses []model.Expense) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return createExpenses(ctx, t.tx, ownerID, expenses)
}

func createExpenses(ctx context.Context, db execer, ownerID string, expenses []model.Expense) (int64, error) {
	if err := validateString(ownerID, "ownerID"); err != nil {
		return 0, err
	}
	if err := validateExpenses(expenses); err != nil {
		return 0, err
	}

	now := time.Now()
	var count int64
	for i := range expenses {
		e := &expenses[i]
		_, err := db.ExecContext(ctx,
			`INSERT INTO expenses (owner_id, item, amount, category_id, expense_date, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ownerID, e.Item, e.Amount, e.CategoryID, e.ExpenseDate, e.Notes, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert expense %d: %w", i, err)
		}
		count++
	}
	return count, nil
}

// GetExpense fetches one of the owner's expenses.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id int64, ownerID string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND owner_id = ?`,
		id, ownerID)

	var e model.Expense
	err := row.Scan(&e.ID, &e.OwnerID, &e.Item, &e.Amount, &e.CategoryID,
		&e.ExpenseDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	return &e, nil
}

// ListExpenses returns the owner's expenses newest-date first, optionally
// filtered by date range and category.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, ownerID string, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any
	conditions = append(conditions, "owner_id = ?")
	args = append(args, ownerID)

	if filter.StartDate != nil {
		conditions = append(conditions, "expense_date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "expense_date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY expense_date DESC, id DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if scanErr := rows.Scan(&e.ID, &e.OwnerID, &e.Item, &e.Amount, &e.CategoryID,
			&e.ExpenseDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", scanErr)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense rewrites an expense's editable fields. Ownership is part of
// the predicate: updating someone else's row reports not found.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}
	if err := validateID(expense.ID, "expense.ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		 SET item = ?, amount = ?, category_id = ?, expense_date = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		expense.Item, expense.Amount, expense.CategoryID, expense.ExpenseDate,
		expense.Notes, time.Now(), expense.ID, expense.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteExpense removes one of the owner's expenses.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int64, ownerID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
