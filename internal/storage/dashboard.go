package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/naufalhakim/catatin/internal/service"
)

// GetDashboard aggregates the owner's spending for the dashboard view:
// month-to-date and today totals, a per-category breakdown for the current
// month, and the five most recent expenses. All windows are anchored to the
// supplied now so callers control the clock.
func (s *SQLiteStorage) GetDashboard(ctx context.Context, ownerID string, now time.Time) (*service.DashboardSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary := &service.DashboardSummary{}

	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*)
		 FROM expenses
		 WHERE owner_id = ? AND expense_date >= ? AND expense_date < ?`,
		ownerID, monthStart, monthEnd).Scan(&summary.MonthTotal, &summary.MonthCount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate month total: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM expenses
		 WHERE owner_id = ? AND expense_date >= ? AND expense_date < ?`,
		ownerID, dayStart, dayEnd).Scan(&summary.TodayTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate today total: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.category_id, COALESCE(c.name, 'Uncategorized'), COALESCE(c.color, '#64748B'),
		        SUM(e.amount), COUNT(*)
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 WHERE e.owner_id = ? AND e.expense_date >= ? AND e.expense_date < ?
		 GROUP BY e.category_id
		 ORDER BY SUM(e.amount) DESC`,
		ownerID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var total service.CategoryTotal
		if scanErr := rows.Scan(&total.CategoryID, &total.Name, &total.Color,
			&total.Total, &total.Count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", scanErr)
		}
		summary.ByCategory = append(summary.ByCategory, total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := s.ListExpenses(ctx, ownerID, service.ExpenseFilter{Limit: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent expenses: %w", err)
	}
	summary.Recent = recent

	return summary, nil
}
