// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/naufalhakim/catatin/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *int64
	Limit      int
	Offset     int
}

// Storage defines the contract for our persistence layer. All operations are
// scoped by owner: a user can only touch their own rows, plus reads of the
// shared system categories.
type Storage interface {
	// Category operations
	ListCategories(ctx context.Context, ownerID string) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, ownerID, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int64, ownerID string) (*model.Category, error)
	CreateCategory(ctx context.Context, ownerID, name, icon, color string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64, ownerID string) error

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	CreateExpenses(ctx context.Context, ownerID string, expenses []model.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64, ownerID string) (*model.Expense, error)
	ListExpenses(ctx context.Context, ownerID string, filter ExpenseFilter) ([]model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, id int64, ownerID string) error

	// Dashboard aggregation
	GetDashboard(ctx context.Context, ownerID string, now time.Time) (*DashboardSummary, error)

	AuditSink

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a transactional view of the store used by the commit gateway: the
// whole batch, category creation included, commits or rolls back as one.
type Tx interface {
	GetCategoryByName(ctx context.Context, ownerID, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, ownerID, name, icon, color string) (*model.Category, error)
	CreateExpenses(ctx context.Context, ownerID string, expenses []model.Expense) (int64, error)
	Commit() error
	Rollback() error
}

// AuditSink records extraction attempts for later inspection. Writes are
// best-effort: callers must not let a sink failure block the primary path.
type AuditSink interface {
	RecordParsingAttempt(ctx context.Context, attempt *model.ParsingAttempt) error
	ListParsingAttempts(ctx context.Context, ownerID string, limit int) ([]model.ParsingAttempt, error)
}

// DashboardSummary aggregates a user's spending for the dashboard view.
type DashboardSummary struct {
	ByCategory []CategoryTotal
	Recent     []model.Expense
	MonthTotal int64
	TodayTotal int64
	MonthCount int64
}

// CategoryTotal is one slice of the per-category breakdown.
type CategoryTotal struct {
	Name       string
	Color      string
	CategoryID *int64
	Total      int64
	Count      int64
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
