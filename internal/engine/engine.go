// Package engine wires extraction, category reconciliation, and persistence
// into the two operations the rest of the app calls: Parse and Commit.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

// Extractor is the part of the extraction pipeline the engine needs.
type Extractor interface {
	Extract(ctx context.Context, ownerID, text string, now time.Time) ([]model.ExpenseCandidate, error)
}

// Engine is the application core behind both the HTTP API and the TUI.
type Engine struct {
	extractor  Extractor
	store      service.Storage
	reconciler *Reconciler
	logger     *slog.Logger
}

// New creates an engine.
func New(extractor Extractor, store service.Storage, logger *slog.Logger) *Engine {
	return &Engine{
		extractor:  extractor,
		store:      store,
		reconciler: NewReconciler(store),
		logger:     logger,
	}
}

// Store exposes the underlying storage for read paths that need no
// orchestration (listing, dashboard, export).
func (e *Engine) Store() service.Storage { return e.store }

// Parse extracts candidates from text and annotates each with the ID of any
// existing category its label matches. Hint resolution is best-effort: a
// lookup failure degrades to unhinted candidates rather than failing the
// parse.
func (e *Engine) Parse(ctx context.Context, ownerID, text string, now time.Time) ([]model.ExpenseCandidate, error) {
	candidates, err := e.extractor.Extract(ctx, ownerID, text, now)
	if err != nil {
		return nil, err
	}

	if err := e.reconciler.ResolveHints(ctx, ownerID, candidates); err != nil {
		e.logger.Warn("category hint resolution failed", "owner_id", ownerID, "error", err)
	}

	return candidates, nil
}

// Commit validates the candidates and persists them as one atomic batch:
// missing categories are created, every row is inserted, and the whole thing
// commits or rolls back together. Returns the number of expenses written.
func (e *Engine) Commit(ctx context.Context, ownerID string, candidates []model.ExpenseCandidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: no candidates to commit", common.ErrValidationFailed)
	}
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			return 0, fmt.Errorf("%w: row %d: %v", common.ErrValidationFailed, i+1, err)
		}
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", common.ErrCommitFailed, err)
	}
	defer tx.Rollback()

	labels := make([]string, 0, len(candidates))
	for _, c := range candidates {
		labels = append(labels, c.CategoryLabel)
	}
	categoryIDs, err := EnsureCategories(ctx, tx, ownerID, labels)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrCommitFailed, err)
	}

	now := time.Now()
	expenses := make([]model.Expense, 0, len(candidates))
	for _, c := range candidates {
		date, dateErr := c.ExpenseDate()
		if dateErr != nil {
			return 0, fmt.Errorf("%w: %v", common.ErrValidationFailed, dateErr)
		}

		expense := model.Expense{
			OwnerID:     ownerID,
			Item:        c.Item,
			Amount:      c.Amount,
			Notes:       c.Notes,
			ExpenseDate: date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if id, ok := categoryIDs[strings.ToLower(strings.TrimSpace(c.CategoryLabel))]; ok {
			catID := id
			expense.CategoryID = &catID
		}
		expenses = append(expenses, expense)
	}

	count, err := tx.CreateExpenses(ctx, ownerID, expenses)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %v", common.ErrCommitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrCommitFailed, err)
	}

	e.logger.Info("committed expense batch",
		"owner_id", ownerID,
		"count", count,
		"categories", len(categoryIDs))

	return count, nil
}
