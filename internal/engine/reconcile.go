package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

// Reconciler maps free-text category labels onto stored categories. Matching
// is case-insensitive; a user's own category shadows a system category with
// the same name.
type Reconciler struct {
	store service.Storage
}

// NewReconciler creates a reconciler backed by the given store.
func NewReconciler(store service.Storage) *Reconciler {
	return &Reconciler{store: store}
}

// ResolveHints fills CategoryID on candidates whose label matches an existing
// category. Unmatched labels are left alone; they become new categories at
// commit time. The candidate slice is mutated in place.
func (r *Reconciler) ResolveHints(ctx context.Context, ownerID string, candidates []model.ExpenseCandidate) error {
	if len(candidates) == 0 {
		return nil
	}

	index, err := r.categoryIndex(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	for i := range candidates {
		label := strings.ToLower(strings.TrimSpace(candidates[i].CategoryLabel))
		if label == "" {
			continue
		}
		if cat, ok := index[label]; ok {
			id := cat.ID
			candidates[i].CategoryID = &id
		}
	}
	return nil
}

// categoryIndex builds a lowercased-name lookup table. System categories go
// in first so user categories overwrite on name collision.
func (r *Reconciler) categoryIndex(ctx context.Context, ownerID string) (map[string]model.Category, error) {
	categories, err := r.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		if cat.IsSystem() {
			index[strings.ToLower(cat.Name)] = cat
		}
	}
	for _, cat := range categories {
		if !cat.IsSystem() {
			index[strings.ToLower(cat.Name)] = cat
		}
	}
	return index, nil
}

// EnsureCategories resolves every label to a category ID inside the given
// transaction, creating missing ones as user categories. Labels are matched
// case-insensitively and each distinct label is handled once per batch, so a
// batch with five "Makanan" rows never creates more than one category.
func EnsureCategories(ctx context.Context, tx service.Tx, ownerID string, labels []string) (map[string]int64, error) {
	resolved := make(map[string]int64, len(labels))

	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, done := resolved[key]; done {
			continue
		}

		cat, err := tx.GetCategoryByName(ctx, ownerID, trimmed)
		if err == nil {
			resolved[key] = cat.ID
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("looking up category %q: %w", trimmed, err)
		}

		created, err := tx.CreateCategory(ctx, ownerID, trimmed, model.DefaultCategoryIcon, model.FallbackColor(trimmed))
		if err != nil {
			// A concurrent writer may have created it between lookup and
			// insert; fall back to a second lookup.
			if errors.Is(err, common.ErrDuplicateEntry) {
				cat, lookupErr := tx.GetCategoryByName(ctx, ownerID, trimmed)
				if lookupErr != nil {
					return nil, fmt.Errorf("refetching category %q: %w", trimmed, lookupErr)
				}
				resolved[key] = cat.ID
				continue
			}
			return nil, fmt.Errorf("creating category %q: %w", trimmed, err)
		}
		resolved[key] = created.ID
	}

	return resolved, nil
}
