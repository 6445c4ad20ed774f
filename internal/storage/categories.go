package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
)

// ListCategories returns the user's own categories plus the shared system
// set, system rows first, each group alphabetical.
func (s *SQLiteStorage) ListCategories(ctx context.Context, ownerID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, icon, color, created_at
		 FROM categories
		 WHERE owner_id IN (?, ?)
		 ORDER BY CASE owner_id WHEN ? THEN 0 ELSE 1 END, name COLLATE NOCASE`,
		ownerID, model.SystemOwnerID, model.SystemOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if scanErr := rows.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.Icon, &cat.Color, &cat.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetCategoryByName finds a category by case-insensitive name. The user's own
// category wins over a same-named system one.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, ownerID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, s.db, ownerID, name)
}

// GetCategoryByID fetches a category visible to the given owner.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64, ownerID string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, icon, color, created_at
		 FROM categories
		 WHERE id = ? AND owner_id IN (?, ?)`,
		id, ownerID, model.SystemOwnerID)
	return scanCategory(row)
}

// CreateCategory inserts a category owned by ownerID.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, ownerID, name, icon, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCategory(ctx, s.db, ownerID, name, icon, color)
}

// DeleteCategory removes one of the user's own categories. System categories
// cannot be deleted; expenses referencing the category keep their rows and
// lose the reference via ON DELETE SET NULL.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64, ownerID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if ownerID == model.SystemOwnerID {
		return fmt.Errorf("system categories cannot be deleted")
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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

func (t *sqliteTx) GetCategoryByName(ctx context.Context, ownerID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, t.tx, ownerID, name)
}

func (t *sqliteTx) CreateCategory(ctx context.Context, ownerID, name, icon, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCategory(ctx, t.tx, ownerID, name, icon, color)
}

func getCategoryByName(ctx context.Context, db execer, ownerID, name string) (*model.Category, error) {
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, icon, color, created_at
		 FROM categories
		 WHERE name = ? COLLATE NOCASE AND owner_id IN (?, ?)
		 ORDER BY CASE owner_id WHEN ? THEN 0 ELSE 1 END
		 LIMIT 1`,
		name, ownerID, model.SystemOwnerID, ownerID)
	return scanCategory(row)
}

func createCategory(ctx context.Context, db execer, ownerID, name, icon, color string) (*model.Category, error) {
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if icon == "" {
		icon = model.DefaultCategoryIcon
	}
	if color == "" {
		color = model.FallbackColor(name)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, icon, color) VALUES (?, ?, ?, ?)`,
		ownerID, name, icon, color)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, icon, color, created_at FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func scanCategory(row *sql.Row) (*model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.Icon, &cat.Color, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return &cat, nil
}
