package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/naufalhakim/catatin/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// seedCategory is one of the shared defaults every account starts with.
type seedCategory struct {
	name  string
	icon  string
	color string
}

// systemCategories are seeded once under the system owner and visible to all
// users until shadowed by a same-named user category.
var systemCategories = []seedCategory{
	{"Makanan", "restaurant", "#F97316"},
	{"Transportasi", "directions_car", "#3B82F6"},
	{"Belanja", "shopping_bag", "#EC4899"},
	{"Tagihan", "receipt_long", "#EF4444"},
	{"Hiburan", "movie", "#8B5CF6"},
	{"Kesehatan", "medical_services", "#10B981"},
	{"Pendidikan", "school", "#F59E0B"},
	{"Lainnya", "category", "#64748B"},
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL COLLATE NOCASE,
					icon TEXT NOT NULL DEFAULT 'payments',
					color TEXT NOT NULL DEFAULT '#64748B',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(owner_id, name)
				)`,
				`CREATE INDEX idx_categories_owner ON categories(owner_id)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id TEXT NOT NULL,
					item TEXT NOT NULL,
					amount INTEGER NOT NULL,
					category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					expense_date DATETIME NOT NULL,
					notes TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expenses_owner_date ON expenses(owner_id, expense_date)`,
				`CREATE INDEX idx_expenses_category ON expenses(category_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add parsing attempts audit log",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS parsing_attempts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					owner_id TEXT NOT NULL,
					input_text TEXT NOT NULL,
					raw_output TEXT NOT NULL DEFAULT '',
					success INTEGER NOT NULL DEFAULT 0,
					error_message TEXT NOT NULL DEFAULT '',
					duration_ms INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_parsing_attempts_owner ON parsing_attempts(owner_id, created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed system categories",
		Up: func(tx *sql.Tx) error {
			for _, cat := range systemCategories {
				_, err := tx.Exec(
					`INSERT INTO categories (owner_id, name, icon, color)
					 VALUES (?, ?, ?, ?)
					 ON CONFLICT(owner_id, name) DO NOTHING`,
					model.SystemOwnerID, cat.name, cat.icon, cat.color)
				if err != nil {
					return fmt.Errorf("failed to seed category %q: %w", cat.name, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
