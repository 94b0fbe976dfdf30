package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 5

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Catalog: categories, merchant aliases and tags",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					parent_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					color TEXT,
					icon TEXT,
					category_type TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE merchant_aliases (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					raw_name TEXT NOT NULL,
					display_name TEXT UNIQUE NOT NULL,
					default_category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_merchant_aliases_raw_name ON merchant_aliases(raw_name)`,
				`CREATE TABLE tags (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					color TEXT
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Raw expenses, expenses and expense tags",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE raw_expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					transaction_date TEXT NOT NULL,
					amount TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'GBP',
					raw_merchant_name TEXT,
					raw_description TEXT,
					source TEXT NOT NULL,
					source_file TEXT,
					merchant_alias_id INTEGER REFERENCES merchant_aliases(id) ON DELETE SET NULL,
					category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					type TEXT CHECK(type IN ('fixed', 'necessary variable', 'discretionary')),
					description TEXT,
					tags TEXT NOT NULL DEFAULT '[]',
					archived INTEGER NOT NULL DEFAULT 0,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_raw_expenses_date ON raw_expenses(transaction_date)`,
				`CREATE TABLE expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					raw_expense_id INTEGER UNIQUE REFERENCES raw_expenses(id) ON DELETE SET NULL,
					transaction_date TEXT NOT NULL,
					amount TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'GBP',
					merchant_alias_id INTEGER REFERENCES merchant_aliases(id) ON DELETE SET NULL,
					category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					description TEXT,
					notes TEXT,
					type TEXT CHECK(type IN ('fixed', 'necessary variable', 'discretionary')),
					archived INTEGER NOT NULL DEFAULT 0,
					processed_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expenses_date ON expenses(transaction_date)`,
				`CREATE INDEX idx_expenses_category ON expenses(category_id)`,
				`CREATE TABLE expense_tags (
					expense_id INTEGER NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
					tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
					PRIMARY KEY (expense_id, tag_id)
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Queue rules",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					field TEXT NOT NULL,
					match_type TEXT NOT NULL,
					match_value TEXT NOT NULL,
					action TEXT NOT NULL,
					save_data TEXT,
					active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     4,
		Description: "Import history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE import_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					filename TEXT NOT NULL,
					status TEXT NOT NULL,
					records_imported INTEGER NOT NULL DEFAULT 0,
					records_skipped INTEGER NOT NULL DEFAULT 0,
					error_message TEXT,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     5,
		Description: "Periodic expenses and ticket uploads",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE periodic_expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE tickets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					filename TEXT NOT NULL,
					size INTEGER NOT NULL,
					uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
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

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}
	return nil
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
