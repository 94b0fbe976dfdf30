package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/expense-queue/internal/model"
)

// Import statuses.
const (
	ImportStatusSuccess = "success"
	ImportStatusFailed  = "failed"
)

// RecordImport appends an entry to the import history.
func (s *SQLiteStorage) RecordImport(ctx context.Context, record model.ImportRecord) (model.ImportRecord, error) {
	if err := validateContext(ctx); err != nil {
		return model.ImportRecord{}, err
	}
	if err := validateString(record.Filename, "filename"); err != nil {
		return model.ImportRecord{}, err
	}
	if record.Status == "" {
		record.Status = ImportStatusSuccess
	}
	if record.ImportedAt.IsZero() {
		record.ImportedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO import_history (filename, status, records_imported, records_skipped, error_message, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.Filename, record.Status, record.RecordsImported, record.RecordsSkipped,
		nullString(record.ErrorMessage), record.ImportedAt)
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("failed to record import: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.ImportRecord{}, fmt.Errorf("failed to get import ID: %w", err)
	}
	record.ID = int(id)
	return record, nil
}

// ListImports returns the import history, newest first.
func (s *SQLiteStorage) ListImports(ctx context.Context) ([]model.ImportRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, status, records_imported, records_skipped, error_message, imported_at
		FROM import_history
		ORDER BY imported_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.ImportRecord{}
	for rows.Next() {
		var (
			r      model.ImportRecord
			errMsg sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Filename, &r.Status, &r.RecordsImported, &r.RecordsSkipped, &errMsg, &r.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		r.ErrorMessage = errMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordTicket stores the metadata of an uploaded ticket photo and returns
// the timestamped name it is filed under.
func (s *SQLiteStorage) RecordTicket(ctx context.Context, filename string, size int64, now time.Time) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(filename, "filename"); err != nil {
		return "", err
	}
	stored := now.Format("20060102_150405") + "_" + filename
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (filename, size, uploaded_at) VALUES (?, ?, ?)`, stored, size, now); err != nil {
		return "", fmt.Errorf("failed to record ticket: %w", err)
	}
	return stored, nil
}

// CountTickets returns the number of stored ticket photos.
func (s *SQLiteStorage) CountTickets(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}
