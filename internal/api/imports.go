package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Veraticus/expense-queue/internal/model"
)

// UploadImport sends one bank export file to the import pipeline.
func (c *Client) UploadImport(ctx context.Context, filename string, r io.Reader) (model.ImportResult, error) {
	var result model.ImportResult

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return result, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return result, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return result, fmt.Errorf("failed to finish upload body: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, "/api/import/xlsx", nil, &buf, mw.FormDataContentType(), &result); err != nil {
		return result, fmt.Errorf("failed to upload %s: %w", filepath.Base(filename), err)
	}
	return result, nil
}

// UploadTickets sends receipt photos. Each file is read from disk.
func (c *Client) UploadTickets(ctx context.Context, paths []string) (model.TicketUpload, error) {
	var result model.TicketUpload

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, path := range paths {
		if err := addFormFile(mw, "files", path); err != nil {
			return result, err
		}
	}
	if err := mw.Close(); err != nil {
		return result, fmt.Errorf("failed to finish upload body: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, "/api/upload-tickets", nil, &buf, mw.FormDataContentType(), &result); err != nil {
		return result, fmt.Errorf("failed to upload tickets: %w", err)
	}
	return result, nil
}

func addFormFile(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// ImportHistory lists previous imports, newest first.
func (c *Client) ImportHistory(ctx context.Context) ([]model.ImportRecord, error) {
	var records []model.ImportRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/import/history", nil, nil, &records); err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}
	return records, nil
}

// ProcessImports parses pending uploads into queue items.
func (c *Client) ProcessImports(ctx context.Context) (model.ImportResult, error) {
	var result model.ImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/import/process", nil, nil, &result); err != nil {
		return result, fmt.Errorf("failed to process imports: %w", err)
	}
	return result, nil
}

// ProcessAllImports reprocesses every stored upload.
func (c *Client) ProcessAllImports(ctx context.Context) (model.ImportResult, error) {
	var result model.ImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/import/process-all", nil, nil, &result); err != nil {
		return result, fmt.Errorf("failed to process all imports: %w", err)
	}
	return result, nil
}
