package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) ListByCase(ctx context.Context, caseID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, case_id, name, mime_type, storage_path, raw_text, structured, text_status, created_at, updated_at
FROM documents
WHERE case_id = $1
ORDER BY created_at, id
`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) UpdateText(ctx context.Context, id string, text string, structured *domain.StructuredExtract, status domain.TextStatus) error {
	structuredJSON, err := marshalStructured(structured)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET raw_text = $2, structured = $3, text_status = $4, updated_at = $5
WHERE id = $1
`, id, text, structuredJSON, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document text: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document text rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document text", sql.ErrNoRows)
	}
	return nil
}

type documentScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row documentScanner) (domain.Document, error) {
	var doc domain.Document
	var storagePath, rawText sql.NullString
	var structuredRaw []byte
	var status string

	err := row.Scan(
		&doc.ID,
		&doc.CaseID,
		&doc.Name,
		&doc.MimeType,
		&storagePath,
		&rawText,
		&structuredRaw,
		&status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, fmt.Errorf("scan document: %w", err)
	}

	doc.StoragePath = storagePath.String
	doc.RawText = rawText.String
	doc.TextStatus = domain.TextStatus(status)
	if len(structuredRaw) > 0 {
		var structured domain.StructuredExtract
		if err := json.Unmarshal(structuredRaw, &structured); err != nil {
			return domain.Document{}, fmt.Errorf("unmarshal structured extract: %w", err)
		}
		doc.Structured = &structured
	}
	return doc, nil
}

func marshalStructured(s *domain.StructuredExtract) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal structured extract: %w", err)
	}
	return raw, nil
}
