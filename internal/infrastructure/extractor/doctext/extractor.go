package doctext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
)

// Extractor backfills raw text for documents that arrived as blobs. PDF and
// spreadsheet bundles get format-aware extraction; everything else is treated
// as plain text when it decodes as UTF-8.
type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, *domain.StructuredExtract, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("read source document: %w", err)
	}

	switch kind(doc) {
	case "pdf":
		text, err := extractPDF(raw)
		if err != nil {
			return "", nil, fmt.Errorf("extract pdf %s: %w", doc.Name, err)
		}
		return text, nil, nil
	case "xlsx":
		return extractSpreadsheet(doc.Name, raw)
	default:
		if !utf8.Valid(raw) {
			return "", nil, fmt.Errorf("unsupported binary format: %s", doc.Name)
		}
		return strings.TrimSpace(string(raw)), nil, nil
	}
}

func kind(doc *domain.Document) string {
	switch doc.MimeType {
	case "application/pdf":
		return "pdf"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	}
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return "pdf"
	case ".xlsx":
		return "xlsx"
	}
	return "text"
}

func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("get plain text: %w", err)
	}
	var out strings.Builder
	if _, err := io.Copy(&out, plain); err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// extractSpreadsheet flattens the sheets to text and keeps the first column
// as disclosure items: unused-material schedules arrive as spreadsheets with
// one item per row.
func extractSpreadsheet(name string, raw []byte) (string, *domain.StructuredExtract, error) {
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", nil, fmt.Errorf("open spreadsheet %s: %w", name, err)
	}
	defer book.Close()

	var out strings.Builder
	items := make([]string, 0)
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			out.WriteString(line)
			out.WriteString("\n")
			if first := strings.TrimSpace(row[0]); first != "" {
				items = append(items, first)
			}
		}
	}

	var structured *domain.StructuredExtract
	if len(items) > 0 {
		structured = &domain.StructuredExtract{DisclosureItems: items}
	}
	return strings.TrimSpace(out.String()), structured, nil
}
