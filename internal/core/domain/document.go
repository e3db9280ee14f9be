package domain

import "time"

type TextStatus string

const (
	TextStatusPending   TextStatus = "pending"
	TextStatusExtracted TextStatus = "extracted"
	TextStatusFailed    TextStatus = "failed"
)

// StructuredExtract is the semi-structured record a prior extraction pass may
// have attached to a document. All fields are optional; the signal extractor
// prefers these over raw-text pattern matching when present.
type StructuredExtract struct {
	Parties          []string          `json:"parties,omitempty"`
	OffenceDate      string            `json:"offence_date,omitempty"`
	ChargeSheet      string            `json:"charge_sheet,omitempty"`
	InterviewSummary string            `json:"interview_summary,omitempty"`
	CustodyRecord    string            `json:"custody_record,omitempty"`
	DisclosureItems  []string          `json:"disclosure_items,omitempty"`
	Meta             map[string]string `json:"meta,omitempty"`
}

// Document is an immutable input to the engine: owned by the case, read here,
// never written back except for text backfill.
type Document struct {
	ID          string             `json:"id"`
	CaseID      string             `json:"case_id"`
	Name        string             `json:"name"`
	MimeType    string             `json:"mime_type"`
	StoragePath string             `json:"storage_path,omitempty"`
	RawText     string             `json:"raw_text,omitempty"`
	Structured  *StructuredExtract `json:"structured,omitempty"`
	TextStatus  TextStatus         `json:"text_status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DocumentDiagnostics summarizes extraction quality across a case's document
// set. It feeds the analysis guard and is echoed back to callers on denial.
type DocumentDiagnostics struct {
	DocumentCount    int  `json:"document_count"`
	TotalRawChars    int  `json:"total_raw_chars"`
	AvgRawChars      int  `json:"avg_raw_chars"`
	SuspectedScanned bool `json:"suspected_scanned"`
}

// Diagnose computes extraction-quality diagnostics for a document set.
// A set with stored blobs but almost no extracted text is flagged as
// suspected scanned (no OCR layer).
func Diagnose(docs []Document) DocumentDiagnostics {
	diag := DocumentDiagnostics{DocumentCount: len(docs)}
	hasBlob := false
	for _, doc := range docs {
		diag.TotalRawChars += len(doc.RawText)
		if doc.StoragePath != "" {
			hasBlob = true
		}
	}
	if diag.DocumentCount > 0 {
		diag.AvgRawChars = diag.TotalRawChars / diag.DocumentCount
	}
	diag.SuspectedScanned = hasBlob && diag.DocumentCount > 0 && diag.AvgRawChars < SuspectedScannedAvgChars
	return diag
}
