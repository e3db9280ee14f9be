package ports

import (
	"context"
	"io"
	"time"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// CaseRepository reads case metadata scoped by organization.
type CaseRepository interface {
	GetCase(ctx context.Context, orgID, caseID string) (*domain.CaseFile, error)
	ListCharges(ctx context.Context, caseID string) ([]domain.Charge, error)
	ListHearings(ctx context.Context, caseID string) ([]domain.Hearing, error)
}

// DocumentRepository reads and backfills case documents.
type DocumentRepository interface {
	ListByCase(ctx context.Context, caseID string) ([]domain.Document, error)
	UpdateText(ctx context.Context, id string, rawText string, structured *domain.StructuredExtract, status domain.TextStatus) error
}

// AnalysisRunStore persists immutable precomputed analysis runs.
// LatestRun returns (nil, nil) when the case has no runs yet.
type AnalysisRunStore interface {
	SaveRun(ctx context.Context, run *domain.AnalysisRun) error
	LatestRun(ctx context.Context, caseID string) (*domain.AnalysisRun, error)
}

// AnalysisCache memoizes generative fallback results. Get returns ok=false
// on miss; the cache is a memoization layer, never a source of truth.
type AnalysisCache interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.StrategyReport, bool, error)
	Set(ctx context.Context, key domain.CacheKey, report *domain.StrategyReport) error
}

// Redactor strips sensitive identifiers before any external generative call.
type Redactor interface {
	Redact(text string) string
}

// AngleInferrer is the generative reasoning collaborator. Output is opaque
// and unvalidated; the fallback usecase re-anchors it onto the closed
// catalogue.
type AngleInferrer interface {
	InferAngles(ctx context.Context, category domain.CaseCategory, docs []domain.Document) ([]domain.InferredAngle, error)
}

// ObjectStorage stores source document blobs for text backfill.
type ObjectStorage interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries document-set change events to the analysis worker.
// publishedAt is the sender's timestamp; subscribers use it to measure
// queue lag.
type MessageQueue interface {
	PublishDocumentsUpdated(ctx context.Context, orgID, caseID string) error
	SubscribeDocumentsUpdated(ctx context.Context, handler func(ctx context.Context, orgID, caseID string, publishedAt time.Time) error) error
}

// AnalysisMeter receives engine-side measurement events. A nil meter is
// valid and disables recording.
type AnalysisMeter interface {
	RecordCacheLookup(hit bool)
	RecordFallbackRun(source string)
}

// TextExtractor extracts text and any structured record from a stored blob.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, *domain.StructuredExtract, error)
}
