package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/camdenlaw/casecore/internal/core/catalogue"
	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
)

// FallbackAnalysisName keys cached fallback results; bump only when the
// fallback's output shape changes incompatibly.
const FallbackAnalysisName = "strategy_fallback_v1"

// Unrecognized angle tags from the model collapse to this catalogue entry.
const fallbackDefaultAngleType = domain.AngleEvidenceGap

// GenerativeFallback produces a strategy report from a generative pass when
// deterministic derivation found nothing. Results are memoized by document
// set fingerprint so repeated requests are idempotent and cost-bounded.
type GenerativeFallback struct {
	redactor ports.Redactor
	cache    ports.AnalysisCache
	inferrer ports.AngleInferrer
	cat      *catalogue.Catalogue
	meter    ports.AnalysisMeter
	logger   *slog.Logger
}

func NewGenerativeFallback(
	redactor ports.Redactor,
	cache ports.AnalysisCache,
	inferrer ports.AngleInferrer,
	cat *catalogue.Catalogue,
	meter ports.AnalysisMeter,
	logger *slog.Logger,
) *GenerativeFallback {
	return &GenerativeFallback{
		redactor: redactor,
		cache:    cache,
		inferrer: inferrer,
		cat:      cat,
		meter:    meter,
		logger:   logger,
	}
}

// Run executes the cache-wrapped generative pass. A cache hit is returned
// verbatim: no re-ranking and no re-gating beyond what was cached. Inference
// failure degrades to an empty-but-valid report, never an error.
func (f *GenerativeFallback) Run(
	ctx context.Context,
	caseFile *domain.CaseFile,
	docs []domain.Document,
	coverage domain.BundleCompleteness,
	gate domain.GateDecision,
) (*domain.StrategyReport, error) {
	key := domain.CacheKey{
		OrgID:        caseFile.OrgID,
		CaseID:       caseFile.ID,
		Fingerprint:  domain.FingerprintDocuments(docs),
		AnalysisName: FallbackAnalysisName,
	}

	if cached, ok, err := f.cache.Get(ctx, key); err != nil {
		// A broken cache degrades to a miss; it is never a source of truth.
		f.logger.Warn("fallback_cache_get_failed", "case_id", caseFile.ID, "error", err)
	} else if ok {
		f.recordCacheLookup(true)
		return cached, nil
	}
	f.recordCacheLookup(false)

	redacted := f.redactDocuments(docs)
	inferred, err := f.inferrer.InferAngles(ctx, caseFile.Category, redacted)
	if err != nil {
		f.logger.Warn("generative_pass_failed", "case_id", caseFile.ID, "error", err)
		report := f.emptyReport(caseFile, len(docs))
		f.recordFallbackRun(report)
		return report, nil
	}

	report := f.anchorToCatalogue(caseFile, inferred, coverage, gate)
	report.DocumentCount = len(docs)
	f.recordFallbackRun(report)

	if err := f.cache.Set(ctx, key, report); err != nil {
		f.logger.Warn("fallback_cache_set_failed", "case_id", caseFile.ID, "error", err)
	}
	return report, nil
}

func (f *GenerativeFallback) recordCacheLookup(hit bool) {
	if f.meter != nil {
		f.meter.RecordCacheLookup(hit)
	}
}

func (f *GenerativeFallback) recordFallbackRun(report *domain.StrategyReport) {
	if f.meter != nil {
		f.meter.RecordFallbackRun(string(report.Source))
	}
}

func (f *GenerativeFallback) redactDocuments(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		copied := doc
		copied.RawText = f.redactor.Redact(doc.RawText)
		out[i] = copied
	}
	return out
}

// anchorToCatalogue validates untrusted model output against the closed
// catalogue. Unknown tags collapse to the documented default; nothing is
// ever invented outside the catalogue.
func (f *GenerativeFallback) anchorToCatalogue(
	caseFile *domain.CaseFile,
	inferred []domain.InferredAngle,
	coverage domain.BundleCompleteness,
	gate domain.GateDecision,
) *domain.StrategyReport {
	report := &domain.StrategyReport{
		CaseID:           caseFile.ID,
		Category:         caseFile.Category,
		CatalogueVersion: f.cat.Version,
		Source:           domain.StrategySourceGenerative,
		Angles:           []domain.StrategyAngle{},
		Loopholes:        []domain.Loophole{},
	}

	seen := make(map[domain.AngleType]struct{})
	for _, raw := range inferred {
		angleType := domain.AngleType(strings.TrimSpace(strings.ToLower(raw.AngleType)))
		if !f.cat.IsKnownAngleType(angleType) {
			f.logger.Debug("fallback_unknown_angle_collapsed",
				"case_id", caseFile.ID, "raw_type", raw.AngleType)
			angleType = fallbackDefaultAngleType
		}
		if _, dup := seen[angleType]; dup {
			continue
		}
		seen[angleType] = struct{}{}

		spec, ok := f.cat.AngleSpecFor(angleType)
		if !ok {
			// The default type is always catalogued; reaching here means the
			// catalogue itself is broken.
			f.logger.Error("fallback_default_angle_missing", "angle_type", angleType)
			continue
		}

		angle := buildAngle(spec, coverage, gate)
		if title := strings.TrimSpace(raw.Title); title != "" {
			angle.Title = title
		}
		report.Angles = append(report.Angles, angle)
		report.Loopholes = append(report.Loopholes, projectLoophole(f.cat, angleType, angle))
	}

	if len(report.Angles) == 0 {
		report.Source = domain.StrategySourceEmpty
	}
	return report
}

func (f *GenerativeFallback) emptyReport(caseFile *domain.CaseFile, documentCount int) *domain.StrategyReport {
	return &domain.StrategyReport{
		CaseID:           caseFile.ID,
		Category:         caseFile.Category,
		CatalogueVersion: f.cat.Version,
		Source:           domain.StrategySourceEmpty,
		Angles:           []domain.StrategyAngle{},
		Loopholes:        []domain.Loophole{},
		DocumentCount:    documentCount,
	}
}
