package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
)

// ProcessAnalysisUseCase is the worker-side pipeline: after a document-set
// change it backfills missing text, recomputes the analysis and persists an
// immutable run.
type ProcessAnalysisUseCase struct {
	caseRepo  ports.CaseRepository
	docRepo   ports.DocumentRepository
	extractor ports.TextExtractor
	strategy  *StrategyUseCase
	runStore  ports.AnalysisRunStore
	logger    *slog.Logger
}

func NewProcessAnalysisUseCase(
	caseRepo ports.CaseRepository,
	docRepo ports.DocumentRepository,
	extractor ports.TextExtractor,
	strategy *StrategyUseCase,
	runStore ports.AnalysisRunStore,
	logger *slog.Logger,
) *ProcessAnalysisUseCase {
	return &ProcessAnalysisUseCase{
		caseRepo:  caseRepo,
		docRepo:   docRepo,
		extractor: extractor,
		strategy:  strategy,
		runStore:  runStore,
		logger:    logger,
	}
}

func (uc *ProcessAnalysisUseCase) ProcessCase(ctx context.Context, orgID, caseID string) error {
	caseFile, err := uc.caseRepo.GetCase(ctx, orgID, caseID)
	if err != nil {
		return fmt.Errorf("fetch case: %w", err)
	}

	docs, err := uc.backfillText(ctx, caseID)
	if err != nil {
		return err
	}

	admission := CheckAdmission(domain.Diagnose(docs))
	if !admission.CanGenerateAnalysis {
		// Not a failure: the gate will be re-evaluated when more documents
		// arrive. No run is recorded for denied sets.
		uc.logger.Info("analysis_gate_denied",
			"case_id", caseID,
			"document_count", admission.Diagnostics.DocumentCount,
			"total_raw_chars", admission.Diagnostics.TotalRawChars,
		)
		return nil
	}

	report, err := uc.strategy.derive(ctx, caseFile, docs)
	if err != nil {
		return fmt.Errorf("derive strategy: %w", err)
	}

	extraction := ExtractSignals(docs)
	coverage := ScoreCompleteness(extraction.Items, len(docs))

	run := &domain.AnalysisRun{
		ID:             uuid.NewString(),
		CaseID:         caseID,
		OrgID:          orgID,
		Fingerprint:    domain.FingerprintDocuments(docs),
		Score:          coverage.Score,
		CapabilityTier: coverage.CapabilityTier,
		Report:         report,
		CreatedAt:      time.Now().UTC(),
	}
	if err := uc.runStore.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save analysis run: %w", err)
	}

	uc.logger.Info("analysis_run_saved",
		"case_id", caseID,
		"run_id", run.ID,
		"score", run.Score,
		"tier", string(run.CapabilityTier),
		"angles", len(report.Angles),
		"source", string(report.Source),
	)
	return nil
}

// backfillText extracts text for documents that still have a pending blob,
// then re-reads the set so analysis always sees current text.
func (uc *ProcessAnalysisUseCase) backfillText(ctx context.Context, caseID string) ([]domain.Document, error) {
	docs, err := uc.docRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case documents: %w", err)
	}

	changed := false
	for i := range docs {
		doc := &docs[i]
		if doc.TextStatus != domain.TextStatusPending || doc.StoragePath == "" {
			continue
		}

		text, structured, err := uc.extractor.Extract(ctx, doc)
		if err != nil {
			uc.logger.Warn("text_backfill_failed", "document_id", doc.ID, "error", err)
			if err := uc.docRepo.UpdateText(ctx, doc.ID, "", nil, domain.TextStatusFailed); err != nil {
				return nil, fmt.Errorf("mark text backfill failed: %w", err)
			}
			continue
		}
		if err := uc.docRepo.UpdateText(ctx, doc.ID, text, structured, domain.TextStatusExtracted); err != nil {
			return nil, fmt.Errorf("store backfilled text: %w", err)
		}
		changed = true
	}

	if !changed {
		return docs, nil
	}
	docs, err = uc.docRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("reload case documents: %w", err)
	}
	return docs, nil
}
