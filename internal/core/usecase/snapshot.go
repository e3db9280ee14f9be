package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/camdenlaw/casecore/internal/core/catalogue"
	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
)

// SnapshotUseCase composes the full case view-model. It is the only
// component with an external contract; everything upstream is recomputed per
// request.
type SnapshotUseCase struct {
	caseRepo ports.CaseRepository
	docRepo  ports.DocumentRepository
	runStore ports.AnalysisRunStore
	strategy *StrategyUseCase
	cat      *catalogue.Catalogue
	policy   RiskPolicy
}

func NewSnapshotUseCase(
	caseRepo ports.CaseRepository,
	docRepo ports.DocumentRepository,
	runStore ports.AnalysisRunStore,
	strategy *StrategyUseCase,
	cat *catalogue.Catalogue,
	policy RiskPolicy,
) *SnapshotUseCase {
	return &SnapshotUseCase{
		caseRepo: caseRepo,
		docRepo:  docRepo,
		runStore: runStore,
		strategy: strategy,
		cat:      cat,
		policy:   policy,
	}
}

// BuildSnapshot fans out the independent reads, recomputes coverage and
// admission, derives strategy where admitted, and applies the two-level
// visibility gate. Admission denial is represented inside the snapshot, not
// raised: the snapshot is the one place callers see both branches at once.
func (uc *SnapshotUseCase) BuildSnapshot(ctx context.Context, orgID, caseID string) (*domain.CaseSnapshot, error) {
	caseFile, err := uc.caseRepo.GetCase(ctx, orgID, caseID)
	if err != nil {
		return nil, fmt.Errorf("fetch case: %w", err)
	}

	var (
		charges  []domain.Charge
		hearings []domain.Hearing
		docs     []domain.Document
		priorRun *domain.AnalysisRun
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		charges, err = uc.caseRepo.ListCharges(groupCtx, caseID)
		if err != nil {
			return fmt.Errorf("list charges: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		hearings, err = uc.caseRepo.ListHearings(groupCtx, caseID)
		if err != nil {
			return fmt.Errorf("list hearings: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		docs, err = uc.docRepo.ListByCase(groupCtx, caseID)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		priorRun, err = uc.runStore.LatestRun(groupCtx, caseID)
		if err != nil {
			return fmt.Errorf("load latest analysis run: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	extraction := ExtractSignals(docs)
	coverage := ScoreCompleteness(extraction.Items, len(docs))
	admission := CheckAdmission(domain.Diagnose(docs))

	snapshot := &domain.CaseSnapshot{
		Case:          *caseFile,
		Charges:       charges,
		Hearings:      hearings,
		Documents:     summarizeDocuments(docs),
		Evidence:      extraction.Items,
		Coverage:      coverage,
		Admission:     admission,
		PriorRun:      priorRun,
		ConfidenceCap: 100,
	}

	var strategyReport *domain.StrategyReport
	if admission.CanGenerateAnalysis {
		strategyReport, err = uc.strategy.derive(ctx, caseFile, docs)
		if err != nil {
			return nil, fmt.Errorf("derive strategy: %w", err)
		}
	} else if priorRun != nil && priorRun.Report != nil {
		// Low extraction quality does not hide existing strategy data; it
		// caps the confidence displayed with it. Existence and confidence
		// are gated independently.
		strategyReport = priorRun.Report
		snapshot.ConfidenceCap = domain.LowExtractionConfidenceCap
	}
	snapshot.Strategy = strategyReport

	if strategyReport != nil {
		assessment := RankOptions(uc.cat, strategyReport.Category, strategyReport, uc.policy)
		snapshot.Options = &assessment
	}

	hasStrategyData := strategyReport != nil &&
		(len(strategyReport.Angles) > 0 || len(strategyReport.Loopholes) > 0)
	hasPrior := priorRun != nil && priorRun.Report != nil

	snapshot.CanShowPreview = (hasPrior || hasStrategyData) && caseFile.AnalysisMode.AtLeastPreview()
	snapshot.CanShowFull = hasStrategyData && caseFile.AnalysisMode.AtLeastPreview()

	return snapshot, nil
}

func summarizeDocuments(docs []domain.Document) []domain.DocumentSummary {
	out := make([]domain.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.DocumentSummary{
			ID:         doc.ID,
			Name:       doc.Name,
			MimeType:   doc.MimeType,
			TextStatus: doc.TextStatus,
			RawChars:   len(doc.RawText),
		})
	}
	return out
}
