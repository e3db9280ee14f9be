package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/camdenlaw/casecore/internal/core/catalogue"
	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
)

// Deterministic probability bases per severity, adjusted by coverage before
// the gate decides whether they may be shown at all.
var severityProbabilityBase = map[domain.Severity]int{
	domain.SeverityCritical: 75,
	domain.SeverityHigh:     65,
	domain.SeverityMedium:   52,
	domain.SeverityLow:      40,
}

type StrategyUseCase struct {
	caseRepo ports.CaseRepository
	docRepo  ports.DocumentRepository
	cat      *catalogue.Catalogue
	fallback *GenerativeFallback
	logger   *slog.Logger
}

func NewStrategyUseCase(
	caseRepo ports.CaseRepository,
	docRepo ports.DocumentRepository,
	cat *catalogue.Catalogue,
	fallback *GenerativeFallback,
	logger *slog.Logger,
) *StrategyUseCase {
	return &StrategyUseCase{
		caseRepo: caseRepo,
		docRepo:  docRepo,
		cat:      cat,
		fallback: fallback,
		logger:   logger,
	}
}

// DeriveStrategy enumerates viable angles for a case. Denied admission is
// returned as *domain.AnalysisGateError; a failed generative fallback
// degrades to an empty-but-valid report.
func (uc *StrategyUseCase) DeriveStrategy(ctx context.Context, orgID, caseID string) (*domain.StrategyReport, error) {
	caseFile, err := uc.caseRepo.GetCase(ctx, orgID, caseID)
	if err != nil {
		return nil, fmt.Errorf("fetch case: %w", err)
	}
	docs, err := uc.docRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case documents: %w", err)
	}

	admission := CheckAdmission(domain.Diagnose(docs))
	if gateErr := admission.GateError(); gateErr != nil {
		return nil, gateErr
	}

	report, err := uc.derive(ctx, caseFile, docs)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// derive is the shared derivation path used by DeriveStrategy, the snapshot
// composer and the worker. It does not apply the analysis guard.
func (uc *StrategyUseCase) derive(ctx context.Context, caseFile *domain.CaseFile, docs []domain.Document) (*domain.StrategyReport, error) {
	extraction := ExtractSignals(docs)
	coverage := ScoreCompleteness(extraction.Items, len(docs))
	gate := DecideProbabilityGate(caseFile.PracticeArea, coverage, CriticalMissingCount(caseFile.PracticeArea, extraction))

	report := deriveDeterministic(uc.cat, caseFile, extraction, coverage, gate)
	report.DocumentCount = len(docs)
	if len(report.Angles) > 0 || len(docs) == 0 {
		return report, nil
	}

	// Zero viable angles with at least one document: generative fallback.
	fallbackReport, err := uc.fallback.Run(ctx, caseFile, docs, coverage, gate)
	if err != nil {
		return nil, fmt.Errorf("generative fallback: %w", err)
	}
	return fallbackReport, nil
}

// deriveDeterministic evaluates the closed catalogue against the extracted
// facts. Pure function; all randomness is confined to generated ids.
func deriveDeterministic(
	cat *catalogue.Catalogue,
	caseFile *domain.CaseFile,
	extraction Extraction,
	coverage domain.BundleCompleteness,
	gate domain.GateDecision,
) *domain.StrategyReport {
	category := caseFile.Category
	if category == "" {
		category = domain.CategoryOther
	}

	report := &domain.StrategyReport{
		CaseID:           caseFile.ID,
		Category:         category,
		CatalogueVersion: cat.Version,
		Source:           domain.StrategySourceDeterministic,
		Angles:           []domain.StrategyAngle{},
		Loopholes:        []domain.Loophole{},
	}

	for _, spec := range cat.Candidates(category) {
		if !requirementHolds(spec.Requires, extraction) {
			continue
		}
		angle := buildAngle(spec, coverage, gate)
		report.Angles = append(report.Angles, angle)
		report.Loopholes = append(report.Loopholes, projectLoophole(cat, spec.Type, angle))
	}

	if len(report.Angles) == 0 {
		report.Source = domain.StrategySourceEmpty
	}
	return report
}

func requirementHolds(req catalogue.Requirement, extraction Extraction) bool {
	if req.MinBreachSignals > 0 && len(extraction.BreachSignals) < req.MinBreachSignals {
		return false
	}
	if len(req.PresentAny) > 0 && !anyWithStatus(extraction, req.PresentAny, domain.EvidencePresent) {
		return false
	}
	if len(req.PartialAny) > 0 && !anyWithStatus(extraction, req.PartialAny, domain.EvidencePartial) {
		return false
	}
	if len(req.MissingAny) > 0 && !anyWithStatus(extraction, req.MissingAny, domain.EvidenceMissing) {
		return false
	}
	return true
}

func anyWithStatus(extraction Extraction, categories []domain.EvidenceCategory, status domain.EvidenceStatus) bool {
	for _, category := range categories {
		if extraction.StatusOf(category) == status {
			return true
		}
	}
	return false
}

func buildAngle(spec catalogue.AngleSpec, coverage domain.BundleCompleteness, gate domain.GateDecision) domain.StrategyAngle {
	severity := spec.Severity
	if coverage.CapabilityTier == domain.TierThin {
		severity = downgrade(severity)
	}

	angle := domain.StrategyAngle{
		ID:           uuid.NewString(),
		AngleType:    spec.Type,
		Title:        spec.Title,
		Severity:     severity,
		LegalBasis:   spec.LegalBasis,
		HowToExploit: spec.HowToExploit,
	}
	if gate.Show {
		p := estimateProbability(severity, coverage.Score)
		angle.WinProbability = &p
	}
	return angle
}

// estimateProbability maps declared severity and coverage onto a 0..100
// estimate. Called only after the gate allowed disclosure.
func estimateProbability(severity domain.Severity, coverageScore int) int {
	p := severityProbabilityBase[severity] + (coverageScore-50)/5
	if p < 5 {
		p = 5
	}
	if p > 95 {
		p = 95
	}
	return p
}

func downgrade(s domain.Severity) domain.Severity {
	switch s {
	case domain.SeverityCritical:
		return domain.SeverityHigh
	case domain.SeverityHigh:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func projectLoophole(cat *catalogue.Catalogue, angleType domain.AngleType, angle domain.StrategyAngle) domain.Loophole {
	return domain.Loophole{
		ID:             uuid.NewString(),
		Type:           cat.LoopholeTypeFor(angleType),
		Title:          angle.Title,
		Description:    angle.HowToExploit,
		Severity:       angle.Severity,
		WinProbability: angle.WinProbability,
		SourceAngleID:  angle.ID,
	}
}
