package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
)

// Capability tier thresholds over the 0..100 coverage score.
const (
	tierFullFloor    = 75
	tierPartialFloor = 40
)

// Named completeness flags.
const (
	FlagNoDocuments          = "no_documents"
	FlagNoDisclosureSchedule = "no_disclosure_schedule"
	FlagInterviewUnreviewed  = "interview_unreviewed"
	FlagForensicsUnconfirmed = "forensics_unconfirmed"
)

// ScoreCompleteness aggregates evidence item statuses into the bounded
// coverage record. Unknown items count in the denominator but never toward
// the score, so an undocumented category cannot push a case over a tier
// threshold.
func ScoreCompleteness(items []domain.EvidenceItem, documentCount int) domain.BundleCompleteness {
	var present, partial int
	for _, item := range items {
		switch item.Status {
		case domain.EvidencePresent:
			present++
		case domain.EvidencePartial:
			partial++
		}
	}

	score := 0
	if len(items) > 0 {
		score = int(math.Round(100 * float64(present+partial) / float64(len(items))))
	}

	out := domain.BundleCompleteness{
		Score:          score,
		CapabilityTier: tierFor(score),
	}
	if documentCount == 0 {
		out.Flags = append(out.Flags, FlagNoDocuments)
	}
	for _, item := range items {
		switch {
		case item.Category == domain.EvidenceDisclosureSchedule && item.Status == domain.EvidenceMissing:
			out.Flags = append(out.Flags, FlagNoDisclosureSchedule)
		case item.Category == domain.EvidenceInterviewRecord && item.Status == domain.EvidencePartial:
			out.Flags = append(out.Flags, FlagInterviewUnreviewed)
		case item.Category == domain.EvidenceForensics && item.Status == domain.EvidenceUnknown:
			out.Flags = append(out.Flags, FlagForensicsUnconfirmed)
		}
	}
	return out
}

func tierFor(score int) domain.CapabilityTier {
	switch {
	case score >= tierFullFloor:
		return domain.TierFull
	case score >= tierPartialFloor:
		return domain.TierPartial
	default:
		return domain.TierThin
	}
}

// CoverageUseCase exposes coverage computation over a stored case.
type CoverageUseCase struct {
	caseRepo ports.CaseRepository
	docRepo  ports.DocumentRepository
}

func NewCoverageUseCase(caseRepo ports.CaseRepository, docRepo ports.DocumentRepository) *CoverageUseCase {
	return &CoverageUseCase{caseRepo: caseRepo, docRepo: docRepo}
}

func (uc *CoverageUseCase) ComputeCoverage(ctx context.Context, orgID, caseID string) ([]domain.EvidenceItem, domain.BundleCompleteness, error) {
	if _, err := uc.caseRepo.GetCase(ctx, orgID, caseID); err != nil {
		return nil, domain.BundleCompleteness{}, fmt.Errorf("fetch case: %w", err)
	}
	docs, err := uc.docRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, domain.BundleCompleteness{}, fmt.Errorf("list case documents: %w", err)
	}

	extraction := ExtractSignals(docs)
	return extraction.Items, ScoreCompleteness(extraction.Items, len(docs)), nil
}
