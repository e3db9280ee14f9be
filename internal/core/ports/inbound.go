package ports

import (
	"context"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// CoverageService is the inbound contract for evidence coverage computation.
type CoverageService interface {
	ComputeCoverage(ctx context.Context, orgID, caseID string) ([]domain.EvidenceItem, domain.BundleCompleteness, error)
}

// StrategyService derives angles and loopholes for a case. Denied admission
// surfaces as *domain.AnalysisGateError, never a generic failure.
type StrategyService interface {
	DeriveStrategy(ctx context.Context, orgID, caseID string) (*domain.StrategyReport, error)
}

// OptionRanker filters and ranks the high-risk option catalogue.
type OptionRanker interface {
	RankOptions(ctx context.Context, orgID, caseID string) (*domain.OptionAssessment, error)
}

// SnapshotBuilder composes the full read model exposed to callers.
type SnapshotBuilder interface {
	BuildSnapshot(ctx context.Context, orgID, caseID string) (*domain.CaseSnapshot, error)
}

// AnalysisProcessor is the worker-side contract: recompute and persist the
// analysis for a case after its document set changed.
type AnalysisProcessor interface {
	ProcessCase(ctx context.Context, orgID, caseID string) error
}
