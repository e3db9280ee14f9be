package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// AnalysisRunRepository stores immutable analysis runs. Runs are append-only;
// the latest one per case is what the snapshot falls back to when a fresh
// derivation is not admitted.
type AnalysisRunRepository struct {
	db *sql.DB
}

func NewAnalysisRunRepository(db *sql.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{db: db}
}

func (r *AnalysisRunRepository) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	var reportJSON []byte
	if run.Report != nil {
		raw, err := json.Marshal(run.Report)
		if err != nil {
			return fmt.Errorf("marshal run report: %w", err)
		}
		reportJSON = raw
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO analysis_runs (id, case_id, org_id, fingerprint, score, capability_tier, report, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		run.ID, run.CaseID, run.OrgID, run.Fingerprint, run.Score,
		string(run.CapabilityTier), reportJSON, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

func (r *AnalysisRunRepository) LatestRun(ctx context.Context, caseID string) (*domain.AnalysisRun, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, case_id, org_id, fingerprint, score, capability_tier, report, created_at
FROM analysis_runs
WHERE case_id = $1
ORDER BY created_at DESC
LIMIT 1
`, caseID)

	var run domain.AnalysisRun
	var tier string
	var reportRaw []byte
	err := row.Scan(
		&run.ID, &run.CaseID, &run.OrgID, &run.Fingerprint,
		&run.Score, &tier, &reportRaw, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan analysis run: %w", err)
	}

	run.CapabilityTier = domain.CapabilityTier(tier)
	if len(reportRaw) > 0 {
		var report domain.StrategyReport
		if err := json.Unmarshal(reportRaw, &report); err != nil {
			return nil, fmt.Errorf("unmarshal run report: %w", err)
		}
		run.Report = &report
	}
	return &run, nil
}
