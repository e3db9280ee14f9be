package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CaseRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	org_id TEXT NOT NULL,
	reference TEXT NOT NULL,
	client_name TEXT NOT NULL,
	practice_area TEXT NOT NULL,
	category TEXT NOT NULL,
	analysis_mode TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cases_org ON cases(org_id);

CREATE TABLE IF NOT EXISTS charges (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id),
	offence TEXT NOT NULL,
	statute TEXT,
	plea TEXT,
	charged_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_charges_case ON charges(case_id);

CREATE TABLE IF NOT EXISTS hearings (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id),
	court TEXT NOT NULL,
	hearing_type TEXT NOT NULL,
	listed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hearings_case ON hearings(case_id, listed_at);

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id),
	name TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT,
	raw_text TEXT,
	structured JSONB,
	text_status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_case ON documents(case_id);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL REFERENCES cases(id),
	org_id TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	score INTEGER NOT NULL,
	capability_tier TEXT NOT NULL,
	report JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analysis_runs_case ON analysis_runs(case_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetCase(ctx context.Context, orgID, caseID string) (*domain.CaseFile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, org_id, reference, client_name, practice_area, category, analysis_mode, created_at, updated_at
FROM cases
WHERE org_id = $1 AND id = $2
`, orgID, caseID)

	var cf domain.CaseFile
	var practiceArea, category, mode string
	err := row.Scan(
		&cf.ID, &cf.OrgID, &cf.Reference, &cf.ClientName,
		&practiceArea, &category, &mode, &cf.CreatedAt, &cf.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCaseNotFound, "get case", err)
		}
		return nil, fmt.Errorf("scan case: %w", err)
	}

	cf.PracticeArea = domain.PracticeArea(practiceArea)
	cf.Category = domain.ResolveCategory(category)
	cf.AnalysisMode = domain.AnalysisMode(mode)
	return &cf, nil
}

func (r *CaseRepository) ListCharges(ctx context.Context, caseID string) ([]domain.Charge, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, case_id, offence, statute, plea, charged_at
FROM charges
WHERE case_id = $1
ORDER BY charged_at NULLS LAST, id
`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Charge, 0)
	for rows.Next() {
		var charge domain.Charge
		var statute, plea sql.NullString
		if err := rows.Scan(&charge.ID, &charge.CaseID, &charge.Offence, &statute, &plea, &charge.ChargedAt); err != nil {
			return nil, fmt.Errorf("scan charge: %w", err)
		}
		charge.Statute = statute.String
		charge.Plea = plea.String
		out = append(out, charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate charges: %w", err)
	}
	return out, nil
}

func (r *CaseRepository) ListHearings(ctx context.Context, caseID string) ([]domain.Hearing, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, case_id, court, hearing_type, listed_at
FROM hearings
WHERE case_id = $1
ORDER BY listed_at
`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list hearings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Hearing, 0)
	for rows.Next() {
		var hearing domain.Hearing
		if err := rows.Scan(&hearing.ID, &hearing.CaseID, &hearing.Court, &hearing.HearingType, &hearing.ListedAt); err != nil {
			return nil, fmt.Errorf("scan hearing: %w", err)
		}
		out = append(out, hearing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hearings: %w", err)
	}
	return out, nil
}
