package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

func newCaseRepoWithMock(t *testing.T) (*CaseRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CaseRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetCaseReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newCaseRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM cases").
		WithArgs("org-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetCase(context.Background(), "org-1", "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetCaseResolvesCategory(t *testing.T) {
	repo, mock, done := newCaseRepoWithMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "org_id", "reference", "client_name", "practice_area", "category", "analysis_mode", "created_at", "updated_at",
	}).AddRow("c-1", "org-1", "CR-2026-001", "client", "criminal", "racketeering", "full", now, now)

	mock.ExpectQuery("FROM cases").
		WithArgs("org-1", "c-1").
		WillReturnRows(rows)

	cf, err := repo.GetCase(context.Background(), "org-1", "c-1")
	if err != nil {
		t.Fatalf("GetCase() error = %v", err)
	}
	if cf.Category != domain.CategoryOther {
		t.Fatalf("stored category outside the closed set must resolve to other, got %s", cf.Category)
	}
	if cf.AnalysisMode != domain.AnalysisModeFull {
		t.Fatalf("expected full analysis mode, got %s", cf.AnalysisMode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListChargesScansNullableColumns(t *testing.T) {
	repo, mock, done := newCaseRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "case_id", "offence", "statute", "plea", "charged_at"}).
		AddRow("ch-1", "c-1", "assault occasioning ABH", "s.47 OAPA 1861", nil, nil)

	mock.ExpectQuery("FROM charges").
		WithArgs("c-1").
		WillReturnRows(rows)

	charges, err := repo.ListCharges(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("ListCharges() error = %v", err)
	}
	if len(charges) != 1 || charges[0].Plea != "" || charges[0].ChargedAt != nil {
		t.Fatalf("unexpected charges: %+v", charges)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
