package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/camdenlaw/casecore/internal/core/catalogue"
	"github.com/camdenlaw/casecore/internal/core/domain"
)

type caseRepoFake struct {
	caseFile *domain.CaseFile
	getErr   error
	charges  []domain.Charge
	hearings []domain.Hearing
}

func (f *caseRepoFake) GetCase(context.Context, string, string) (*domain.CaseFile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copied := *f.caseFile
	return &copied, nil
}

func (f *caseRepoFake) ListCharges(context.Context, string) ([]domain.Charge, error) {
	return f.charges, nil
}

func (f *caseRepoFake) ListHearings(context.Context, string) ([]domain.Hearing, error) {
	return f.hearings, nil
}

type docRepoFake struct {
	docs    []domain.Document
	listErr error
	updates []string
}

func (f *docRepoFake) ListByCase(context.Context, string) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.docs, nil
}

func (f *docRepoFake) UpdateText(_ context.Context, id string, _ string, _ *domain.StructuredExtract, _ domain.TextStatus) error {
	f.updates = append(f.updates, id)
	return nil
}

type cacheFake struct {
	store   map[string]*domain.StrategyReport
	getErr  error
	setErr  error
	gets    int
	sets    int
}

func newCacheFake() *cacheFake {
	return &cacheFake{store: map[string]*domain.StrategyReport{}}
}

func (f *cacheFake) Get(_ context.Context, key domain.CacheKey) (*domain.StrategyReport, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	report, ok := f.store[key.String()]
	return report, ok, nil
}

func (f *cacheFake) Set(_ context.Context, key domain.CacheKey, report *domain.StrategyReport) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.store[key.String()] = report
	return nil
}

type redactorFake struct{ calls int }

func (f *redactorFake) Redact(text string) string {
	f.calls++
	return strings.ReplaceAll(text, "John", "[REDACTED]")
}

type inferrerFake struct {
	angles []domain.InferredAngle
	err    error
	calls  int
}

func (f *inferrerFake) InferAngles(context.Context, domain.CaseCategory, []domain.Document) ([]domain.InferredAngle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.angles, nil
}

func mustCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.Load()
	if err != nil {
		t.Fatalf("catalogue.Load() error = %v", err)
	}
	return cat
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStrategyUseCase(t *testing.T, caseRepo *caseRepoFake, docRepo *docRepoFake, inferrer *inferrerFake) (*StrategyUseCase, *cacheFake) {
	t.Helper()
	cat := mustCatalogue(t)
	cache := newCacheFake()
	fallback := NewGenerativeFallback(&redactorFake{}, cache, inferrer, cat, nil, testLogger())
	return NewStrategyUseCase(caseRepo, docRepo, cat, fallback, testLogger()), cache
}

func filler(n int) string {
	return strings.Repeat("the hearing bundle continues on the next page ", n)
}

func criminalCase() *domain.CaseFile {
	return &domain.CaseFile{
		ID:           "case-1",
		OrgID:        "org-1",
		PracticeArea: domain.PracticeCriminal,
		Category:     domain.CategoryAssault,
		AnalysisMode: domain.AnalysisModeFull,
	}
}

func TestDeriveStrategyAbuseOfProcessWithBreaches(t *testing.T) {
	richText := strings.Join([]string{
		"Charge sheet and MG5 case summary served.",
		"Witness statement of A Jones; section 9 statement attached.",
		"Record of interview: interview commenced 14:02, solicitor present initially.",
		"Custody record shows detention authorised by the custody sergeant.",
		"MG6C unused material schedule from the disclosure officer.",
		"CCTV video footage seized from the venue.",
		"The second interview proceeded without a solicitor.",
		"Late disclosure of the custody log was noted.",
	}, " ")

	docs := []domain.Document{
		{ID: "d1", Name: "bundle-1.pdf", RawText: richText + filler(20)},
		{ID: "d2", Name: "bundle-2.pdf", RawText: "Interview without a solicitor; disclosure outstanding. " + filler(20)},
		{ID: "d3", Name: "bundle-3.pdf", RawText: filler(10)},
	}

	uc, _ := newStrategyUseCase(t, &caseRepoFake{caseFile: criminalCase()}, &docRepoFake{docs: docs}, &inferrerFake{})
	report, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("DeriveStrategy() error = %v", err)
	}

	var abuse *domain.StrategyAngle
	for i := range report.Angles {
		if report.Angles[i].AngleType == domain.AngleAbuseOfProcess {
			abuse = &report.Angles[i]
		}
	}
	if abuse == nil {
		t.Fatalf("expected abuse_of_process angle, got %v", report.Angles)
	}
	if abuse.WinProbability == nil {
		t.Fatalf("coverage above the floor: expected non-null probability")
	}
	if report.Source != domain.StrategySourceDeterministic {
		t.Fatalf("expected deterministic source, got %s", report.Source)
	}
}

func TestDeriveStrategyProbabilityNullBelowFloor(t *testing.T) {
	// Two breach signals but almost no category coverage: the angle is still
	// derived, its probability withheld.
	docs := []domain.Document{
		{ID: "d1", RawText: "interview conducted without a solicitor " + filler(20)},
		{ID: "d2", RawText: "no appropriate adult was present " + filler(20)},
	}

	uc, _ := newStrategyUseCase(t, &caseRepoFake{caseFile: criminalCase()}, &docRepoFake{docs: docs}, &inferrerFake{})
	report, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("DeriveStrategy() error = %v", err)
	}

	found := false
	for _, angle := range report.Angles {
		if angle.AngleType == domain.AngleAbuseOfProcess {
			found = true
			if angle.WinProbability != nil {
				t.Fatalf("coverage below the floor: probability must be null, got %d", *angle.WinProbability)
			}
		}
	}
	if !found {
		t.Fatalf("expected abuse_of_process angle despite low coverage")
	}
}

func TestDeriveStrategyClosedCatalogueOnly(t *testing.T) {
	cat := mustCatalogue(t)
	docs := []domain.Document{
		{ID: "d1", RawText: "charge sheet mg5 witness statement section 9 statement cctv video footage " + filler(20)},
		{ID: "d2", RawText: "custody record custody sergeant late disclosure without a solicitor " + filler(20)},
	}

	uc, _ := newStrategyUseCase(t, &caseRepoFake{caseFile: criminalCase()}, &docRepoFake{docs: docs}, &inferrerFake{})
	report, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("DeriveStrategy() error = %v", err)
	}
	for _, angle := range report.Angles {
		if !cat.IsKnownAngleType(angle.AngleType) {
			t.Fatalf("angle type %q is outside the closed catalogue", angle.AngleType)
		}
	}
}

func TestDeriveStrategyUnrecognizedCategoryFallsBackToOther(t *testing.T) {
	caseFile := criminalCase()
	caseFile.Category = domain.ResolveCategory("racketeering")
	if caseFile.Category != domain.CategoryOther {
		t.Fatalf("expected other, got %s", caseFile.Category)
	}

	docs := []domain.Document{
		{ID: "d1", RawText: "witness statement section 9 statement " + filler(20)},
		{ID: "d2", RawText: filler(20)},
	}

	uc, _ := newStrategyUseCase(t, &caseRepoFake{caseFile: caseFile}, &docRepoFake{docs: docs}, &inferrerFake{})
	report, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("DeriveStrategy() error = %v", err)
	}
	if report.Category != domain.CategoryOther {
		t.Fatalf("expected other category in report, got %s", report.Category)
	}
}

func TestDeriveStrategyAdmissionDenialIsGateError(t *testing.T) {
	docs := []domain.Document{{ID: "d1", RawText: filler(40)}}

	uc, _ := newStrategyUseCase(t, &caseRepoFake{caseFile: criminalCase()}, &docRepoFake{docs: docs}, &inferrerFake{})
	_, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if err == nil {
		t.Fatalf("expected gate error for a single document")
	}
	gateErr, ok := domain.AsGateError(err)
	if !ok {
		t.Fatalf("expected typed gate error, got %T: %v", err, err)
	}
	if gateErr.Banner == "" {
		t.Fatalf("gate error must carry a banner")
	}
}

func TestDeriveStrategyTriggersFallbackWhenNothingViable(t *testing.T) {
	// Text that satisfies no generic predicate: disclosure, CCTV and device
	// evidence present (so nothing is "missing"), every other category out.
	neutral := "mg6c unused material disclosure schedule cctv video footage phone download mobile phone examination "
	docs := []domain.Document{
		{ID: "d1", RawText: neutral + filler(20)},
		{ID: "d2", RawText: neutral + filler(20)},
	}

	caseFile := criminalCase()
	caseFile.Category = domain.CategoryOther
	inferrer := &inferrerFake{angles: []domain.InferredAngle{
		{AngleType: "witness_credibility", Title: "Inconsistent accounts"},
	}}

	uc, _ := newStrategyUseCase(t, &caseRepoFake{caseFile: caseFile}, &docRepoFake{docs: docs}, inferrer)
	report, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("DeriveStrategy() error = %v", err)
	}
	if inferrer.calls != 1 {
		t.Fatalf("expected exactly one generative call, got %d", inferrer.calls)
	}
	if report.Source != domain.StrategySourceGenerative {
		t.Fatalf("expected generative source, got %s", report.Source)
	}
	if len(report.Angles) != 1 || report.Angles[0].AngleType != domain.AngleWitnessCredibility {
		t.Fatalf("unexpected fallback angles: %v", report.Angles)
	}
}

func TestDeriveStrategyRepoErrorPropagates(t *testing.T) {
	uc, _ := newStrategyUseCase(t,
		&caseRepoFake{getErr: domain.ErrCaseNotFound},
		&docRepoFake{}, &inferrerFake{})

	_, err := uc.DeriveStrategy(context.Background(), "org-1", "case-1")
	if !errors.Is(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}
