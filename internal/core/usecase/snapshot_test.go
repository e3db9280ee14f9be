package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

type runStoreFake struct {
	latest    *domain.AnalysisRun
	latestErr error
	saved     []*domain.AnalysisRun
}

func (f *runStoreFake) SaveRun(_ context.Context, run *domain.AnalysisRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *runStoreFake) LatestRun(context.Context, string) (*domain.AnalysisRun, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func newSnapshotUseCase(t *testing.T, caseRepo *caseRepoFake, docRepo *docRepoFake, runStore *runStoreFake) *SnapshotUseCase {
	t.Helper()
	cat := mustCatalogue(t)
	fallback := NewGenerativeFallback(&redactorFake{}, newCacheFake(), &inferrerFake{}, cat, nil, testLogger())
	strategy := NewStrategyUseCase(caseRepo, docRepo, cat, fallback, testLogger())
	return NewSnapshotUseCase(caseRepo, docRepo, runStore, strategy, cat, PreferHighestRisk)
}

func admittedDocs() []domain.Document {
	return []domain.Document{
		{ID: "d1", Name: "statements.pdf", RawText: "Witness statement of A Jones; section 9 statement attached. " + filler(20)},
		{ID: "d2", Name: "notes.pdf", RawText: filler(20)},
	}
}

func priorReport() *domain.StrategyReport {
	return &domain.StrategyReport{
		CaseID:   "case-1",
		Category: domain.CategoryAssault,
		Source:   domain.StrategySourceDeterministic,
		Angles:   []domain.StrategyAngle{{AngleType: domain.AngleWitnessCredibility, Title: "Shaky account"}},
	}
}

func TestBuildSnapshotAdmittedCase(t *testing.T) {
	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: criminalCase(), charges: []domain.Charge{{Offence: "s.47 ABH"}}},
		&docRepoFake{docs: admittedDocs()},
		&runStoreFake{})

	snapshot, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if !snapshot.Admission.CanGenerateAnalysis {
		t.Fatalf("two substantial documents must be admitted: %+v", snapshot.Admission)
	}
	if snapshot.Strategy == nil || len(snapshot.Strategy.Angles) == 0 {
		t.Fatalf("expected derived strategy data, got %+v", snapshot.Strategy)
	}
	if snapshot.Options == nil {
		t.Fatalf("strategy data present: expected an option assessment")
	}
	if !snapshot.CanShowPreview || !snapshot.CanShowFull {
		t.Fatalf("admitted full-mode case must show both levels: preview=%v full=%v",
			snapshot.CanShowPreview, snapshot.CanShowFull)
	}
	if snapshot.ConfidenceCap != 100 {
		t.Fatalf("admitted case must not cap confidence, got %d", snapshot.ConfidenceCap)
	}
	if len(snapshot.Documents) != 2 || snapshot.Documents[0].RawChars == 0 {
		t.Fatalf("expected summarized documents, got %+v", snapshot.Documents)
	}
	for _, doc := range snapshot.Documents {
		if strings.Contains(doc.Name, "Jones") {
			t.Fatalf("raw text leaked into the document summary")
		}
	}
}

func TestBuildSnapshotAnalysisModeNoneHidesEverything(t *testing.T) {
	caseFile := criminalCase()
	caseFile.AnalysisMode = domain.AnalysisModeNone

	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: caseFile},
		&docRepoFake{docs: admittedDocs()},
		&runStoreFake{latest: &domain.AnalysisRun{Report: priorReport()}})

	snapshot, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if snapshot.CanShowPreview || snapshot.CanShowFull {
		t.Fatalf("mode none must hide analysis regardless of data: preview=%v full=%v",
			snapshot.CanShowPreview, snapshot.CanShowFull)
	}
}

func TestBuildSnapshotDeniedWithPriorRunCapsConfidence(t *testing.T) {
	// One document fails the guard, but a prior run holds strategy data.
	// Existence and confidence gate independently: the data stays visible
	// with a reduced confidence cap.
	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: criminalCase()},
		&docRepoFake{docs: []domain.Document{{ID: "d1", RawText: filler(40)}}},
		&runStoreFake{latest: &domain.AnalysisRun{Report: priorReport()}})

	snapshot, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if snapshot.Admission.CanGenerateAnalysis {
		t.Fatalf("single document must be denied")
	}
	if snapshot.Admission.Banner == "" {
		t.Fatalf("denial must carry a banner")
	}
	if snapshot.Strategy == nil || len(snapshot.Strategy.Angles) != 1 {
		t.Fatalf("prior strategy data must remain visible, got %+v", snapshot.Strategy)
	}
	if snapshot.ConfidenceCap != domain.LowExtractionConfidenceCap {
		t.Fatalf("expected confidence cap %d, got %d", domain.LowExtractionConfidenceCap, snapshot.ConfidenceCap)
	}
	if !snapshot.CanShowPreview || !snapshot.CanShowFull {
		t.Fatalf("existing data must not be hidden by low extraction quality")
	}
}

func TestBuildSnapshotDeniedWithoutPriorRun(t *testing.T) {
	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: criminalCase()},
		&docRepoFake{docs: []domain.Document{{ID: "d1", RawText: filler(40)}}},
		&runStoreFake{})

	snapshot, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if snapshot.Strategy != nil || snapshot.Options != nil {
		t.Fatalf("nothing to show: strategy=%+v options=%+v", snapshot.Strategy, snapshot.Options)
	}
	if snapshot.CanShowPreview || snapshot.CanShowFull {
		t.Fatalf("no data means no visibility: preview=%v full=%v", snapshot.CanShowPreview, snapshot.CanShowFull)
	}
	if snapshot.ConfidenceCap != 100 {
		t.Fatalf("cap applies only when prior data is shown, got %d", snapshot.ConfidenceCap)
	}
}

func TestBuildSnapshotPriorRunWithoutAnglesAllowsPreviewOnly(t *testing.T) {
	empty := &domain.StrategyReport{
		CaseID:    "case-1",
		Category:  domain.CategoryAssault,
		Source:    domain.StrategySourceEmpty,
		Angles:    []domain.StrategyAngle{},
		Loopholes: []domain.Loophole{},
	}
	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: criminalCase()},
		&docRepoFake{docs: []domain.Document{{ID: "d1", RawText: filler(40)}}},
		&runStoreFake{latest: &domain.AnalysisRun{Report: empty}})

	snapshot, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if !snapshot.CanShowPreview {
		t.Fatalf("a prior run exists: preview must be allowed")
	}
	if snapshot.CanShowFull {
		t.Fatalf("no angles or loopholes: full view must stay hidden")
	}
}

func TestBuildSnapshotFanOutErrorPropagates(t *testing.T) {
	wantErr := errors.New("documents unavailable")
	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: criminalCase()},
		&docRepoFake{listErr: wantErr},
		&runStoreFake{})

	_, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped list error, got %v", err)
	}
}

func TestBuildSnapshotRunStoreErrorPropagates(t *testing.T) {
	wantErr := errors.New("run store down")
	uc := newSnapshotUseCase(t,
		&caseRepoFake{caseFile: criminalCase()},
		&docRepoFake{docs: admittedDocs()},
		&runStoreFake{latestErr: wantErr})

	_, err := uc.BuildSnapshot(context.Background(), "org-1", "case-1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped run store error, got %v", err)
	}
}
