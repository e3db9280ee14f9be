package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/camdenlaw/casecore/internal/core/domain"
)

// mutableDocRepo persists UpdateText so the post-backfill re-read observes
// the extracted text, the way the real repository does.
type mutableDocRepo struct {
	docs  []domain.Document
	lists int
}

func (f *mutableDocRepo) ListByCase(context.Context, string) ([]domain.Document, error) {
	f.lists++
	out := make([]domain.Document, len(f.docs))
	copy(out, f.docs)
	return out, nil
}

func (f *mutableDocRepo) UpdateText(_ context.Context, id string, text string, structured *domain.StructuredExtract, status domain.TextStatus) error {
	for i := range f.docs {
		if f.docs[i].ID == id {
			f.docs[i].RawText = text
			f.docs[i].Structured = structured
			f.docs[i].TextStatus = status
			return nil
		}
	}
	return domain.ErrDocumentNotFound
}

type extractorFake struct {
	text  string
	err   error
	calls int
}

func (f *extractorFake) Extract(_ context.Context, _ *domain.Document) (string, *domain.StructuredExtract, error) {
	f.calls++
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, nil, nil
}

func newProcessUseCase(t *testing.T, docRepo *mutableDocRepo, extractor *extractorFake, runStore *runStoreFake) *ProcessAnalysisUseCase {
	t.Helper()
	caseRepo := &caseRepoFake{caseFile: criminalCase()}
	cat := mustCatalogue(t)
	fallback := NewGenerativeFallback(&redactorFake{}, newCacheFake(), &inferrerFake{}, cat, nil, testLogger())
	strategy := NewStrategyUseCase(caseRepo, docRepo, cat, fallback, testLogger())
	return NewProcessAnalysisUseCase(caseRepo, docRepo, extractor, strategy, runStore, testLogger())
}

func TestProcessCaseBackfillsPendingTextAndSavesRun(t *testing.T) {
	docRepo := &mutableDocRepo{docs: []domain.Document{
		{ID: "d1", Name: "scan.pdf", StoragePath: "cases/case-1/scan.pdf", TextStatus: domain.TextStatusPending},
		{ID: "d2", Name: "statement.txt", RawText: "Witness statement of A Jones; section 9 statement. " + filler(15), TextStatus: domain.TextStatusExtracted},
	}}
	extractor := &extractorFake{text: "Record of interview: interview commenced, solicitor present. " + filler(15)}
	runStore := &runStoreFake{}
	uc := newProcessUseCase(t, docRepo, extractor, runStore)

	if err := uc.ProcessCase(context.Background(), "org-1", "case-1"); err != nil {
		t.Fatalf("ProcessCase() error = %v", err)
	}

	if extractor.calls != 1 {
		t.Fatalf("only the pending document needs extraction, got %d calls", extractor.calls)
	}
	if docRepo.docs[0].TextStatus != domain.TextStatusExtracted {
		t.Fatalf("backfilled document must be marked extracted, got %s", docRepo.docs[0].TextStatus)
	}
	if docRepo.lists != 2 {
		t.Fatalf("a backfill must trigger a re-read, got %d lists", docRepo.lists)
	}
	if len(runStore.saved) != 1 {
		t.Fatalf("expected one saved run, got %d", len(runStore.saved))
	}

	run := runStore.saved[0]
	if run.ID == "" || run.Fingerprint == "" {
		t.Fatalf("run must carry an id and fingerprint: %+v", run)
	}
	if run.Report == nil || len(run.Report.Angles) == 0 {
		t.Fatalf("expected a derived report on the run, got %+v", run.Report)
	}
	if run.Score <= 0 {
		t.Fatalf("two present categories must score above zero, got %d", run.Score)
	}
}

func TestProcessCaseGateDeniedSavesNothing(t *testing.T) {
	docRepo := &mutableDocRepo{docs: []domain.Document{
		{ID: "d1", RawText: filler(40), TextStatus: domain.TextStatusExtracted},
	}}
	runStore := &runStoreFake{}
	uc := newProcessUseCase(t, docRepo, &extractorFake{}, runStore)

	if err := uc.ProcessCase(context.Background(), "org-1", "case-1"); err != nil {
		t.Fatalf("a denied gate is not a processing failure, got %v", err)
	}
	if len(runStore.saved) != 0 {
		t.Fatalf("denied sets must not record a run, got %d", len(runStore.saved))
	}
}

func TestProcessCaseExtractionFailureMarksFailedAndContinues(t *testing.T) {
	docRepo := &mutableDocRepo{docs: []domain.Document{
		{ID: "d1", StoragePath: "cases/case-1/broken.pdf", TextStatus: domain.TextStatusPending},
		{ID: "d2", RawText: filler(40), TextStatus: domain.TextStatusExtracted},
	}}
	runStore := &runStoreFake{}
	uc := newProcessUseCase(t, docRepo, &extractorFake{err: errors.New("corrupt pdf")}, runStore)

	if err := uc.ProcessCase(context.Background(), "org-1", "case-1"); err != nil {
		t.Fatalf("one unreadable document must not fail the pipeline, got %v", err)
	}
	if docRepo.docs[0].TextStatus != domain.TextStatusFailed {
		t.Fatalf("unreadable document must be marked failed, got %s", docRepo.docs[0].TextStatus)
	}
}

func TestProcessCaseUnknownCase(t *testing.T) {
	uc := NewProcessAnalysisUseCase(
		&caseRepoFake{getErr: domain.ErrCaseNotFound},
		&mutableDocRepo{}, &extractorFake{}, nil, &runStoreFake{}, testLogger())

	err := uc.ProcessCase(context.Background(), "org-1", "missing")
	if !errors.Is(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}
