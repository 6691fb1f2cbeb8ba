package curricula

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"cvquery-backend/internal/extract"
	"cvquery-backend/internal/shared/metrics"
)

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, files []extract.File) map[string]string {
	_ = ctx
	texts := make(map[string]string, len(files))
	for _, f := range files {
		texts[f.Name] = "text of " + f.Name
	}
	return texts
}

type stubAnalyzer struct {
	queryCalls     int
	summarizeCalls int
	queryErr       error
}

func (s *stubAnalyzer) AnalyzeWithQuery(ctx context.Context, texts map[string]string, query string) (QueryAnalysis, error) {
	_ = ctx
	s.queryCalls++
	if s.queryErr != nil {
		return QueryAnalysis{}, s.queryErr
	}
	names := make([]string, 0, len(texts))
	for name := range texts {
		names = append(names, name)
	}
	return QueryAnalysis{Query: query, Narrative: "stub analysis", FilesAnalyzed: names}, nil
}

func (s *stubAnalyzer) SummarizeIndividually(ctx context.Context, texts map[string]string) map[string]SummaryEntry {
	_ = ctx
	s.summarizeCalls++
	summaries := make(map[string]SummaryEntry, len(texts))
	for name := range texts {
		summaries[name] = TextEntry("summary of " + name)
	}
	return summaries
}

type failingRepo struct {
	saves int
}

func (r *failingRepo) Save(ctx context.Context, record AnalysisRecord) error {
	_ = ctx
	_ = record
	r.saves++
	return errors.New("backend down")
}

func (r *failingRepo) GetByRequestID(ctx context.Context, requestID string) (AnalysisRecord, error) {
	return AnalysisRecord{}, ErrNotFound
}

func (r *failingRepo) ListByUser(ctx context.Context, userID string, limit int) ([]AnalysisRecord, error) {
	return []AnalysisRecord{}, nil
}

func newTestService(analyzer Analyzer, repo Repo) *Service {
	return &Service{
		Extractor: stubExtractor{},
		Analyzer:  analyzer,
		Repo:      repo,
	}
}

func testFiles(names ...string) []extract.File {
	files := make([]extract.File, 0, len(names))
	for _, name := range names {
		files = append(files, extract.File{Name: name, Data: []byte("data")})
	}
	return files
}

func TestExecuteQueryModeSelectedByQueryPresence(t *testing.T) {
	analyzer := &stubAnalyzer{}
	svc := newTestService(analyzer, NewMemoryRepo())

	resp, err := svc.Execute(context.Background(), testFiles("a.pdf", "b.pdf"), "who fits?", "req-1", "user-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if analyzer.queryCalls != 1 || analyzer.summarizeCalls != 0 {
		t.Fatalf("calls = %d/%d, want query mode only", analyzer.queryCalls, analyzer.summarizeCalls)
	}
	if resp.Result.Kind != KindQueryAnalysis {
		t.Fatalf("result kind = %q", resp.Result.Kind)
	}
	if resp.Code != 200 || resp.Status != "success" {
		t.Fatalf("envelope = %+v", resp)
	}
	if resp.FilesProcessed != 2 {
		t.Fatalf("files_processed = %d", resp.FilesProcessed)
	}
}

func TestExecuteBlankQuerySelectsSummaryMode(t *testing.T) {
	analyzer := &stubAnalyzer{}
	svc := newTestService(analyzer, NewMemoryRepo())

	resp, err := svc.Execute(context.Background(), testFiles("a.pdf"), "   ", "req-2", "user-1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if analyzer.queryCalls != 0 || analyzer.summarizeCalls != 1 {
		t.Fatalf("calls = %d/%d, want summary mode only", analyzer.queryCalls, analyzer.summarizeCalls)
	}
	if resp.Result.Kind != KindIndividualSummaries {
		t.Fatalf("result kind = %q", resp.Result.Kind)
	}
}

func TestExecutePersistsCompletedRecord(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(&stubAnalyzer{}, repo)

	if _, err := svc.Execute(context.Background(), testFiles("a.pdf", "b.pdf"), "query", "req-3", "user-7"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	record, err := repo.GetByRequestID(context.Background(), "req-3")
	if err != nil {
		t.Fatalf("GetByRequestID: %v", err)
	}
	if record.Status != StatusCompleted {
		t.Fatalf("status = %q, want %q", record.Status, StatusCompleted)
	}
	if record.UserID != "user-7" || record.FilesCount != 2 {
		t.Fatalf("record = %+v", record)
	}
	if record.FileNames[0] != "a.pdf" || record.FileNames[1] != "b.pdf" {
		t.Fatalf("file names = %v", record.FileNames)
	}
	if record.ProcessingTime < 0 {
		t.Fatalf("processing time = %v", record.ProcessingTime)
	}
	if record.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

func TestExecuteSaveFailureDoesNotFailRequest(t *testing.T) {
	repo := &failingRepo{}
	svc := newTestService(&stubAnalyzer{}, repo)

	resp, err := svc.Execute(context.Background(), testFiles("a.pdf"), "query", "req-4", "user-1")
	if err != nil {
		t.Fatalf("Execute should absorb save failures: %v", err)
	}
	if repo.saves != 1 {
		t.Fatalf("saves = %d, want 1", repo.saves)
	}
	if resp.Status != "success" {
		t.Fatalf("envelope = %+v", resp)
	}
}

func TestExecuteAnalyzerFailurePersistsErrorRecord(t *testing.T) {
	repo := NewMemoryRepo()
	cause := errors.New("llm exploded")
	svc := newTestService(&stubAnalyzer{queryErr: cause}, repo)

	_, err := svc.Execute(context.Background(), testFiles("a.pdf"), "query", "req-5", "user-1")
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want the analyzer failure", err)
	}

	record, getErr := repo.GetByRequestID(context.Background(), "req-5")
	if getErr != nil {
		t.Fatalf("GetByRequestID: %v", getErr)
	}
	if record.Status != StatusError {
		t.Fatalf("status = %q, want %q", record.Status, StatusError)
	}
	if record.Result.Kind != KindError || !strings.Contains(record.Result.ErrMsg, "llm exploded") {
		t.Fatalf("result = %+v", record.Result)
	}
}

func TestHistoryRequiresUserID(t *testing.T) {
	svc := newTestService(&stubAnalyzer{}, NewMemoryRepo())

	if _, err := svc.History(context.Background(), "  ", 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestHistoryDefaultsLimit(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(&stubAnalyzer{}, repo)

	for i := 0; i < 15; i++ {
		if _, err := svc.Execute(context.Background(), testFiles("a.pdf"), "q", requestID(i), "user-1"); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}

	history, err := svc.History(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("history = %d entries, want default limit 10", len(history))
	}
}

func requestID(i int) string {
	return "req-" + string(rune('a'+i))
}

func metricCounter(t *testing.T, name string) uint64 {
	t.Helper()
	for _, line := range strings.Split(metrics.Render(), "\n") {
		if strings.HasPrefix(line, name+" ") {
			value, err := strconv.ParseUint(strings.TrimPrefix(line, name+" "), 10, 64)
			if err != nil {
				t.Fatalf("parse %s: %v", line, err)
			}
			return value
		}
	}
	t.Fatalf("counter %s not rendered", name)
	return 0
}

func TestExecuteUpdatesMetricsCounters(t *testing.T) {
	started := metricCounter(t, "analysis_started_total")
	completed := metricCounter(t, "analysis_completed_total")
	failed := metricCounter(t, "analysis_failed_total")

	svc := newTestService(&stubAnalyzer{}, NewMemoryRepo())
	if _, err := svc.Execute(context.Background(), testFiles("a.pdf"), "q", "req-m1", "user-1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := metricCounter(t, "analysis_started_total") - started; got != 1 {
		t.Fatalf("started delta = %d, want 1", got)
	}
	if got := metricCounter(t, "analysis_completed_total") - completed; got != 1 {
		t.Fatalf("completed delta = %d, want 1", got)
	}

	failing := newTestService(&stubAnalyzer{queryErr: errors.New("boom")}, NewMemoryRepo())
	if _, err := failing.Execute(context.Background(), testFiles("a.pdf"), "q", "req-m2", "user-1"); err == nil {
		t.Fatal("expected analyzer failure")
	}
	if got := metricCounter(t, "analysis_failed_total") - failed; got != 1 {
		t.Fatalf("failed delta = %d, want 1", got)
	}
}
