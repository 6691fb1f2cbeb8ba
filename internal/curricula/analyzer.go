package curricula

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"cvquery-backend/internal/llm"
)

// Mode selects the analysis tier. It is fixed at construction: requests
// never switch tiers mid-flight, and a primary-tier failure is a failure,
// not a silent downgrade.
type Mode int

const (
	ModePrimary Mode = iota
	ModeDegraded
)

func (m Mode) String() string {
	if m == ModeDegraded {
		return "degraded"
	}
	return "primary"
}

const (
	corpusMaxChars       = 4000
	summaryInputMaxChars = 3000
	summaryMinChars      = 100
)

// Analyzer answers recruiter queries over a corpus of extracted texts, or
// summarizes each text individually when no query is given.
type Analyzer interface {
	AnalyzeWithQuery(ctx context.Context, texts map[string]string, query string) (QueryAnalysis, error)
	SummarizeIndividually(ctx context.Context, texts map[string]string) map[string]SummaryEntry
}

// LLMAnalyzer implements Analyzer over an optional structured LLM client.
type LLMAnalyzer struct {
	client llm.StructuredClient
	mode   Mode
}

// NewAnalyzer constructs an analyzer. A nil client pins the analyzer to
// the degraded tier for its whole lifetime; a non-nil client is wrapped
// with a one-shot retry for transient failures.
func NewAnalyzer(client llm.StructuredClient) *LLMAnalyzer {
	if client == nil {
		return &LLMAnalyzer{mode: ModeDegraded}
	}
	return &LLMAnalyzer{client: newRetryingClient(client), mode: ModePrimary}
}

// Mode reports the tier the analyzer was constructed with.
func (a *LLMAnalyzer) Mode() Mode {
	return a.mode
}

// AnalyzeWithQuery answers the recruiter's query over the combined corpus.
// On the primary tier an LLM failure fails the whole analysis.
func (a *LLMAnalyzer) AnalyzeWithQuery(ctx context.Context, texts map[string]string, query string) (QueryAnalysis, error) {
	names := sortedNames(texts)
	corpus := buildCorpus(names, texts)

	if a.mode == ModeDegraded {
		return QueryAnalysis{
			Query:         query,
			Narrative:     keywordNarrative(corpus, query),
			FilesAnalyzed: names,
		}, nil
	}

	system, prompt := llm.QueryAnalysisPrompt(corpus, query)
	raw, err := a.client.GenerateStructured(ctx, llm.StructuredRequest{
		System:     system,
		Prompt:     prompt,
		SchemaName: queryAnalysisSchemaName,
		Schema:     queryAnalysisSchema,
	})
	if err != nil {
		return QueryAnalysis{}, fmt.Errorf("query analysis: %w", err)
	}

	var comparison Comparison
	if err := json.Unmarshal(raw, &comparison); err != nil {
		return QueryAnalysis{}, fmt.Errorf("query analysis payload: %w", err)
	}
	return QueryAnalysis{
		Query:         query,
		Comparison:    &comparison,
		FilesAnalyzed: names,
	}, nil
}

// SummarizeIndividually summarizes each text on its own. The operation is
// total: a failed summarization yields a plain-text error entry for that
// file and never aborts the batch.
func (a *LLMAnalyzer) SummarizeIndividually(ctx context.Context, texts map[string]string) map[string]SummaryEntry {
	summaries := make(map[string]SummaryEntry, len(texts))
	for _, name := range sortedNames(texts) {
		summaries[name] = a.summarizeOne(ctx, name, texts[name])
	}
	return summaries
}

func (a *LLMAnalyzer) summarizeOne(ctx context.Context, name, text string) SummaryEntry {
	if len(text) < summaryMinChars {
		return TextEntry(text)
	}
	if a.mode == ModeDegraded {
		return TextEntry(extractiveSummary(text))
	}

	system, prompt := llm.ResumeSummaryPrompt(truncate(text, summaryInputMaxChars))
	raw, err := a.client.GenerateStructured(ctx, llm.StructuredRequest{
		System:     system,
		Prompt:     prompt,
		SchemaName: resumeSummarySchemaName,
		Schema:     resumeSummarySchema,
	})
	if err != nil {
		return TextEntry(fmt.Sprintf("failed to summarize: %v", err))
	}

	var summary ResumeSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return TextEntry(fmt.Sprintf("failed to summarize: %v", err))
	}
	if strings.TrimSpace(summary.FileName) == "" {
		summary.FileName = name
	}
	return StructuredEntry(summary)
}

// buildCorpus joins per-file texts under filename delimiters, in sorted
// filename order, bounded to respect the backend input limit.
func buildCorpus(names []string, texts map[string]string) string {
	sections := make([]string, 0, len(names))
	for _, name := range names {
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", name, texts[name]))
	}
	return truncate(strings.Join(sections, "\n\n"), corpusMaxChars)
}

func sortedNames(texts map[string]string) []string {
	names := make([]string, 0, len(texts))
	for name := range texts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var _ Analyzer = (*LLMAnalyzer)(nil)
