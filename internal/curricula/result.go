package curricula

import (
	"encoding/json"
	"fmt"
)

// ResultKind discriminates the closed set of analysis result shapes.
type ResultKind string

const (
	KindQueryAnalysis       ResultKind = "query_analysis"
	KindIndividualSummaries ResultKind = "individual_summaries"
	KindError               ResultKind = "error"
)

// AnalysisResult is a tagged union over the three result shapes a record
// can carry. Exactly one payload field is set, selected by Kind.
type AnalysisResult struct {
	Kind      ResultKind
	Query     *QueryAnalysis
	Summaries map[string]SummaryEntry
	ErrMsg    string
}

// QueryResult wraps a query-mode analysis.
func QueryResult(qa QueryAnalysis) AnalysisResult {
	return AnalysisResult{Kind: KindQueryAnalysis, Query: &qa}
}

// SummariesResult wraps per-file summaries.
func SummariesResult(summaries map[string]SummaryEntry) AnalysisResult {
	return AnalysisResult{Kind: KindIndividualSummaries, Summaries: summaries}
}

// ErrorResult wraps a pipeline failure message.
func ErrorResult(msg string) AnalysisResult {
	return AnalysisResult{Kind: KindError, ErrMsg: msg}
}

// QueryAnalysis is the query-mode payload. Primary-tier runs carry a
// structured Comparison; degraded-tier runs carry a plain Narrative.
type QueryAnalysis struct {
	Query         string
	Comparison    *Comparison
	Narrative     string
	FilesAnalyzed []string
}

// CandidateAssessment scores one resume against the recruiter's query.
type CandidateAssessment struct {
	Name               string   `json:"name"`
	FileName           string   `json:"filename"`
	Skills             []string `json:"skills"`
	ExperienceYears    *int     `json:"experience_years"`
	RelevantExperience string   `json:"relevant_experience"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	MatchScore         float64  `json:"match_score"`
}

// Comparison is the structured answer for query mode.
type Comparison struct {
	BestCandidates          []CandidateAssessment `json:"best_candidates"`
	TotalCandidatesAnalyzed int                   `json:"total_candidates_analyzed"`
	Summary                 string                `json:"summary"`
	Recommendations         []string              `json:"recommendations"`
	NextSteps               []string              `json:"next_steps"`
}

// ResumeSummary is the structured per-file summary for summary mode.
type ResumeSummary struct {
	FileName             string   `json:"filename"`
	CandidateName        *string  `json:"candidate_name"`
	Summary              string   `json:"summary"`
	KeySkills            []string `json:"key_skills"`
	ExperienceHighlights []string `json:"experience_highlights"`
	Education            *string  `json:"education"`
	ContactInfo          *string  `json:"contact_info"`
}

// SummaryEntry is either a structured summary or plain text. Short inputs
// and degraded-tier or failed summarizations produce the text form.
type SummaryEntry struct {
	Structured *ResumeSummary
	Text       string
}

// TextEntry builds a plain-text summary entry.
func TextEntry(text string) SummaryEntry {
	return SummaryEntry{Text: text}
}

// StructuredEntry builds a structured summary entry.
func StructuredEntry(summary ResumeSummary) SummaryEntry {
	return SummaryEntry{Structured: &summary}
}

func (e SummaryEntry) MarshalJSON() ([]byte, error) {
	if e.Structured != nil {
		return json.Marshal(e.Structured)
	}
	return json.Marshal(e.Text)
}

func (e *SummaryEntry) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*e = SummaryEntry{Text: text}
		return nil
	}
	var summary ResumeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return fmt.Errorf("summary entry: %w", err)
	}
	*e = SummaryEntry{Structured: &summary}
	return nil
}

type queryAnalysisWire struct {
	Type          ResultKind      `json:"type"`
	Query         string          `json:"query"`
	Analysis      json.RawMessage `json:"analysis"`
	FilesAnalyzed []string        `json:"files_analyzed"`
}

type summariesWire struct {
	Type      ResultKind              `json:"type"`
	Summaries map[string]SummaryEntry `json:"summaries"`
}

type errorWire struct {
	Error string `json:"error"`
}

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindQueryAnalysis:
		if r.Query == nil {
			return nil, fmt.Errorf("query_analysis result missing payload")
		}
		var analysis json.RawMessage
		var err error
		if r.Query.Comparison != nil {
			analysis, err = json.Marshal(r.Query.Comparison)
		} else {
			analysis, err = json.Marshal(r.Query.Narrative)
		}
		if err != nil {
			return nil, err
		}
		files := r.Query.FilesAnalyzed
		if files == nil {
			files = []string{}
		}
		return json.Marshal(queryAnalysisWire{
			Type:          KindQueryAnalysis,
			Query:         r.Query.Query,
			Analysis:      analysis,
			FilesAnalyzed: files,
		})
	case KindIndividualSummaries:
		summaries := r.Summaries
		if summaries == nil {
			summaries = map[string]SummaryEntry{}
		}
		return json.Marshal(summariesWire{
			Type:      KindIndividualSummaries,
			Summaries: summaries,
		})
	case KindError:
		return json.Marshal(errorWire{Error: r.ErrMsg})
	default:
		return nil, fmt.Errorf("unknown result kind %q", r.Kind)
	}
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var head struct {
		Type  *ResultKind `json:"type"`
		Error *string     `json:"error"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("analysis result: %w", err)
	}

	if head.Type == nil {
		if head.Error != nil {
			*r = ErrorResult(*head.Error)
			return nil
		}
		return fmt.Errorf("analysis result missing type tag")
	}

	switch *head.Type {
	case KindQueryAnalysis:
		var wire queryAnalysisWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("query_analysis result: %w", err)
		}
		qa := QueryAnalysis{Query: wire.Query, FilesAnalyzed: wire.FilesAnalyzed}
		if len(wire.Analysis) > 0 {
			var narrative string
			if err := json.Unmarshal(wire.Analysis, &narrative); err == nil {
				qa.Narrative = narrative
			} else {
				var comparison Comparison
				if err := json.Unmarshal(wire.Analysis, &comparison); err != nil {
					return fmt.Errorf("query_analysis payload: %w", err)
				}
				qa.Comparison = &comparison
			}
		}
		*r = AnalysisResult{Kind: KindQueryAnalysis, Query: &qa}
		return nil
	case KindIndividualSummaries:
		var wire summariesWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("individual_summaries result: %w", err)
		}
		*r = AnalysisResult{Kind: KindIndividualSummaries, Summaries: wire.Summaries}
		return nil
	case KindError:
		var wire errorWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("error result: %w", err)
		}
		*r = ErrorResult(wire.Error)
		return nil
	default:
		return fmt.Errorf("unknown result kind %q", *head.Type)
	}
}
