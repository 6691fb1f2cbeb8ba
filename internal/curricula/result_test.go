package curricula

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQueryResultMarshalStructured(t *testing.T) {
	years := 3
	result := QueryResult(QueryAnalysis{
		Query: "who knows go?",
		Comparison: &Comparison{
			BestCandidates: []CandidateAssessment{{
				Name:            "Ana",
				FileName:        "ana.pdf",
				Skills:          []string{"go"},
				ExperienceYears: &years,
				MatchScore:      90,
			}},
			TotalCandidatesAnalyzed: 1,
			Summary:                 "Ana.",
		},
		FilesAnalyzed: []string{"ana.pdf"},
	})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"query_analysis"`) {
		t.Fatalf("missing type tag: %s", data)
	}

	var back AnalysisResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != KindQueryAnalysis || back.Query == nil || back.Query.Comparison == nil {
		t.Fatalf("round trip lost structure: %+v", back)
	}
	if back.Query.Comparison.BestCandidates[0].Name != "Ana" {
		t.Fatalf("candidate lost: %+v", back.Query.Comparison)
	}
}

func TestQueryResultMarshalNarrative(t *testing.T) {
	result := QueryResult(QueryAnalysis{
		Query:         "skills?",
		Narrative:     "Analysis based on query: 'skills?'",
		FilesAnalyzed: []string{"cv.pdf"},
	})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back AnalysisResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Query == nil || back.Query.Comparison != nil {
		t.Fatalf("narrative form should stay unstructured: %+v", back)
	}
	if back.Query.Narrative != result.Query.Narrative {
		t.Fatalf("narrative = %q", back.Query.Narrative)
	}
}

func TestSummariesResultRoundTrip(t *testing.T) {
	name := "Bob"
	result := SummariesResult(map[string]SummaryEntry{
		"bob.pdf":   StructuredEntry(ResumeSummary{FileName: "bob.pdf", CandidateName: &name, Summary: "Senior."}),
		"tiny.pdf":  TextEntry("too short"),
		"broke.pdf": TextEntry("failed to summarize: boom"),
	})

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back AnalysisResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != KindIndividualSummaries || len(back.Summaries) != 3 {
		t.Fatalf("round trip lost entries: %+v", back)
	}
	if back.Summaries["tiny.pdf"].Text != "too short" {
		t.Fatalf("text entry = %+v", back.Summaries["tiny.pdf"])
	}
	if entry := back.Summaries["bob.pdf"]; entry.Structured == nil || *entry.Structured.CandidateName != "Bob" {
		t.Fatalf("structured entry = %+v", entry)
	}
}

func TestErrorResultWireShape(t *testing.T) {
	data, err := json.Marshal(ErrorResult("llm exploded"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"error":"llm exploded"}` {
		t.Fatalf("wire shape = %s", data)
	}

	var back AnalysisResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != KindError || back.ErrMsg != "llm exploded" {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestUnknownResultKindRejected(t *testing.T) {
	var result AnalysisResult
	if err := json.Unmarshal([]byte(`{"type":"mystery"}`), &result); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if err := json.Unmarshal([]byte(`{"something":"else"}`), &result); err == nil {
		t.Fatal("expected error for untagged object")
	}
}
