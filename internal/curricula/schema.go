package curricula

import "encoding/json"

// Strict-mode JSON schemas sent with every structured completion request.
// Strict mode requires every property listed under required and
// additionalProperties set to false at each level; optional fields are
// expressed as nullable types instead.

const queryAnalysisSchemaName = "query_analysis_response"

var queryAnalysisSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "best_candidates": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "filename": {"type": "string"},
          "skills": {"type": "array", "items": {"type": "string"}},
          "experience_years": {"type": ["integer", "null"]},
          "relevant_experience": {"type": "string"},
          "strengths": {"type": "array", "items": {"type": "string"}},
          "weaknesses": {"type": "array", "items": {"type": "string"}},
          "match_score": {"type": "number", "minimum": 0, "maximum": 100}
        },
        "required": ["name", "filename", "skills", "experience_years", "relevant_experience", "strengths", "weaknesses", "match_score"],
        "additionalProperties": false
      }
    },
    "total_candidates_analyzed": {"type": "integer"},
    "summary": {"type": "string"},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "next_steps": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["best_candidates", "total_candidates_analyzed", "summary", "recommendations", "next_steps"],
  "additionalProperties": false
}`)

const resumeSummarySchemaName = "resume_summary"

var resumeSummarySchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "filename": {"type": "string"},
    "candidate_name": {"type": ["string", "null"]},
    "summary": {"type": "string"},
    "key_skills": {"type": "array", "items": {"type": "string"}},
    "experience_highlights": {"type": "array", "items": {"type": "string"}},
    "education": {"type": ["string", "null"]},
    "contact_info": {"type": ["string", "null"]}
  },
  "required": ["filename", "candidate_name", "summary", "key_skills", "experience_highlights", "education", "contact_info"],
  "additionalProperties": false
}`)
