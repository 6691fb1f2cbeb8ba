package llm

import "fmt"

const recruiterSystem = "You are an assistant specialized in recruitment and candidate selection."

// QueryAnalysisPrompt builds the prompt for a recruiter-query comparison over
// the combined corpus of extracted resume texts.
func QueryAnalysisPrompt(corpus, query string) (system, prompt string) {
	prompt = fmt.Sprintf(`ANALYZE THE RESUMES PROVIDED AND ANSWER THE RECRUITER'S QUESTION.

RECRUITER'S QUESTION: %s

RESUMES ANALYZED:
%s

INSTRUCTIONS:
1. Analyze ONLY the actual content of the resumes provided
2. Do NOT invent information that is not in the resumes
3. If there is not enough information, be honest about it
4. Focus on the recruiter's specific question
5. Justify every assessment with resume content
6. Be direct and objective`, query, corpus)
	return recruiterSystem, prompt
}

// ResumeSummaryPrompt builds the prompt for a structured per-resume summary.
func ResumeSummaryPrompt(text string) (system, prompt string) {
	prompt = fmt.Sprintf(`GENERATE A STRUCTURED SUMMARY OF THE RESUME PROVIDED.

RESUME: %s

INSTRUCTIONS:
1. Extract the most relevant information
2. Identify name, skills, experience and education
3. Be concise but informative
4. Use professional language`, text)
	return recruiterSystem, prompt
}
