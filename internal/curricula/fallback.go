package curricula

import (
	"fmt"
	"sort"
	"strings"
)

// keywordCategories drives the degraded-tier query analysis: each category
// counts how many of its indicator terms occur in the corpus.
var keywordCategories = map[string][]string{
	"python":     {"python", "django", "flask", "fastapi"},
	"java":       {"java", "spring", "hibernate"},
	"javascript": {"javascript", "react", "vue", "angular", "node.js"},
	"frontend":   {"html", "css", "react", "vue", "angular"},
	"backend":    {"python", "java", "node.js", "php", "c#"},
	"database":   {"sql", "mysql", "postgresql", "mongodb", "redis"},
	"cloud":      {"aws", "azure", "gcp", "docker", "kubernetes"},
	"mobile":     {"android", "ios", "react native", "flutter"},
	"ai":         {"machine learning", "ai", "artificial intelligence", "tensorflow", "pytorch"},
	"devops":     {"docker", "kubernetes", "jenkins", "gitlab", "ci/cd"},
}

// keywordNarrative produces the plain-text query answer used when no LLM
// backend is configured. Output is deterministic for a given corpus.
func keywordNarrative(corpus, query string) string {
	textLower := strings.ToLower(corpus)

	matches := make(map[string]int)
	for category, words := range keywordCategories {
		count := 0
		for _, word := range words {
			if strings.Contains(textLower, word) {
				count++
			}
		}
		if count > 0 {
			matches[category] = count
		}
	}

	categories := make([]string, 0, len(matches))
	for category := range matches {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis based on query: '%s'\n\n", query)
	b.WriteString("Skills found:\n")
	if len(categories) == 0 {
		b.WriteString("- No specific skills found\n")
	}
	for _, category := range categories {
		fmt.Fprintf(&b, "- %s: %d skills\n", titleCase(category), matches[category])
	}
	fmt.Fprintf(&b, "\nSummary: the text contains %d words and %d skill categories identified.",
		len(strings.Fields(corpus)), len(matches))
	return b.String()
}

const (
	extractiveMinLen      = 100
	extractiveMinSentence = 20
	extractiveScanWindow  = 5
	extractiveMaxKeep     = 3
	extractiveHeadLen     = 200
)

// extractiveSummary produces a cheap summary without an LLM: short texts
// pass through verbatim, otherwise the first few substantial sentences
// are stitched together.
func extractiveSummary(text string) string {
	if len(text) < extractiveMinLen {
		return text
	}

	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) > extractiveScanWindow {
		sentences = sentences[:extractiveScanWindow]
	}

	kept := make([]string, 0, extractiveMaxKeep)
	for _, sentence := range sentences {
		if len(sentence) > extractiveMinSentence {
			kept = append(kept, sentence)
			if len(kept) >= extractiveMaxKeep {
				break
			}
		}
	}

	if len(kept) == 0 {
		if len(text) <= extractiveHeadLen {
			return text
		}
		return text[:extractiveHeadLen] + "..."
	}
	return strings.Join(kept, ". ") + "."
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
