package service

import "strings"

// Credibility rubric. Every point comes from one boolean signal.
const (
	factCheckPoints     = 50
	summaryPoints       = 20
	sentimentPoints     = 15
	densityPoints       = 15
	maxCredibility      = 100
	sentimentCutoff     = 0.2
	entityDensityCutoff = 0.3
)

// Signals are the inputs of the credibility rubric.
type Signals struct {
	HasFactChecks bool    `json:"has_fact_checks"`
	HasSummaries  bool    `json:"has_summaries"`
	Sentiment     float64 `json:"sentiment"`
	EntityDensity float64 `json:"entity_density"`
}

// CredibilityScore adds up the rubric points and caps the total at 100.
func CredibilityScore(s Signals) int {
	score := 0
	if s.HasFactChecks {
		score += factCheckPoints
	}
	if s.HasSummaries {
		score += summaryPoints
	}
	if s.Sentiment > sentimentCutoff {
		score += sentimentPoints
	}
	if s.EntityDensity > entityDensityCutoff {
		score += densityPoints
	}
	return min(score, maxCredibility)
}

// EntityDensity is entities per whitespace-separated word, with the word count
// floored at 1.
func EntityDensity(entityCount int, text string) float64 {
	words := max(len(strings.Fields(text)), 1)
	return float64(entityCount) / float64(words)
}
