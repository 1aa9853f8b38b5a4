package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredibilityScore(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want int
	}{
		{"nothing", Signals{}, 0},
		{"fact checks only", Signals{HasFactChecks: true}, 50},
		{"summaries only", Signals{HasSummaries: true}, 20},
		{"sentiment at cutoff", Signals{Sentiment: 0.2}, 0},
		{"sentiment above cutoff", Signals{Sentiment: 0.21}, 15},
		{"negative sentiment", Signals{Sentiment: -0.9}, 0},
		{"density above cutoff", Signals{EntityDensity: 0.31}, 15},
		{"everything", Signals{HasFactChecks: true, HasSummaries: true, Sentiment: 1, EntityDensity: 1}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CredibilityScore(tt.in))
		})
	}
}

func TestCredibilityScore_Monotone(t *testing.T) {
	base := Signals{Sentiment: 0.5}
	withFacts := base
	withFacts.HasFactChecks = true
	assert.Greater(t, CredibilityScore(withFacts), CredibilityScore(base))
	assert.LessOrEqual(t, CredibilityScore(withFacts), 100)
}

func TestEntityDensity(t *testing.T) {
	assert.InDelta(t, 0.5, EntityDensity(2, "one two three four"), 1e-9)
	assert.InDelta(t, 3.0, EntityDensity(3, ""), 1e-9, "word count floors at one")
	assert.Zero(t, EntityDensity(0, "some words"))
}

func TestContentHash(t *testing.T) {
	a := ContentHash("The quick brown fox")
	assert.Len(t, a, 64)
	assert.Equal(t, a, ContentHash("The quick brown fox"))
	assert.NotEqual(t, a, ContentHash("The quick brown fox."))
}
