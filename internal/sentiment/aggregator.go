// Package sentiment scores long documents with a length-limited classifier by
// splitting them into sentence-bounded chunks and averaging the chunk scores.
package sentiment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const DefaultChunkChars = 512

// Chunk is a run of whole sentences scored as one classifier input.
type Chunk struct {
	Text      string
	Sentences int
}

// ChunkSentences packs consecutive sentences into chunks whose summed sentence
// length stays within maxChars runes. A sentence longer than maxChars gets a chunk
// of its own. Empty chunks are never produced.
func ChunkSentences(sentences []string, maxChars int) []Chunk {
	var chunks []Chunk
	var current []string
	length := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Text: strings.Join(current, " "), Sentences: len(current)})
		current = nil
		length = 0
	}

	for _, s := range sentences {
		n := utf8.RuneCountInString(s)
		if length+n > maxChars {
			flush()
		}
		current = append(current, s)
		length += n
	}
	flush()
	return chunks
}

// WeightedAverage averages chunk scores weighted by each chunk's sentence count.
// It returns 0 when there is nothing to weigh.
func WeightedAverage(scores []float64, weights []int) float64 {
	var sum, total float64
	for i, s := range scores {
		if i >= len(weights) || weights[i] <= 0 {
			continue
		}
		sum += s * float64(weights[i])
		total += float64(weights[i])
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

type Aggregator struct {
	classifier domain.SentimentClassifier
	chunkChars int
}

func NewAggregator(classifier domain.SentimentClassifier, chunkChars int) *Aggregator {
	if chunkChars <= 0 {
		chunkChars = DefaultChunkChars
	}
	return &Aggregator{classifier: classifier, chunkChars: chunkChars}
}

// Score returns the document sentiment in [-1, 1]. Each chunk contributes +confidence
// for a positive label and -confidence otherwise.
func (a *Aggregator) Score(ctx context.Context, text string) (float64, error) {
	chunks := ChunkSentences(SplitSentences(text), a.chunkChars)
	if len(chunks) == 0 {
		return 0, nil
	}

	scores := make([]float64, len(chunks))
	weights := make([]int, len(chunks))
	for i, c := range chunks {
		label, confidence, err := a.classifier.ClassifySentiment(ctx, truncate(c.Text, a.chunkChars))
		if err != nil {
			return 0, fmt.Errorf("classify chunk %d: %w", i, err)
		}
		if label == domain.SentimentPositive {
			scores[i] = confidence
		} else {
			scores[i] = -confidence
		}
		weights[i] = c.Sentences
	}
	return WeightedAverage(scores, weights), nil
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes])
}
