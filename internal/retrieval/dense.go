package retrieval

import (
	"context"
	"fmt"
)

// Dot is the dense similarity. Embeddings are expected to be normalized, so the
// dot product is cosine-equivalent. Mismatched dimensions score 0.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func (e *Engine) denseScores(ctx context.Context, q Query, candidates []Candidate) ([]float64, error) {
	queryVec := q.Embedding
	if len(queryVec) == 0 {
		v, err := e.embedder.Embed(ctx, q.Text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		queryVec = v
	}

	vectors := make([][]float32, len(candidates))
	var missing []int
	var texts []string
	for i, c := range candidates {
		if len(c.Embedding) > 0 {
			vectors[i] = c.Embedding
			continue
		}
		missing = append(missing, i)
		texts = append(texts, c.Text)
	}

	if len(texts) > 0 {
		embedded, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed candidates: %w", err)
		}
		if len(embedded) != len(texts) {
			return nil, fmt.Errorf("embed candidates: got %d vectors for %d texts", len(embedded), len(texts))
		}
		for j, idx := range missing {
			vectors[idx] = embedded[j]
		}
	}

	scores := make([]float64, len(candidates))
	for i, v := range vectors {
		scores[i] = Dot(queryVec, v)
	}
	return scores, nil
}
