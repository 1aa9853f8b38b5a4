package domain

import (
	"context"
)

type DocumentStore interface {
	Get(ctx context.Context, filter DocumentFilter) ([]Document, error)
	// Create inserts a new document and never overwrites an existing id.
	Create(ctx context.Context, d *Document) error
	// Add inserts the document or replaces the row with the same id.
	Add(ctx context.Context, d *Document) error
	MarkDuplicate(ctx context.Context, id, duplicateOf string) error
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type NERClient interface {
	Recognize(ctx context.Context, text string) ([]RecognizedEntity, error)
}

type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) (SentimentLabel, float64, error)
}

// CrossEncoder scores (query, candidate) pairs; the result is index-aligned with pairs.
type CrossEncoder interface {
	Score(ctx context.Context, pairs []QueryPair) ([]float64, error)
}

type ClaimSearchClient interface {
	Search(ctx context.Context, queries []string) ([]FactCheckClaim, error)
}

type KnowledgeBaseClient interface {
	Summary(ctx context.Context, entity string) (string, error)
}
