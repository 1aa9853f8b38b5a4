// Package retrieval ranks candidate documents against a query with BM25, dense
// embeddings, or both fused by Reciprocal Rank Fusion.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
	"go.uber.org/zap"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeBM25   Mode = "bm25"
	ModeDense  Mode = "dense"
	ModeHybrid Mode = "hybrid"
)

var (
	ErrUnknownMode = errors.New("unknown retrieval mode")
	ErrNoEmbedder  = errors.New("dense retrieval requires an embedding client")
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeBM25, ModeDense, ModeHybrid:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Policy is the auto-mode cost/quality tradeoff. Large pools get the cheap lexical
// ranker; long queries embed well on their own and skip lexical scoring; everything
// else gets the full hybrid.
type Policy struct {
	BM25OnlyPoolSize     int
	DenseOnlyQueryTokens int
}

func DefaultPolicy() Policy {
	return Policy{BM25OnlyPoolSize: 50, DenseOnlyQueryTokens: 300}
}

func (p Policy) Select(poolSize, queryTokens int) Mode {
	switch {
	case poolSize > p.BM25OnlyPoolSize:
		return ModeBM25
	case queryTokens > p.DenseOnlyQueryTokens:
		return ModeDense
	default:
		return ModeHybrid
	}
}

type Candidate struct {
	ID        string
	Text      string
	Embedding []float32
}

// Query is the text to rank against. Embedding may be precomputed; it is only used
// by the dense ranker.
type Query struct {
	Text      string
	Embedding []float32
}

type Options struct {
	Policy Policy
	RRFK   int
	BM25   BM25Params
}

func DefaultOptions() Options {
	return Options{Policy: DefaultPolicy(), RRFK: DefaultRRFK, BM25: DefaultBM25Params()}
}

type Engine struct {
	embedder domain.EmbeddingClient
	opts     Options
	logger   *zap.Logger
}

// NewEngine builds a retrieval engine. embedder may be nil, in which case auto mode
// never picks a dense path.
func NewEngine(embedder domain.EmbeddingClient, opts Options, logger *zap.Logger) *Engine {
	if opts.RRFK <= 0 {
		opts.RRFK = DefaultRRFK
	}
	if opts.BM25 == (BM25Params{}) {
		opts.BM25 = DefaultBM25Params()
	}
	return &Engine{embedder: embedder, opts: opts, logger: logger}
}

// ResolveMode turns the requested mode into the concrete ranking path for this
// query and pool size.
func (e *Engine) ResolveMode(requested Mode, query string, poolSize int) Mode {
	if requested != ModeAuto && requested != "" {
		return requested
	}
	mode := e.opts.Policy.Select(poolSize, len(Tokenize(query)))
	if mode != ModeBM25 && e.embedder == nil {
		return ModeBM25
	}
	return mode
}

// Search orders the candidate pool by relevance to the query. It returns the
// concrete mode used alongside the ranking. An empty pool yields an empty result
// without touching any model.
func (e *Engine) Search(ctx context.Context, q Query, candidates []Candidate, requested Mode) ([]domain.RankedDocument, Mode, error) {
	mode := e.ResolveMode(requested, q.Text, len(candidates))
	if len(candidates) == 0 {
		return []domain.RankedDocument{}, mode, nil
	}
	if (mode == ModeDense || mode == ModeHybrid) && e.embedder == nil {
		return nil, mode, ErrNoEmbedder
	}

	switch mode {
	case ModeBM25:
		return e.rankBM25(q, candidates), mode, nil

	case ModeDense:
		ranked, err := e.rankDense(ctx, q, candidates)
		if err != nil {
			return nil, mode, err
		}
		return ranked, mode, nil

	case ModeHybrid:
		lexical := e.rankBM25(q, candidates)
		dense, err := e.rankDense(ctx, q, candidates)
		if err != nil {
			// The lexical ranking is still a valid answer; degrade instead of failing.
			e.logger.Warn("dense ranking failed, using bm25 only", zap.Error(err))
			return lexical, ModeBM25, nil
		}
		return ReciprocalRankFusion(e.opts.RRFK, ids(lexical), ids(dense)), mode, nil

	default:
		return nil, mode, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (e *Engine) rankBM25(q Query, candidates []Candidate) []domain.RankedDocument {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	return rankByScore(candidates, BM25Scores(q.Text, texts, e.opts.BM25))
}

func (e *Engine) rankDense(ctx context.Context, q Query, candidates []Candidate) ([]domain.RankedDocument, error) {
	scores, err := e.denseScores(ctx, q, candidates)
	if err != nil {
		return nil, err
	}
	return rankByScore(candidates, scores), nil
}
