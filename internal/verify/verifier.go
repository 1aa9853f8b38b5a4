// Package verify implements two-hop entity verification: a knowledge-base summary
// lookup that refines the query for a batched claim search, followed by
// cross-encoder reranking of the claims found for each entity.
package verify

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const (
	DefaultBatchSize = 5
	// maxQueryRunes caps a summary-derived query so a batch stays within the claim
	// search service's query length limit.
	maxQueryRunes = 300
	// summaryTimeout bounds a shared knowledge-base lookup. It runs detached from
	// any one caller's deadline because other documents may be waiting on it.
	summaryTimeout = 30 * time.Second
)

type Verifier struct {
	kb        domain.KnowledgeBaseClient
	claims    domain.ClaimSearchClient
	reranker  domain.CrossEncoder
	batchSize int
	logger    *zap.Logger

	summaries singleflight.Group
}

// NewVerifier wires the two hops. reranker may be nil, in which case claims keep the
// order the search service returned them in.
func NewVerifier(kb domain.KnowledgeBaseClient, claims domain.ClaimSearchClient, reranker domain.CrossEncoder, batchSize int, logger *zap.Logger) *Verifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Verifier{
		kb:        kb,
		claims:    claims,
		reranker:  reranker,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Summary is hop 1 for a single entity. Lookup failures are logged and reported as
// an empty summary. Concurrent lookups of the same entity share one request, so a
// caller giving up early does not cancel it for the others.
func (v *Verifier) Summary(ctx context.Context, entity string) string {
	ch := v.summaries.DoChan(entity, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryTimeout)
		defer cancel()
		return v.kb.Summary(lookupCtx, entity)
	})

	select {
	case <-ctx.Done():
		v.logger.Warn("knowledge base lookup abandoned", zap.String("entity", entity), zap.Error(ctx.Err()))
		return ""
	case res := <-ch:
		if res.Err != nil {
			v.logger.Warn("knowledge base lookup failed", zap.String("entity", entity), zap.Error(res.Err))
			return ""
		}
		return res.Val.(string)
	}
}

// Verify runs hop 1, hop 2 and reranking for every entity. The result has one key
// per entity; a failure affects only the entities it touched, which get an empty
// claim list.
func (v *Verifier) Verify(ctx context.Context, entities []string) map[string][]domain.FactCheckClaim {
	results := make(map[string][]domain.FactCheckClaim, len(entities))
	if len(entities) == 0 {
		return results
	}

	queries := make([]string, len(entities))
	for i, e := range entities {
		queries[i] = refineQuery(e, v.Summary(ctx, e))
	}

	for start := 0; start < len(entities); start += v.batchSize {
		end := min(start+v.batchSize, len(entities))
		batch := entities[start:end]

		found, err := v.claims.Search(ctx, queries[start:end])
		if err != nil {
			v.logger.Warn("claim search failed",
				zap.Strings("entities", batch),
				zap.Error(err),
			)
			for _, e := range batch {
				results[e] = []domain.FactCheckClaim{}
			}
			continue
		}

		for _, e := range batch {
			results[e] = v.rank(ctx, e, attribute(e, found))
		}
	}
	return results
}

// attribute picks the claims from a batch response that mention the entity,
// case-insensitively. A claim naming several batch members is attributed to each.
func attribute(entity string, claims []domain.FactCheckClaim) []domain.FactCheckClaim {
	needle := strings.ToLower(entity)
	out := []domain.FactCheckClaim{}
	for _, c := range claims {
		if strings.Contains(strings.ToLower(c.ClaimText), needle) {
			c.Entity = entity
			out = append(out, c)
		}
	}
	return out
}

// rank orders claims by cross-encoder relevance to the entity. If scoring fails the
// search order is kept.
func (v *Verifier) rank(ctx context.Context, entity string, claims []domain.FactCheckClaim) []domain.FactCheckClaim {
	if len(claims) == 0 || v.reranker == nil {
		return claims
	}

	pairs := make([]domain.QueryPair, len(claims))
	for i, c := range claims {
		pairs[i] = domain.QueryPair{Query: entity, Candidate: c.ClaimText}
	}
	scores, err := v.reranker.Score(ctx, pairs)
	if err != nil || len(scores) != len(claims) {
		v.logger.Warn("claim rerank failed, keeping search order",
			zap.String("entity", entity),
			zap.Int("claims", len(claims)),
			zap.Int("scores", len(scores)),
			zap.Error(err),
		)
		return claims
	}

	for i := range claims {
		claims[i].Score = scores[i]
	}
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Score > claims[j].Score
	})
	return claims
}

// refineQuery uses the knowledge-base summary as the claim search query, falling
// back to the entity itself when there is none.
func refineQuery(entity, summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return entity
	}
	if utf8.RuneCountInString(summary) > maxQueryRunes {
		summary = string([]rune(summary)[:maxQueryRunes])
		if i := strings.LastIndexByte(summary, ' '); i > 0 {
			summary = summary[:i]
		}
	}
	return summary
}
