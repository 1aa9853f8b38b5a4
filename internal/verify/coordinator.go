package verify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/credence/internal/domain"
)

type factCheckItem struct {
	entity string
	claims []domain.FactCheckClaim
}

type summaryItem struct {
	entity  string
	summary string
}

// Coordinator runs the fact-check hop and the knowledge-base hop for a document's
// entities at the same time and merges their output once both are done.
type Coordinator struct {
	verifier *Verifier
	logger   *zap.Logger
}

func NewCoordinator(verifier *Verifier, logger *zap.Logger) *Coordinator {
	return &Coordinator{verifier: verifier, logger: logger}
}

// Run blocks until both hops have finished. Each worker only sends on its own
// channel; the maps are built here after the join, so no partial result is ever
// observable. Every entity has a key in both maps.
func (c *Coordinator) Run(ctx context.Context, entities []string) domain.VerificationResult {
	result := domain.VerificationResult{
		FactChecks: make(map[string][]domain.FactCheckClaim, len(entities)),
		Summaries:  make(map[string]string, len(entities)),
	}
	if len(entities) == 0 {
		return result
	}

	factCh := make(chan factCheckItem, len(entities))
	summaryCh := make(chan summaryItem, len(entities))

	var g errgroup.Group
	g.Go(func() (err error) {
		defer c.recoverWorker("fact_check", &err)
		for entity, claims := range c.verifier.Verify(ctx, entities) {
			factCh <- factCheckItem{entity: entity, claims: claims}
		}
		return nil
	})
	g.Go(func() (err error) {
		defer c.recoverWorker("knowledge_base", &err)
		for _, entity := range entities {
			summaryCh <- summaryItem{entity: entity, summary: c.verifier.Summary(ctx, entity)}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.Error("verification worker failed", zap.Error(err))
	}
	close(factCh)
	close(summaryCh)

	for item := range factCh {
		result.FactChecks[item.entity] = item.claims
	}
	for item := range summaryCh {
		result.Summaries[item.entity] = item.summary
	}

	for _, e := range entities {
		if _, ok := result.FactChecks[e]; !ok {
			result.FactChecks[e] = []domain.FactCheckClaim{}
		}
		if _, ok := result.Summaries[e]; !ok {
			result.Summaries[e] = ""
		}
	}
	return result
}

func (c *Coordinator) recoverWorker(hop string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s worker panicked: %v", hop, r)
	}
}
