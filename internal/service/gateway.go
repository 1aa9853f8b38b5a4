package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/store"
)

var ErrPersistenceExhausted = errors.New("persistence retries exhausted")

// RetryPolicy is exponential backoff: the wait after failed attempt n (1-based) is
// BaseDelay * 2^(n-1). There is no wait after the last attempt.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 2 * time.Second}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	return p.BaseDelay << (attempt - 1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CommitResult reports what happened to one enriched document.
type CommitResult struct {
	Outcome     domain.ProcessOutcome
	DuplicateOf string
}

// Gateway is the only path between the pipeline and the document store. It retries
// store I/O and enforces content-hash dedup on commit.
type Gateway struct {
	store  domain.DocumentStore
	retry  RetryPolicy
	sleep  func(context.Context, time.Duration) error
	logger *zap.Logger
}

func NewGateway(s domain.DocumentStore, retry RetryPolicy, logger *zap.Logger) *Gateway {
	if retry.Attempts <= 0 {
		retry.Attempts = 1
	}
	return &Gateway{store: s, retry: retry, sleep: sleepContext, logger: logger}
}

// permanent errors are not worth another attempt.
func permanent(err error) bool {
	return errors.Is(err, store.ErrDuplicateContent) ||
		errors.Is(err, store.ErrAlreadyExists) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (g *Gateway) do(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= g.retry.Attempts; attempt++ {
		if err = fn(ctx); err == nil || permanent(err) {
			return err
		}
		g.logger.Warn("store operation failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("attempts", g.retry.Attempts),
			zap.Error(err),
		)
		if attempt == g.retry.Attempts {
			break
		}
		if serr := g.sleep(ctx, g.retry.delay(attempt)); serr != nil {
			return fmt.Errorf("%s: %w", op, serr)
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %w", ErrPersistenceExhausted, op, g.retry.Attempts, err)
}

// Fetch reads documents with retries.
func (g *Gateway) Fetch(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, error) {
	var docs []domain.Document
	err := g.do(ctx, "fetch", func(ctx context.Context) error {
		var err error
		docs, err = g.store.Get(ctx, f)
		return err
	})
	return docs, err
}

// Commit stores an enriched document as ready unless another ready document already
// has the same content hash, in which case the document is marked as a duplicate
// of it and left raw. doc.ContentHash and doc.Status are set on success.
func (g *Gateway) Commit(ctx context.Context, doc *domain.Document) (CommitResult, error) {
	doc.ContentHash = ContentHash(doc.Text)

	existing, err := g.readyWithHash(ctx, doc.ContentHash, doc.ID)
	if err != nil {
		return CommitResult{Outcome: domain.OutcomeFailed}, err
	}
	if existing != "" {
		return g.markDuplicate(ctx, doc, existing), nil
	}

	previous := doc.Status
	doc.Status = domain.DocumentStatusReady
	doc.DuplicateOf = ""
	err = g.do(ctx, "add", func(ctx context.Context) error {
		return g.store.Add(ctx, doc)
	})
	switch {
	case err == nil:
		return CommitResult{Outcome: domain.OutcomeStored}, nil

	case errors.Is(err, store.ErrDuplicateContent):
		// Lost a race with a concurrent writer of the same content.
		doc.Status = previous
		winner, ferr := g.readyWithHash(ctx, doc.ContentHash, doc.ID)
		if ferr != nil {
			return CommitResult{Outcome: domain.OutcomeFailed}, ferr
		}
		if winner == "" {
			return CommitResult{Outcome: domain.OutcomeFailed}, err
		}
		return g.markDuplicate(ctx, doc, winner), nil

	default:
		doc.Status = previous
		return CommitResult{Outcome: domain.OutcomeFailed}, err
	}
}

func (g *Gateway) readyWithHash(ctx context.Context, hash, selfID string) (string, error) {
	docs, err := g.Fetch(ctx, domain.DocumentFilter{
		ContentHash: hash,
		Statuses:    []domain.DocumentStatus{domain.DocumentStatusReady},
	})
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.ID != selfID {
			return d.ID, nil
		}
	}
	return "", nil
}

func (g *Gateway) markDuplicate(ctx context.Context, doc *domain.Document, existing string) CommitResult {
	g.logger.Info("duplicate content, skipping",
		zap.String("doc_id", doc.ID),
		zap.String("duplicate_of", existing),
	)
	doc.DuplicateOf = existing
	err := g.do(ctx, "mark_duplicate", func(ctx context.Context) error {
		return g.store.MarkDuplicate(ctx, doc.ID, existing)
	})
	if err != nil {
		g.logger.Warn("failed to mark duplicate", zap.String("doc_id", doc.ID), zap.Error(err))
	}
	return CommitResult{Outcome: domain.OutcomeDuplicate, DuplicateOf: existing}
}
