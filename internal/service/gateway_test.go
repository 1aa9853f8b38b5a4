package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/domain"
)

func newTestGateway(s domain.DocumentStore) (*Gateway, *[]time.Duration) {
	g := NewGateway(s, DefaultRetryPolicy(), zap.NewNop())
	var slept []time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return g, &slept
}

func TestGateway_CommitRetriesTransientFailures(t *testing.T) {
	s := newMemStore(domain.Document{ID: "a", Text: "hello", Status: domain.DocumentStatusRaw})
	s.addFailures = 2
	g, slept := newTestGateway(s)

	doc := s.doc("a")
	res, err := g.Commit(context.Background(), &doc)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeStored, res.Outcome)
	assert.Equal(t, 3, s.calls())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)
	assert.Equal(t, domain.DocumentStatusReady, s.doc("a").Status)
	assert.Equal(t, ContentHash("hello"), s.doc("a").ContentHash)
}

func TestGateway_CommitExhausted(t *testing.T) {
	s := newMemStore(domain.Document{ID: "a", Text: "hello", Status: domain.DocumentStatusRaw})
	s.addFailures = 10
	g, slept := newTestGateway(s)

	doc := s.doc("a")
	res, err := g.Commit(context.Background(), &doc)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrPersistenceExhausted)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Equal(t, 3, s.calls())
	assert.Len(t, *slept, 2, "no wait after the last attempt")
	assert.Equal(t, domain.DocumentStatusRaw, doc.Status)
}

func TestGateway_CommitDuplicate(t *testing.T) {
	s := newMemStore(
		domain.Document{ID: "a", Text: "same story", Status: domain.DocumentStatusRaw},
		domain.Document{ID: "b", Text: "same story", Status: domain.DocumentStatusRaw},
	)
	g, _ := newTestGateway(s)
	ctx := context.Background()

	first := s.doc("a")
	res, err := g.Commit(ctx, &first)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStored, res.Outcome)

	second := s.doc("b")
	res, err = g.Commit(ctx, &second)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDuplicate, res.Outcome)
	assert.Equal(t, "a", res.DuplicateOf)

	stored := s.doc("b")
	assert.Equal(t, domain.DocumentStatusRaw, stored.Status)
	assert.Equal(t, "a", stored.DuplicateOf)

	ready, err := g.Fetch(ctx, domain.DocumentFilter{ContentHash: ContentHash("same story"), Statuses: []domain.DocumentStatus{domain.DocumentStatusReady}})
	require.NoError(t, err)
	assert.Len(t, ready, 1)
}

func TestGateway_CommitRecommitSameDocument(t *testing.T) {
	s := newMemStore(domain.Document{ID: "a", Text: "story", Status: domain.DocumentStatusRaw})
	g, _ := newTestGateway(s)
	ctx := context.Background()

	doc := s.doc("a")
	_, err := g.Commit(ctx, &doc)
	require.NoError(t, err)

	res, err := g.Commit(ctx, &doc)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStored, res.Outcome, "a document is never a duplicate of itself")
}

func TestGateway_CommitLostRace(t *testing.T) {
	hash := ContentHash("breaking news")
	s := newMemStore(
		domain.Document{ID: "winner", Text: "breaking news", ContentHash: hash, Status: domain.DocumentStatusReady},
		domain.Document{ID: "loser", Text: "breaking news", Status: domain.DocumentStatusRaw},
	)
	s.hideHashOnce = true
	g, _ := newTestGateway(s)

	doc := s.doc("loser")
	res, err := g.Commit(context.Background(), &doc)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDuplicate, res.Outcome)
	assert.Equal(t, "winner", res.DuplicateOf)
	assert.Equal(t, 1, s.calls(), "unique violations are not retried")
	assert.Equal(t, "winner", s.doc("loser").DuplicateOf)
}

func TestGateway_FetchCancelledContext(t *testing.T) {
	s := newMemStore()
	s.getErr = context.Canceled
	g, slept := newTestGateway(s)

	_, err := g.Fetch(context.Background(), domain.DocumentFilter{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *slept)
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{Attempts: 4, BaseDelay: 2 * time.Second}
	assert.Equal(t, 2*time.Second, p.delay(1))
	assert.Equal(t, 4*time.Second, p.delay(2))
	assert.Equal(t, 8*time.Second, p.delay(3))
}
