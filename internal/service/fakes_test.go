package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/store"
)

// memStore is an in-memory DocumentStore that enforces the same unique ready
// content hash rule as the database.
type memStore struct {
	mu          sync.Mutex
	docs        map[string]domain.Document
	addFailures int
	addCalls    int
	getErr      error
	// hideHashOnce makes the next content-hash lookup come back empty.
	hideHashOnce bool
}

func newMemStore(docs ...domain.Document) *memStore {
	s := &memStore{docs: make(map[string]domain.Document)}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *memStore) Get(_ context.Context, f domain.DocumentFilter) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	if f.ContentHash != "" && s.hideHashOnce {
		s.hideHashOnce = false
		return nil, nil
	}

	var out []domain.Document
	for _, d := range s.docs {
		if !matches(d, f) {
			continue
		}
		d.ApplyReadDefaults(time.Now())
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.NewestFirst && !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(d domain.Document, f domain.DocumentFilter) bool {
	if len(f.IDs) > 0 && !contains(f.IDs, d.ID) {
		return false
	}
	if f.ContentHash != "" && d.ContentHash != f.ContentHash {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := d.Status == "" && f.IncludeMissingStatus
		for _, st := range f.Statuses {
			ok = ok || d.Status == st
		}
		if !ok {
			return false
		}
	}
	if f.ExcludeDuplicates && d.DuplicateOf != "" {
		return false
	}
	return !contains(f.ExcludeIDs, d.ID)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *memStore) Add(_ context.Context, d *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.addFailures > 0 {
		s.addFailures--
		return errors.New("connection reset by peer")
	}
	if d.Status == domain.DocumentStatusReady {
		for id, other := range s.docs {
			if id != d.ID && other.Status == domain.DocumentStatusReady && other.ContentHash == d.ContentHash {
				return store.ErrDuplicateContent
			}
		}
	}
	s.docs[d.ID] = *d
	return nil
}

func (s *memStore) Create(_ context.Context, d *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.addFailures > 0 {
		s.addFailures--
		return errors.New("connection reset by peer")
	}
	if _, taken := s.docs[d.ID]; taken {
		return store.ErrAlreadyExists
	}
	s.docs[d.ID] = *d
	return nil
}

func (s *memStore) MarkDuplicate(_ context.Context, id, duplicateOf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return store.ErrNotFound
	}
	d.DuplicateOf = duplicateOf
	s.docs[id] = d
	return nil
}

func (s *memStore) doc(id string) domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id]
}

func (s *memStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCalls
}

type fakeNER struct {
	spans []domain.RecognizedEntity
	err   error
	panic bool
}

func (f *fakeNER) Recognize(context.Context, string) ([]domain.RecognizedEntity, error) {
	if f.panic {
		panic("recognizer crashed")
	}
	return f.spans, f.err
}

type fakeSentiment struct {
	label      domain.SentimentLabel
	confidence float64
	err        error
}

func (f *fakeSentiment) ClassifySentiment(context.Context, string) (domain.SentimentLabel, float64, error) {
	return f.label, f.confidence, f.err
}

type fakeClaims struct {
	claims []domain.FactCheckClaim
	err    error
}

func (f *fakeClaims) Search(context.Context, []string) ([]domain.FactCheckClaim, error) {
	return f.claims, f.err
}

type fakeKB struct {
	summaries map[string]string
}

func (f *fakeKB) Summary(_ context.Context, entity string) (string, error) {
	return f.summaries[entity], nil
}
