package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/retrieval"
	"github.com/Harshitk-cp/credence/internal/service"
	"github.com/Harshitk-cp/credence/internal/store"
)

type fakeDocs struct {
	docs        map[string]*domain.Document
	registerErr error
}

func (f *fakeDocs) Register(_ context.Context, doc *domain.Document) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	if _, taken := f.docs[doc.ID]; taken {
		return fmt.Errorf("document %s: %w", doc.ID, store.ErrAlreadyExists)
	}
	doc.Status = domain.DocumentStatusRaw
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocs) Get(_ context.Context, id string) (*domain.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	return d, nil
}

type fakeRunner struct {
	limit int
	err   error
}

func (f *fakeRunner) RunOnce(_ context.Context, limit int) (*domain.BatchReport, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return &domain.BatchReport{Pending: 2, Processed: 2, Stored: 1, Duplicate: 1}, nil
}

type fakeSearcher struct {
	gotMode retrieval.Mode
	gotTopK int
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string, mode retrieval.Mode, topK int) ([]service.SearchHit, retrieval.Mode, error) {
	f.gotMode, f.gotTopK = mode, topK
	if f.err != nil {
		return nil, mode, f.err
	}
	return []service.SearchHit{{Document: domain.Document{ID: "d1", Text: query}, Score: 1.5}}, retrieval.ModeBM25, nil
}

func newRouter(docs *fakeDocs, runner *fakeRunner, searcher *fakeSearcher) http.Handler {
	dh := NewDocumentHandler(docs, runner, zap.NewNop())
	sh := NewSearchHandler(searcher, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/v1/documents", dh.Create)
	r.Get("/v1/documents/{id}", dh.GetByID)
	r.Post("/v1/documents/process", dh.Process)
	r.Post("/v1/search", sh.Search)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDocumentHandler_CreateAndGet(t *testing.T) {
	docs := &fakeDocs{docs: map[string]*domain.Document{}}
	h := newRouter(docs, &fakeRunner{}, &fakeSearcher{})

	rec := do(t, h, http.MethodPost, "/v1/documents", `{"id":"n1","text":"Markets rallied.","metadata":{"source":"wire"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/documents/n1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Markets rallied.", got.Text)
	assert.Equal(t, domain.DocumentStatusRaw, got.Status)
	assert.Equal(t, "wire", got.Metadata["source"])
}

func TestDocumentHandler_CreateExistingIDConflicts(t *testing.T) {
	scored := &domain.Document{ID: "n1", Text: "Markets rallied.", Status: domain.DocumentStatusReady, CredibilityScore: 85}
	docs := &fakeDocs{docs: map[string]*domain.Document{"n1": scored}}
	h := newRouter(docs, &fakeRunner{}, &fakeSearcher{})

	rec := do(t, h, http.MethodPost, "/v1/documents", `{"id":"n1","text":"Something else entirely."}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/documents/n1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Markets rallied.", got.Text)
	assert.Equal(t, domain.DocumentStatusReady, got.Status)
	assert.Equal(t, 85, got.CredibilityScore)
}

func TestDocumentHandler_CreateAssignsID(t *testing.T) {
	docs := &fakeDocs{docs: map[string]*domain.Document{}}
	h := newRouter(docs, &fakeRunner{}, &fakeSearcher{})

	rec := do(t, h, http.MethodPost, "/v1/documents", `{"text":"Markets rallied."}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got.ID, 36)
}

func TestDocumentHandler_CreateRejectsBadInput(t *testing.T) {
	h := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, &fakeRunner{}, &fakeSearcher{})

	for _, body := range []string{`{}`, `{"text":""}`, `not json`, `{"text":"x","bogus":1}`} {
		rec := do(t, h, http.MethodPost, "/v1/documents", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDocumentHandler_CreateStoreFailure(t *testing.T) {
	docs := &fakeDocs{docs: map[string]*domain.Document{}, registerErr: errors.New("db down")}
	h := newRouter(docs, &fakeRunner{}, &fakeSearcher{})

	rec := do(t, h, http.MethodPost, "/v1/documents", `{"text":"Markets rallied."}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestDocumentHandler_GetNotFound(t *testing.T) {
	h := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, &fakeRunner{}, &fakeSearcher{})
	rec := do(t, h, http.MethodGet, "/v1/documents/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_Process(t *testing.T) {
	runner := &fakeRunner{}
	h := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, runner, &fakeSearcher{})

	rec := do(t, h, http.MethodPost, "/v1/documents/process", `{"limit":25}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, runner.limit)

	var report domain.BatchReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 1, report.Duplicate)

	rec = do(t, h, http.MethodPost, "/v1/documents/process", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, runner.limit)
}

func TestDocumentHandler_ProcessBusy(t *testing.T) {
	runner := &fakeRunner{err: service.ErrProcessorBusy}
	h := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, runner, &fakeSearcher{})

	rec := do(t, h, http.MethodPost, "/v1/documents/process", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSearchHandler(t *testing.T) {
	searcher := &fakeSearcher{}
	h := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, &fakeRunner{}, searcher)

	rec := do(t, h, http.MethodPost, "/v1/search", `{"query":"rates","mode":"hybrid","top_k":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, retrieval.ModeHybrid, searcher.gotMode)
	assert.Equal(t, 3, searcher.gotTopK)

	var resp searchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, retrieval.ModeBM25, resp.Mode)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "d1", resp.Results[0].Document.ID)

	rec = do(t, h, http.MethodPost, "/v1/search", `{"query":"rates"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, retrieval.Mode(""), searcher.gotMode)
	assert.Equal(t, 10, searcher.gotTopK)
}

func TestSearchHandler_Errors(t *testing.T) {
	h := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, &fakeRunner{}, &fakeSearcher{})
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/search", `{"query":"x","mode":"fuzzy"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/search", `{"mode":"bm25"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/v1/search", `{"query":"x","top_k":500}`).Code)

	noEmbed := newRouter(&fakeDocs{docs: map[string]*domain.Document{}}, &fakeRunner{}, &fakeSearcher{err: retrieval.ErrNoEmbedder})
	assert.Equal(t, http.StatusBadRequest, do(t, noEmbed, http.MethodPost, "/v1/search", `{"query":"x","mode":"dense"}`).Code)
}
