package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/retrieval"
	"github.com/Harshitk-cp/credence/internal/service"
)

type Searcher interface {
	Search(ctx context.Context, query string, mode retrieval.Mode, topK int) ([]service.SearchHit, retrieval.Mode, error)
}

type SearchHandler struct {
	svc    Searcher
	logger *zap.Logger
}

func NewSearchHandler(svc Searcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
	Mode  string `json:"mode,omitempty"`
	TopK  int    `json:"top_k,omitempty" validate:"gte=0,lte=100"`
}

type searchResponse struct {
	Mode    retrieval.Mode      `json:"mode"`
	Results []service.SearchHit `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// An omitted mode defers to the configured pipeline mode.
	var mode retrieval.Mode
	if req.Mode != "" {
		m, err := retrieval.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}
	topK := req.TopK
	if topK == 0 {
		topK = 10
	}

	hits, used, err := h.svc.Search(r.Context(), req.Query, mode, topK)
	if err != nil {
		if errors.Is(err, retrieval.ErrNoEmbedder) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("search failed", zap.String("mode", string(used)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Mode: used, Results: hits})
}
