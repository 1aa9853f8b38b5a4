package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/service"
	"github.com/Harshitk-cp/credence/internal/store"
)

type DocumentService interface {
	Register(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, id string) (*domain.Document, error)
}

type BatchRunner interface {
	RunOnce(ctx context.Context, limit int) (*domain.BatchReport, error)
}

type DocumentHandler struct {
	svc    DocumentService
	runner BatchRunner
	logger *zap.Logger
}

func NewDocumentHandler(svc DocumentService, runner BatchRunner, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, runner: runner, logger: logger}
}

type createDocumentRequest struct {
	ID        string         `json:"id,omitempty" validate:"omitempty,max=256"`
	Text      string         `json:"text" validate:"required"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := &domain.Document{
		ID:       strings.TrimSpace(req.ID),
		Text:     req.Text,
		Metadata: req.Metadata,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if req.Timestamp != nil {
		doc.Timestamp = req.Timestamp.UTC()
	}

	if err := h.svc.Register(r.Context(), doc); err != nil {
		if errors.Is(err, service.ErrDocumentTextEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "document id already exists")
			return
		}
		h.logger.Error("failed to register document", zap.String("doc_id", doc.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("failed to load document", zap.String("doc_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type processRequest struct {
	Limit int `json:"limit" validate:"gte=0"`
}

// Process runs one batch synchronously and returns its report.
func (h *DocumentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	report, err := h.runner.RunOnce(r.Context(), req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrProcessorBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("processing batch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
