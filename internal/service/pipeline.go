package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/entity"
	"github.com/Harshitk-cp/credence/internal/retrieval"
	"github.com/Harshitk-cp/credence/internal/sentiment"
	"github.com/Harshitk-cp/credence/internal/store"
	"github.com/Harshitk-cp/credence/internal/verify"
)

var (
	ErrDocumentTextEmpty = errors.New("document text is empty")
	ErrProcessorBusy     = errors.New("a processing batch is already running")
)

// Dependencies are the external collaborators of the pipeline. Embedder and
// Reranker may be nil.
type Dependencies struct {
	Store      domain.DocumentStore
	NER        domain.NERClient
	Sentiment  domain.SentimentClassifier
	Embedder   domain.EmbeddingClient
	Reranker   domain.CrossEncoder
	Claims     domain.ClaimSearchClient
	Knowledge  domain.KnowledgeBaseClient
	DebugWrite *DebugWriter
}

// Pipeline enriches raw documents: entities, related articles, verification,
// sentiment and a credibility score, then commits them through the gateway.
type Pipeline struct {
	cfg         config.PipelineConfig
	mode        retrieval.Mode
	gateway     *Gateway
	extractor   *entity.Extractor
	engine      *retrieval.Engine
	coordinator *verify.Coordinator
	sentiment   *sentiment.Aggregator
	embedder    domain.EmbeddingClient
	debug       *DebugWriter
	logger      *zap.Logger
	now         func() time.Time
}

func NewPipeline(deps Dependencies, cfg config.PipelineConfig, logger *zap.Logger) (*Pipeline, error) {
	if deps.Store == nil || deps.NER == nil || deps.Sentiment == nil || deps.Claims == nil || deps.Knowledge == nil {
		return nil, errors.New("pipeline: store, ner, sentiment, claims and knowledge clients are required")
	}
	mode, err := retrieval.ParseMode(cfg.RetrievalMode)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	engine := retrieval.NewEngine(deps.Embedder, retrieval.Options{
		Policy: retrieval.Policy{
			BM25OnlyPoolSize:     cfg.BM25OnlyPoolSize,
			DenseOnlyQueryTokens: cfg.DenseOnlyQueryTokens,
		},
		RRFK: cfg.RRFK,
		BM25: retrieval.DefaultBM25Params(),
	}, logger)

	verifier := verify.NewVerifier(deps.Knowledge, deps.Claims, deps.Reranker, cfg.FactCheckBatchSize, logger)

	debug := deps.DebugWrite
	if debug == nil {
		debug = NewDebugWriter(cfg.DebugLevel, cfg.DebugDir)
	}

	return &Pipeline{
		cfg:         cfg,
		mode:        mode,
		gateway:     NewGateway(deps.Store, RetryPolicy{Attempts: cfg.StoreAttempts, BaseDelay: cfg.StoreBaseDelay}, logger),
		extractor:   entity.NewExtractor(deps.NER),
		engine:      engine,
		coordinator: verify.NewCoordinator(verifier, logger),
		sentiment:   sentiment.NewAggregator(deps.Sentiment, cfg.SentimentChunkChars),
		embedder:    deps.Embedder,
		debug:       debug,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Gateway exposes the pipeline's store gateway to callers that need plain reads.
func (p *Pipeline) Gateway() *Gateway {
	return p.gateway
}

// ProcessDocument enriches and commits one document. Collaborator failures degrade
// the enrichment instead of failing it; only an empty text or a failed commit
// produce a failed result.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc domain.Document) domain.DocumentResult {
	log := p.logger.With(zap.String("doc_id", doc.ID))
	result := domain.DocumentResult{DocumentID: doc.ID}

	if strings.TrimSpace(doc.Text) == "" {
		result.Outcome = domain.OutcomeFailed
		result.Error = ErrDocumentTextEmpty.Error()
		return result
	}

	entities, err := p.extractor.Extract(ctx, doc.Text)
	if err != nil {
		log.Warn("entity extraction failed", zap.Error(err))
	}
	names := domain.EntityNames(entities)

	var queryVec []float32
	if p.embedder != nil {
		queryVec, err = p.embedder.Embed(ctx, doc.Text)
		if err != nil {
			log.Warn("document embedding failed", zap.Error(err))
		}
	}

	related, mode := p.relatedArticles(ctx, log, doc, queryVec)
	verification := p.coordinator.Run(ctx, names)

	sentimentScore, err := p.sentiment.Score(ctx, doc.Text)
	if err != nil {
		log.Warn("sentiment scoring failed", zap.Error(err))
		sentimentScore = 0
	}

	signals := Signals{
		HasFactChecks: verification.HasFactChecks(),
		HasSummaries:  verification.HasSummaries(),
		Sentiment:     sentimentScore,
		EntityDensity: EntityDensity(len(names), doc.Text),
	}

	enriched := doc
	enriched.Metadata = make(map[string]any, len(doc.Metadata)+3)
	maps.Copy(enriched.Metadata, doc.Metadata)
	enriched.Metadata["retrieval_mode"] = string(mode)
	enriched.Metadata["named_entity_density"] = signals.EntityDensity
	enriched.Metadata["processed_at"] = p.now().UTC().Format(time.RFC3339)
	enriched.Entities = names
	enriched.RelatedArticles = related
	enriched.FactCheckResults = verification.FactChecks
	enriched.WikipediaSummaries = verification.Summaries
	enriched.SentimentScore = sentimentScore
	enriched.CredibilityScore = CredibilityScore(signals)
	if len(queryVec) > 0 {
		enriched.Embedding = queryVec
	}

	commit, err := p.gateway.Commit(ctx, &enriched)
	result.Outcome = commit.Outcome
	result.DuplicateOf = commit.DuplicateOf
	if err != nil {
		log.Error("commit failed", zap.Error(err))
		result.Error = err.Error()
		return result
	}

	if commit.Outcome == domain.OutcomeStored {
		result.Document = &enriched
		if _, err := p.debug.WriteDocument(&enriched); err != nil {
			log.Warn("debug dump failed", zap.Error(err))
		}
	}
	log.Info("document processed",
		zap.String("outcome", string(commit.Outcome)),
		zap.String("mode", string(mode)),
		zap.Int("entities", len(names)),
		zap.Int("related", len(related)),
		zap.Int("credibility", enriched.CredibilityScore),
	)
	return result
}

func (p *Pipeline) relatedArticles(ctx context.Context, log *zap.Logger, doc domain.Document, queryVec []float32) ([]string, retrieval.Mode) {
	pool, err := p.gateway.Fetch(ctx, domain.DocumentFilter{
		Statuses:             []domain.DocumentStatus{domain.DocumentStatusReady},
		IncludeMissingStatus: true,
		ExcludeDuplicates:    true,
		ExcludeIDs:           []string{doc.ID},
		NewestFirst:          true,
		Limit:                p.cfg.CandidateLimit,
	})
	if err != nil {
		log.Warn("candidate fetch failed", zap.Error(err))
		return []string{}, p.engine.ResolveMode(p.mode, doc.Text, 0)
	}

	candidates := make([]retrieval.Candidate, len(pool))
	for i, d := range pool {
		candidates[i] = retrieval.Candidate{ID: d.ID, Text: d.Text, Embedding: d.Embedding}
	}

	ranked, mode, err := p.engine.Search(ctx, retrieval.Query{Text: doc.Text, Embedding: queryVec}, candidates, p.mode)
	if err != nil {
		log.Warn("related article search failed", zap.String("mode", string(mode)), zap.Error(err))
		return []string{}, mode
	}
	return retrieval.TopIDs(ranked, p.cfg.RelatedTopN), mode
}

// ProcessPending processes raw documents (and documents with no status) that are
// not known duplicates, using a bounded worker pool. limit <= 0 falls back to the
// configured processing limit, where 0 means all. A failure in one document never
// stops the others.
func (p *Pipeline) ProcessPending(ctx context.Context, limit int) (*domain.BatchReport, error) {
	started := p.now()
	if limit <= 0 {
		limit = p.cfg.ProcessLimit
	}

	docs, err := p.gateway.Fetch(ctx, domain.DocumentFilter{
		Statuses:             []domain.DocumentStatus{domain.DocumentStatusRaw},
		IncludeMissingStatus: true,
		ExcludeDuplicates:    true,
		Limit:                limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pending documents: %w", err)
	}

	report := &domain.BatchReport{
		Pending:   len(docs),
		Results:   make([]domain.DocumentResult, len(docs)),
		StartedAt: started.UTC(),
	}
	if len(docs) == 0 {
		p.logger.Info("no pending documents")
		report.Duration = p.now().Sub(started)
		return report, nil
	}
	p.logger.Info("processing pending documents", zap.Int("count", len(docs)), zap.Int("workers", p.cfg.Workers))

	var g errgroup.Group
	g.SetLimit(max(p.cfg.Workers, 1))
	for i := range docs {
		i := i
		g.Go(func() error {
			report.Results[i] = p.processIsolated(ctx, docs[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Results {
		report.Processed++
		switch r.Outcome {
		case domain.OutcomeStored:
			report.Stored++
		case domain.OutcomeDuplicate:
			report.Duplicate++
		default:
			report.Failed++
		}
	}
	report.Duration = p.now().Sub(started)

	if path, err := p.debug.WriteBatch(report); err != nil {
		p.logger.Warn("debug batch dump failed", zap.Error(err))
	} else if path != "" {
		p.logger.Info("wrote debug output", zap.String("path", path))
	}

	p.logger.Info("batch complete",
		zap.Int("processed", report.Processed),
		zap.Int("stored", report.Stored),
		zap.Int("duplicate", report.Duplicate),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// processIsolated wraps one document in the per-document timeout and turns a
// panic into a failed result.
func (p *Pipeline) processIsolated(ctx context.Context, doc domain.Document) (res domain.DocumentResult) {
	if p.cfg.DocumentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.DocumentTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("document processing panicked", zap.String("doc_id", doc.ID), zap.Any("panic", r))
			res = domain.DocumentResult{
				DocumentID: doc.ID,
				Outcome:    domain.OutcomeFailed,
				Error:      fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return p.ProcessDocument(ctx, doc)
}

// SearchHit is one ranked ready document.
type SearchHit struct {
	Document domain.Document `json:"document"`
	Score    float64         `json:"score"`
}

// Search ranks ready documents against a free-text query.
func (p *Pipeline) Search(ctx context.Context, query string, mode retrieval.Mode, topK int) ([]SearchHit, retrieval.Mode, error) {
	if mode == "" {
		mode = p.mode
	}
	pool, err := p.gateway.Fetch(ctx, domain.DocumentFilter{
		Statuses:          []domain.DocumentStatus{domain.DocumentStatusReady},
		ExcludeDuplicates: true,
		NewestFirst:       true,
		Limit:             p.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, mode, fmt.Errorf("fetch search pool: %w", err)
	}

	byID := make(map[string]domain.Document, len(pool))
	candidates := make([]retrieval.Candidate, len(pool))
	for i, d := range pool {
		byID[d.ID] = d
		candidates[i] = retrieval.Candidate{ID: d.ID, Text: d.Text, Embedding: d.Embedding}
	}

	ranked, used, err := p.engine.Search(ctx, retrieval.Query{Text: query}, candidates, mode)
	if err != nil {
		return nil, used, err
	}
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	hits := make([]SearchHit, 0, len(ranked))
	for _, r := range ranked {
		d := byID[r.ID]
		d.Embedding = nil
		hits = append(hits, SearchHit{Document: d, Score: r.Score})
	}
	return hits, used, nil
}

// Get returns one document by id.
func (p *Pipeline) Get(ctx context.Context, id string) (*domain.Document, error) {
	docs, err := p.gateway.Fetch(ctx, domain.DocumentFilter{IDs: []string{id}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	return &docs[0], nil
}

// Register stores a new raw document for later processing. An id that is already
// stored is rejected with store.ErrAlreadyExists and the stored row is left as is.
func (p *Pipeline) Register(ctx context.Context, doc *domain.Document) error {
	if strings.TrimSpace(doc.Text) == "" {
		return ErrDocumentTextEmpty
	}
	doc.Status = domain.DocumentStatusRaw
	if doc.Timestamp.IsZero() {
		doc.Timestamp = p.now().UTC()
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	return p.gateway.do(ctx, "register", func(ctx context.Context) error {
		return p.gateway.store.Create(ctx, doc)
	})
}
