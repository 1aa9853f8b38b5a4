package service

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/buildconfig"
	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/domain"
	"github.com/Harshitk-cp/credence/internal/embedding"
	"github.com/Harshitk-cp/credence/internal/factcheck"
	"github.com/Harshitk-cp/credence/internal/inference"
	"github.com/Harshitk-cp/credence/internal/knowledge"
	"github.com/Harshitk-cp/credence/internal/llm"
	"github.com/Harshitk-cp/credence/internal/rerank"
	"github.com/Harshitk-cp/credence/internal/store"
)

// Backends that select the self-hosted model server or the configured LLM.
const (
	backendInference = "inference"
	backendLLM       = "llm"
	backendNone      = "none"
)

// modelClient is what both the model server and the LLM adapters provide.
type modelClient interface {
	domain.NERClient
	domain.SentimentClassifier
}

// DependenciesFromEnv builds every pipeline collaborator from the environment.
// NER and sentiment are required; the embedder and cross-encoder are dropped with
// a warning when they cannot be built, which leaves retrieval on bm25 and claims
// in search order.
func DependenciesFromEnv(db *pgxpool.Pool, cfg config.PipelineConfig, logger *zap.Logger) (Dependencies, error) {
	deps := Dependencies{
		Store:      store.NewDocumentStore(db),
		Claims:     factcheck.NewGoogleClient(config.FactCheckAPIKey(), config.FactCheckURL()),
		Knowledge:  knowledge.NewWikipediaClient(config.WikipediaURL(), "credence/"+buildconfig.Version()),
		DebugWrite: NewDebugWriter(cfg.DebugLevel, cfg.DebugDir),
	}

	var (
		inf       *inference.Client
		llmClient llm.Client
	)
	modelBackend := func(name string) (modelClient, error) {
		switch name {
		case backendInference:
			if inf == nil {
				inf = inference.NewClient(config.InferenceURL(), config.InferenceAPIKey())
			}
			return inf, nil
		case backendLLM:
			if llmClient == nil {
				c, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
				if err != nil {
					return nil, err
				}
				llmClient = c
			}
			return llmClient, nil
		default:
			return nil, fmt.Errorf("unknown model backend %q (valid options: inference, llm)", name)
		}
	}

	ner, err := modelBackend(config.NERProvider())
	if err != nil {
		return deps, fmt.Errorf("ner backend: %w", err)
	}
	deps.NER = ner

	classifier, err := modelBackend(config.SentimentProvider())
	if err != nil {
		return deps, fmt.Errorf("sentiment backend: %w", err)
	}
	deps.Sentiment = classifier

	provider := config.EmbeddingProvider()
	emb, err := embedding.NewClient(provider, config.EmbeddingAPIKey())
	switch {
	case err != nil:
		logger.Warn("embedding client unavailable, dense retrieval disabled", zap.String("provider", provider), zap.Error(err))
	case emb == nil:
		logger.Info("embeddings disabled, retrieval stays lexical")
	default:
		deps.Embedder = emb
		logger.Info("embedding client initialized", zap.String("provider", provider))
	}

	if provider := config.RerankProvider(); provider != backendNone {
		key := config.InferenceAPIKey()
		if provider == rerank.ProviderJina {
			key = config.JinaAPIKey()
		}
		ce, err := rerank.NewCrossEncoder(provider, key, config.InferenceURL())
		if err != nil {
			logger.Warn("cross-encoder unavailable, claims keep search order", zap.String("provider", provider), zap.Error(err))
		} else {
			deps.Reranker = ce
			logger.Info("cross-encoder initialized", zap.String("provider", provider))
		}
	}

	logger.Info("model backends initialized",
		zap.String("ner", config.NERProvider()),
		zap.String("sentiment", config.SentimentProvider()),
	)
	return deps, nil
}
