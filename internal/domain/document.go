package domain

import (
	"time"
)

type DocumentStatus string

const (
	DocumentStatusRaw   DocumentStatus = "raw"
	DocumentStatusReady DocumentStatus = "ready"
)

func ValidDocumentStatus(s string) bool {
	switch DocumentStatus(s) {
	case DocumentStatusRaw, DocumentStatusReady:
		return true
	}
	return false
}

// Document is a news article as held by the document store. Ingestion creates it
// with status raw; the pipeline fills the enrichment fields and flips it to ready.
type Document struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	ContentHash string         `json:"content_hash,omitempty"`
	Status      DocumentStatus `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	Entities           []string                    `json:"entities,omitempty"`
	RelatedArticles    []string                    `json:"related_articles,omitempty"`
	FactCheckResults   map[string][]FactCheckClaim `json:"fact_check_results,omitempty"`
	WikipediaSummaries map[string]string           `json:"wikipedia_summaries,omitempty"`
	SentimentScore     float64                     `json:"sentiment_score"`
	CredibilityScore   int                         `json:"credibility_score"`

	Embedding   []float32 `json:"-"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplyReadDefaults repairs fields that upstream ingestion may have left unset.
// Stores call it once per row at read time; nothing downstream re-checks.
func (d *Document) ApplyReadDefaults(now time.Time) {
	if d.Status == "" {
		d.Status = DocumentStatusRaw
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = now.UTC()
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
}

// DocumentFilter selects documents from the store. Zero values mean "no constraint".
type DocumentFilter struct {
	IDs         []string
	ContentHash string
	Statuses    []DocumentStatus
	// IncludeMissingStatus also matches rows whose status was never set.
	IncludeMissingStatus bool
	ExcludeDuplicates    bool
	ExcludeIDs           []string
	NewestFirst          bool
	Limit                int
}

// ProcessOutcome is the per-document result of a pipeline pass.
type ProcessOutcome string

const (
	OutcomeStored    ProcessOutcome = "stored"
	OutcomeDuplicate ProcessOutcome = "duplicate"
	OutcomeFailed    ProcessOutcome = "failed"
)

type DocumentResult struct {
	DocumentID  string         `json:"document_id"`
	Outcome     ProcessOutcome `json:"outcome"`
	DuplicateOf string         `json:"duplicate_of,omitempty"`
	Error       string         `json:"error,omitempty"`
	Document    *Document      `json:"document,omitempty"`
}

type BatchReport struct {
	Pending   int              `json:"pending"`
	Processed int              `json:"processed"`
	Stored    int              `json:"stored"`
	Duplicate int              `json:"duplicate"`
	Failed    int              `json:"failed"`
	Results   []DocumentResult `json:"results"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
}
