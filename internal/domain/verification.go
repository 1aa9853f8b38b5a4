package domain

type FactCheckClaim struct {
	Entity    string  `json:"entity"`
	ClaimText string  `json:"claim_text"`
	Claimant  string  `json:"claimant,omitempty"`
	Source    string  `json:"source"`
	URL       string  `json:"url,omitempty"`
	Rating    string  `json:"rating,omitempty"`
	Score     float64 `json:"score"`
}

// VerificationResult holds the merged output of both verification hops for one document.
type VerificationResult struct {
	FactChecks map[string][]FactCheckClaim `json:"fact_check_results"`
	Summaries  map[string]string           `json:"wikipedia_summaries"`
}

func (r VerificationResult) HasFactChecks() bool {
	for _, claims := range r.FactChecks {
		if len(claims) > 0 {
			return true
		}
	}
	return false
}

func (r VerificationResult) HasSummaries() bool {
	for _, s := range r.Summaries {
		if s != "" {
			return true
		}
	}
	return false
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
)

// QueryPair is one (query, candidate) input to a cross-encoder.
type QueryPair struct {
	Query     string
	Candidate string
}

// RankedDocument is one entry of a retrieval result.
type RankedDocument struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
