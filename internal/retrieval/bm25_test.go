package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25Scores_PrefersMatchingDocuments(t *testing.T) {
	docs := []string{
		"the central bank raised interest rates again",
		"local team wins the championship final",
		"markets fell after the bank raised rates",
		"weather is sunny this weekend",
		"new phone released in stores",
		"film festival opens downtown",
		"city council debates budget",
		"storm warning issued for coast",
	}
	scores := BM25Scores("bank raised rates", docs, DefaultBM25Params())
	require.Len(t, scores, len(docs))

	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[2], scores[3])
	assert.Zero(t, scores[1])
	assert.Zero(t, scores[3])
}

func TestBM25Scores_ShorterDocumentWinsOnEqualTermFrequency(t *testing.T) {
	docs := []string{
		"election results announced",
		"election results announced today after a long night of counting in every district",
		"sports",
		"weather",
		"traffic",
		"music",
	}
	scores := BM25Scores("election", docs, DefaultBM25Params())
	assert.Greater(t, scores[0], scores[1])
}

func TestBM25Scores_IsCaseSensitiveWhitespaceTokenization(t *testing.T) {
	docs := []string{"Apple shares rise", "apple pie recipe", "nothing here"}
	scores := BM25Scores("Apple", docs, DefaultBM25Params())
	assert.NotZero(t, scores[0])
	assert.Zero(t, scores[1])
}

func TestBM25Scores_CommonTermsAreFloored(t *testing.T) {
	// "news" is in every document, so its raw IDF is negative and gets replaced by
	// epsilon * mean IDF.
	docs := []string{"news one", "news two", "news three", "news four extra"}
	scores := BM25Scores("news", docs, DefaultBM25Params())
	for _, s := range scores {
		assert.Greater(t, s, 0.0)
	}
}

func TestBM25Scores_EmptyInputs(t *testing.T) {
	assert.Empty(t, BM25Scores("query", nil, DefaultBM25Params()))

	scores := BM25Scores("", []string{"a b", "c"}, DefaultBM25Params())
	assert.Equal(t, []float64{0, 0}, scores)

	scores = BM25Scores("a", []string{"", ""}, DefaultBM25Params())
	assert.Equal(t, []float64{0, 0}, scores)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Tokenize("  a\tb\n c "))
	assert.Empty(t, Tokenize("   "))
}
