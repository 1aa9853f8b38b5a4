package retrieval

import (
	"math"
	"strings"
)

// BM25Params are the Okapi BM25 constants. Epsilon floors negative IDF values at
// Epsilon * mean(IDF) so very common terms never subtract from a score.
type BM25Params struct {
	K1      float64
	B       float64
	Epsilon float64
}

func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.5, B: 0.75, Epsilon: 0.25}
}

// Tokenize is the whitespace baseline tokenizer.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

type bm25Index struct {
	params   BM25Params
	docFreqs []map[string]int
	docLens  []float64
	avgdl    float64
	idf      map[string]float64
}

func newBM25Index(docs [][]string, params BM25Params) *bm25Index {
	idx := &bm25Index{
		params:   params,
		docFreqs: make([]map[string]int, len(docs)),
		docLens:  make([]float64, len(docs)),
		idf:      make(map[string]float64),
	}

	nd := make(map[string]int)
	total := 0
	for i, doc := range docs {
		total += len(doc)
		idx.docLens[i] = float64(len(doc))

		freqs := make(map[string]int, len(doc))
		for _, tok := range doc {
			freqs[tok]++
		}
		idx.docFreqs[i] = freqs
		for tok := range freqs {
			nd[tok]++
		}
	}
	if len(docs) > 0 {
		idx.avgdl = float64(total) / float64(len(docs))
	}

	n := float64(len(docs))
	var idfSum float64
	var negative []string
	for tok, freq := range nd {
		idf := math.Log(n-float64(freq)+0.5) - math.Log(float64(freq)+0.5)
		idx.idf[tok] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, tok)
		}
	}
	if len(idx.idf) > 0 {
		eps := params.Epsilon * idfSum / float64(len(idx.idf))
		for _, tok := range negative {
			idx.idf[tok] = eps
		}
	}
	return idx
}

func (idx *bm25Index) scores(query []string) []float64 {
	out := make([]float64, len(idx.docFreqs))
	if idx.avgdl == 0 {
		return out
	}
	k1, b := idx.params.K1, idx.params.B
	for _, q := range query {
		idf, ok := idx.idf[q]
		if !ok {
			continue
		}
		for i, freqs := range idx.docFreqs {
			tf := float64(freqs[q])
			if tf == 0 {
				continue
			}
			norm := tf + k1*(1-b+b*idx.docLens[i]/idx.avgdl)
			out[i] += idf * (tf * (k1 + 1) / norm)
		}
	}
	return out
}

// BM25Scores scores every document text against the query. The result is
// index-aligned with docs.
func BM25Scores(query string, docs []string, params BM25Params) []float64 {
	tokenized := make([][]string, len(docs))
	for i, d := range docs {
		tokenized[i] = Tokenize(d)
	}
	return newBM25Index(tokenized, params).scores(Tokenize(query))
}
