package retrieval

import (
	"sort"

	"github.com/Harshitk-cp/credence/internal/domain"
)

// DefaultRRFK is the rank offset used by Reciprocal Rank Fusion.
const DefaultRRFK = 60

// ReciprocalRankFusion merges ranked id lists. An id at 0-indexed rank r in any list
// adds 1/(r+k) to its score; the output is ordered by descending fused score, ties
// broken by first appearance. Only ranks matter, never the lists' raw scores.
func ReciprocalRankFusion(k int, lists ...[]string) []domain.RankedDocument {
	if k <= 0 {
		k = DefaultRRFK
	}

	scores := make(map[string]float64)
	var order []string
	for _, list := range lists {
		for rank, id := range list {
			if _, seen := scores[id]; !seen {
				order = append(order, id)
			}
			scores[id] += 1 / float64(rank+k)
		}
	}

	fused := make([]domain.RankedDocument, len(order))
	for i, id := range order {
		fused[i] = domain.RankedDocument{ID: id, Score: scores[id]}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}

// rankByScore orders candidates by descending score, keeping input order on ties.
func rankByScore(candidates []Candidate, scores []float64) []domain.RankedDocument {
	ranked := make([]domain.RankedDocument, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedDocument{ID: c.ID, Score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func ids(ranked []domain.RankedDocument) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}

// TopIDs returns the ids of the first n results (all of them when n <= 0).
func TopIDs(ranked []domain.RankedDocument, n int) []string {
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ids(ranked)
}
