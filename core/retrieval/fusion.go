package retrieval

import (
	"sort"

	"github.com/google/uuid"

	"github.com/alexphommasathit/policyqa/model"
)

// ReciprocalRankFusion merges the dense and sparse result lists into one
// ranking. Every list contributes 1/(k+rank) per chunk with 1-based ranks,
// contributions for the same chunk id are summed, so a chunk found by both
// paths outranks one found by a single path at comparable positions. Ties
// keep first-seen order, dense list first. Returns at most finalCount
// results, best first.
func ReciprocalRankFusion(dense []*model.RankedResult, sparse []*model.RankedResult, k int, finalCount int) []*model.RankedResult {
	fused := make(map[uuid.UUID]*model.RankedResult)
	var order []uuid.UUID

	accumulate := func(results []*model.RankedResult) {
		for rank, result := range results {
			contribution := 1.0 / float64(k+rank+1)
			if existing, ok := fused[result.ID]; ok {
				existing.Score += contribution
				// The dense copy stays, but it picks up the lexical rank so
				// provenance shows both signals.
				if existing.LexicalRank == nil && result.LexicalRank != nil {
					existing.LexicalRank = result.LexicalRank
				}
				if existing.Similarity == nil && result.Similarity != nil {
					existing.Similarity = result.Similarity
				}
				continue
			}

			copied := *result
			copied.Score = contribution
			fused[result.ID] = &copied
			order = append(order, result.ID)
		}
	}
	accumulate(dense)
	accumulate(sparse)

	merged := make([]*model.RankedResult, 0, len(order))
	for _, id := range order {
		merged = append(merged, fused[id])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if finalCount >= 0 && len(merged) > finalCount {
		merged = merged[:finalCount]
	}
	return merged
}
