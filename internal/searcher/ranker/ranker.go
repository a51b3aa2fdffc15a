// Package ranker orders summed term-frequency scores into a result list.
package ranker

import (
	"sort"
)

type ScoredDoc struct {
	DocID string `json:"doc_id"`
	Score int    `json:"score"`
}

// Rank sorts scores by descending score. Equal scores are ordered by seq
// (ascending), then by document ID, so the output is stable for a fixed
// ingestion history. A non-positive limit returns every document.
func Rank(scores map[string]int, seq func(docID string) int, limit int) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: score,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		if seq != nil {
			si, sj := seq(result[i].DocID), seq(result[j].DocID)
			if si != sj {
				return si < sj
			}
		}
		return result[i].DocID < result[j].DocID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
