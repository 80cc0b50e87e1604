package reranker

import "bookrag/types"

// DynamicReranker keeps a prefix of the ranked matches using three
// cutoffs: an absolute score floor, a fraction of the top score, and a
// maximum drop between consecutive accepted scores. Peaked score
// distributions keep few matches, flat ones keep up to maxK.
type DynamicReranker struct {
	minScore     float64
	relThreshold float64
	gapThreshold float64
	maxK         int
}

func NewDynamicReranker(minScore, relThreshold, gapThreshold float64, maxK int) *DynamicReranker {
	if maxK <= 0 {
		maxK = 8
	}
	return &DynamicReranker{
		minScore:     minScore,
		relThreshold: relThreshold,
		gapThreshold: gapThreshold,
		maxK:         maxK,
	}
}

func (r *DynamicReranker) Rerank(query string, matches []types.Match) []types.Match {
	if len(matches) == 0 {
		return nil
	}
	topScore := types.ScoreOf(matches[0])
	prev := topScore

	var selected []types.Match
	for i, m := range matches {
		score := types.ScoreOf(m)
		if score < r.minScore {
			break
		}
		if score < topScore*r.relThreshold {
			break
		}
		if i > 0 && prev-score > r.gapThreshold {
			break
		}
		selected = append(selected, m)
		prev = score
		if len(selected) >= r.maxK {
			break
		}
	}
	return selected
}
