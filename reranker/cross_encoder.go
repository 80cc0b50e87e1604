package reranker

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"bookrag/types"
)

// PairScorer scores (query, passage) pairs, returning one relevance
// score per passage.
type PairScorer interface {
	Load() error
	Score(query string, passages []string) ([]float64, error)
}

// CrossEncoderReranker rescores matches with a pairwise model, reorders
// by the new scores and truncates to maxK. Rescoring is an optimization,
// never a correctness requirement: any failure degrades to the original
// vector-store ranking.
type CrossEncoderReranker struct {
	scorer    PairScorer
	maxK      int
	batchSize int

	mu     sync.Mutex
	loaded bool
}

func NewCrossEncoderReranker(scorer PairScorer, maxK, batchSize int) *CrossEncoderReranker {
	if maxK <= 0 {
		maxK = 8
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	return &CrossEncoderReranker{scorer: scorer, maxK: maxK, batchSize: batchSize}
}

func (r *CrossEncoderReranker) Rerank(query string, matches []types.Match) []types.Match {
	if len(matches) == 0 {
		return nil
	}

	texts := make([]string, len(matches))
	allEmpty := true
	for i, m := range matches {
		texts[i] = types.TextOf(m)
		if texts[i] != "" {
			allEmpty = false
		}
	}
	if allEmpty {
		// nothing to score against: keep the vector-store order
		return truncate(matches, r.maxK)
	}

	scores, err := r.score(query, texts)
	if err != nil {
		log.Printf("Cross-encoder scoring failed, keeping original order: %v", err)
		return truncate(matches, r.maxK)
	}

	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	reranked := make([]types.Match, 0, min(len(matches), r.maxK))
	for _, i := range order {
		if len(reranked) == r.maxK {
			break
		}
		reranked = append(reranked, matches[i])
	}
	return reranked
}

func (r *CrossEncoderReranker) score(query string, texts []string) ([]float64, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(texts))
	for start := 0; start < len(texts); start += r.batchSize {
		end := min(start+r.batchSize, len(texts))
		batch, err := r.scorer.Score(query, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("scorer returned %d scores for %d passages", len(batch), end-start)
		}
		scores = append(scores, batch...)
	}
	return scores, nil
}

// ensureLoaded initializes the scorer once per reranker instance.
// A failed load is retried on the next call.
func (r *CrossEncoderReranker) ensureLoaded() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	if err := r.scorer.Load(); err != nil {
		return err
	}
	r.loaded = true
	return nil
}

func truncate(matches []types.Match, maxK int) []types.Match {
	if len(matches) <= maxK {
		return matches
	}
	return matches[:maxK]
}
