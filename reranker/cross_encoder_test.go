package reranker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrag/types"
)

type fakeScorer struct {
	loadCalls  int
	loadErr    error
	scoreErr   error
	batchSizes []int
	// scoreFor maps passage text to the score to return
	scoreFor map[string]float64
}

func (f *fakeScorer) Load() error {
	f.loadCalls++
	return f.loadErr
}

func (f *fakeScorer) Score(query string, passages []string) ([]float64, error) {
	if f.scoreErr != nil {
		return nil, f.scoreErr
	}
	f.batchSizes = append(f.batchSizes, len(passages))
	scores := make([]float64, len(passages))
	for i, p := range passages {
		scores[i] = f.scoreFor[p]
	}
	return scores, nil
}

func hydratedMatches(texts ...string) []types.Match {
	matches := make([]types.Match, len(texts))
	for i, text := range texts {
		meta := map[string]interface{}{}
		if text != "" {
			meta["text"] = text
		}
		matches[i] = types.SearchMatch{MatchID: text, MatchScore: 0.5, Meta: meta}
	}
	return matches
}

func TestCrossEncoderReorders(t *testing.T) {
	scorer := &fakeScorer{scoreFor: map[string]float64{"a": 0.1, "b": 0.9, "c": 0.5}}
	r := NewCrossEncoderReranker(scorer, 8, 32)

	reranked := r.Rerank("q", hydratedMatches("a", "b", "c"))
	require.Len(t, reranked, 3)
	assert.Equal(t, "b", reranked[0].ID())
	assert.Equal(t, "c", reranked[1].ID())
	assert.Equal(t, "a", reranked[2].ID())
}

func TestCrossEncoderTruncatesToMaxK(t *testing.T) {
	scorer := &fakeScorer{scoreFor: map[string]float64{"a": 0.4, "b": 0.3, "c": 0.2, "d": 0.1}}
	r := NewCrossEncoderReranker(scorer, 2, 32)
	assert.Len(t, r.Rerank("q", hydratedMatches("a", "b", "c", "d")), 2)
}

func TestCrossEncoderAllEmptyTextsPassthrough(t *testing.T) {
	scorer := &fakeScorer{}
	r := NewCrossEncoderReranker(scorer, 2, 32)

	matches := hydratedMatches("", "", "")
	reranked := r.Rerank("q", matches)
	require.Len(t, reranked, 2)
	assert.Equal(t, matches[0], reranked[0])
	assert.Zero(t, scorer.loadCalls)
}

func TestCrossEncoderScorerErrorPassthrough(t *testing.T) {
	scorer := &fakeScorer{scoreErr: errors.New("model unavailable")}
	r := NewCrossEncoderReranker(scorer, 2, 32)

	matches := hydratedMatches("a", "b", "c")
	reranked := r.Rerank("q", matches)
	require.Len(t, reranked, 2)
	// original order survives the failure
	assert.Equal(t, "a", reranked[0].ID())
	assert.Equal(t, "b", reranked[1].ID())
}

func TestCrossEncoderLoadErrorPassthrough(t *testing.T) {
	scorer := &fakeScorer{loadErr: errors.New("no endpoint")}
	r := NewCrossEncoderReranker(scorer, 8, 32)

	reranked := r.Rerank("q", hydratedMatches("a", "b"))
	assert.Len(t, reranked, 2)
	assert.Equal(t, "a", reranked[0].ID())
}

func TestCrossEncoderBatchesAndMemoizesLoad(t *testing.T) {
	scorer := &fakeScorer{scoreFor: map[string]float64{}}
	r := NewCrossEncoderReranker(scorer, 8, 2)

	matches := hydratedMatches("a", "b", "c", "d", "e")
	r.Rerank("q", matches)
	r.Rerank("q", matches)

	assert.Equal(t, []int{2, 2, 1, 2, 2, 1}, scorer.batchSizes)
	assert.Equal(t, 1, scorer.loadCalls)
}

func TestCrossEncoderEmpty(t *testing.T) {
	r := NewCrossEncoderReranker(&fakeScorer{}, 8, 32)
	assert.Empty(t, r.Rerank("q", nil))
}
