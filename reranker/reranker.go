// Package reranker narrows vector search results down to the matches
// worth showing the language model.
package reranker

import (
	"fmt"
	"strings"

	"bookrag/config"
	"bookrag/types"
)

// Reranker filters and reorders a score-descending list of matches.
type Reranker interface {
	Rerank(query string, matches []types.Match) []types.Match
}

// New builds a reranker from configuration. Supported types are "none"
// (cap at max_k only), "dynamic" (score-gap selection) and "cross"
// (cross-encoder rescoring).
func New(cfg config.RerankerConfig) (Reranker, error) {
	maxK := cfg.MaxK
	if maxK <= 0 {
		maxK = 8
	}
	switch strings.ToLower(cfg.Type) {
	case "", "none", "off", "identity":
		return NewDynamicReranker(0, 0, 1.0, maxK), nil
	case "dynamic", "threshold":
		return NewDynamicReranker(cfg.MinScore, cfg.RelThreshold, cfg.GapThreshold, maxK), nil
	case "cross", "cross-encoder", "crossencoder":
		scorer := NewHTTPScorer(cfg.Endpoint, cfg.Model)
		return NewCrossEncoderReranker(scorer, maxK, cfg.BatchSize), nil
	}
	return nil, fmt.Errorf("unknown reranker type %q", cfg.Type)
}
