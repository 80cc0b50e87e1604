package reranker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPScorer scores pairs against a cross-encoder inference service
// speaking the text-embeddings-inference rerank protocol
// (POST {"query": ..., "texts": [...]}).
type HTTPScorer struct {
	endpoint string
	model    string
	client   *http.Client
}

type rerankRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func NewHTTPScorer(endpoint, model string) *HTTPScorer {
	return &HTTPScorer{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Load verifies the service is reachable and has its model loaded by
// issuing one tiny scoring call.
func (s *HTTPScorer) Load() error {
	if s.endpoint == "" {
		return errors.New("reranker endpoint not configured")
	}
	_, err := s.Score("ping", []string{"ping"})
	return err
}

func (s *HTTPScorer) Score(query string, passages []string) ([]float64, error) {
	body, err := json.Marshal(rerankRequest{Model: s.model, Query: query, Texts: passages})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank service returned %d: %s", resp.StatusCode, detail)
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	scores := make([]float64, len(passages))
	for _, r := range results {
		if r.Index >= 0 && r.Index < len(scores) {
			scores[r.Index] = r.Score
		}
	}
	return scores, nil
}
