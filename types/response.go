package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Source identifies one chunk that contributed to an answer.
type Source struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	BookTitle  string  `json:"book_title,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	PageStart  int     `json:"page_start"`
	PageEnd    int     `json:"page_end"`
	Source     string  `json:"source,omitempty"`
}

type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
	// Reason explains an empty answer, e.g. when retrieval found nothing.
	Reason string `json:"reason,omitempty"`
}

type MatchResult struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Matches []MatchResult `json:"matches"`
}
