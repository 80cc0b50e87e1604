package types

type AskRequest struct {
	Question        string `json:"question"`
	TopK            int    `json:"top_k,omitempty"`
	MaxContextChars int    `json:"max_context_chars,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}
