package types

// Match is a scored reference to an indexed chunk as returned by the
// vector store. Metadata may carry the chunk text under "text" once a
// match has been hydrated from the local chunk store, but callers must
// not rely on it being present.
type Match interface {
	ID() string
	Score() float64
	Metadata() map[string]interface{}
}

// SearchMatch is the plain value implementation of Match used by the
// vector store and by the retrieval pipeline.
type SearchMatch struct {
	MatchID    string
	MatchScore float64
	Meta       map[string]interface{}
}

func (m SearchMatch) ID() string { return m.MatchID }

func (m SearchMatch) Score() float64 { return m.MatchScore }

func (m SearchMatch) Metadata() map[string]interface{} { return m.Meta }

// ScoreOf returns the score of a match, coercing nil matches to zero.
func ScoreOf(m Match) float64 {
	if m == nil {
		return 0
	}
	return m.Score()
}

// TextOf returns the chunk text carried in match metadata, or "" when
// the match has not been hydrated.
func TextOf(m Match) string {
	if m == nil {
		return ""
	}
	meta := m.Metadata()
	if meta == nil {
		return ""
	}
	if text, ok := meta["text"].(string); ok {
		return text
	}
	return ""
}
