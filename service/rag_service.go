package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"bookrag/config"
	"bookrag/database"
	"bookrag/reranker"
	"bookrag/types"
)

// snippetClamp caps how many characters a single chunk may contribute
// to the context block.
const snippetClamp = 1200

// RagService runs the retrieval pipeline for one question: embed the
// query, search the vector index, hydrate matches with local chunk
// text, rerank, compose the context block and ask the LLM.
type RagService struct {
	embedder Embedder
	vectorDB database.VectorDatabase
	reranker reranker.Reranker
	ai       AIService
	chunks   map[string]types.ChunkRecord
	ask      config.AskConfig
}

func NewRagService(
	embedder Embedder,
	vectorDB database.VectorDatabase,
	rr reranker.Reranker,
	ai AIService,
	chunks map[string]types.ChunkRecord,
	ask config.AskConfig,
) *RagService {
	if chunks == nil {
		chunks = map[string]types.ChunkRecord{}
	}
	if ask.TopK <= 0 {
		ask.TopK = 5
	}
	if ask.MaxContextChars <= 0 {
		ask.MaxContextChars = 4000
	}
	return &RagService{
		embedder: embedder,
		vectorDB: vectorDB,
		reranker: rr,
		ai:       ai,
		chunks:   chunks,
		ask:      ask,
	}
}

// Retrieve embeds the query and returns hydrated matches in score order.
// No reranking is applied; this backs the search endpoint and CLI.
func (s *RagService) Retrieve(ctx context.Context, query string, limit int) ([]types.Match, error) {
	if limit <= 0 {
		limit = s.ask.TopK
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := s.vectorDB.QueryByVector(ctx, vectors[0], limit, "")
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	return s.hydrate(matches), nil
}

// Ask answers a question from the indexed book. When retrieval finds
// nothing the response carries an empty answer and a reason instead of
// an error.
func (s *RagService) Ask(ctx context.Context, req types.AskRequest) (*types.AskResponse, error) {
	contextText, sources, err := s.retrieveContext(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return &types.AskResponse{Reason: "no matches found"}, nil
	}

	answer, err := s.ai.Answer(ctx, BuildPrompt(contextText, req.Question))
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}
	return &types.AskResponse{Answer: answer, Sources: sources}, nil
}

// AskStream is Ask with the answer streamed through handler as it is
// generated. The returned response carries the accumulated answer.
func (s *RagService) AskStream(ctx context.Context, req types.AskRequest, handler types.StreamHandler) (*types.AskResponse, error) {
	contextText, sources, err := s.retrieveContext(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return &types.AskResponse{Reason: "no matches found"}, nil
	}

	var answer strings.Builder
	err = s.ai.AnswerStream(ctx, BuildPrompt(contextText, req.Question), func(delta string) {
		answer.WriteString(delta)
		handler(delta)
	})
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}
	return &types.AskResponse{Answer: answer.String(), Sources: sources}, nil
}

func (s *RagService) retrieveContext(ctx context.Context, req types.AskRequest) (string, []types.Source, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = s.ask.TopK
	}
	maxContextChars := req.MaxContextChars
	if maxContextChars <= 0 {
		maxContextChars = s.ask.MaxContextChars
	}

	vectors, err := s.embedder.Embed(ctx, []string{req.Question})
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed question: %w", err)
	}
	matches, err := s.vectorDB.QueryByVector(ctx, vectors[0], topK, "")
	if err != nil {
		return "", nil, fmt.Errorf("vector query failed: %w", err)
	}
	if len(matches) == 0 {
		return "", nil, nil
	}

	matches = s.hydrate(matches)
	if s.reranker != nil {
		matches = s.reranker.Rerank(req.Question, matches)
	}

	contextText, sources := buildContext(matches, maxContextChars)
	return contextText, sources, nil
}

// hydrate copies each match with the chunk text from the local store
// merged into its metadata. Matches without a local record pass through
// with empty text.
func (s *RagService) hydrate(matches []types.Match) []types.Match {
	hydrated := make([]types.Match, len(matches))
	for i, m := range matches {
		meta := make(map[string]interface{}, len(m.Metadata())+1)
		for k, v := range m.Metadata() {
			meta[k] = v
		}
		if record, ok := s.chunks[m.ID()]; ok {
			meta["text"] = record.Text
		}
		hydrated[i] = types.SearchMatch{MatchID: m.ID(), MatchScore: types.ScoreOf(m), Meta: meta}
	}
	return hydrated
}

// ClampRunes truncates s to at most limit runes, appending " ..." when
// anything was cut. Rune-based so multi-byte text is never split
// mid-character.
func ClampRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + " ..."
}

// buildContext renders the selected matches into the context block,
// clamping each snippet and stopping at the overall character budget.
// Both the clamp and the budget count runes. At least one snippet is
// always included so the prompt is never empty.
func buildContext(matches []types.Match, maxContextChars int) (string, []types.Source) {
	var parts []string
	var sources []types.Source
	used := 0

	for _, m := range matches {
		meta := m.Metadata()
		snippet := ClampRunes(strings.ReplaceAll(types.TextOf(m), "\n", " "), snippetClamp)
		size := utf8.RuneCountInString(snippet)
		if used+size > maxContextChars && len(parts) > 0 {
			break
		}

		pageStart := metaInt(meta, "pageStart")
		pageEnd := metaInt(meta, "pageEnd")
		chunkIndex := metaInt(meta, "chunkIndex")
		parts = append(parts, fmt.Sprintf("Source (page %d-%d, chunk %d):\n%s\n", pageStart, pageEnd, chunkIndex, snippet))
		sources = append(sources, types.Source{
			ID:         m.ID(),
			Score:      types.ScoreOf(m),
			BookTitle:  metaString(meta, "bookTitle"),
			ChunkIndex: chunkIndex,
			PageStart:  pageStart,
			PageEnd:    pageEnd,
			Source:     metaString(meta, "source"),
		})
		used += size
	}
	return strings.Join(parts, "\n\n"), sources
}

// metaInt coerces a metadata value to int; graphql numbers decode as
// float64.
func metaInt(meta map[string]interface{}, key string) int {
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
