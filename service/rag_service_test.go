package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrag/config"
	"bookrag/database"
	"bookrag/reranker"
	"bookrag/types"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

type fakeVectorDB struct {
	matches  []types.Match
	err      error
	upserted []database.VectorRecord
	deleted  []string
}

func (f *fakeVectorDB) UpsertBatch(ctx context.Context, records []database.VectorRecord) error {
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeVectorDB) QueryByVector(ctx context.Context, vector []float32, topK int, bookSlug string) ([]types.Match, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeVectorDB) DeleteBook(ctx context.Context, bookSlug string) error {
	f.deleted = append(f.deleted, bookSlug)
	return nil
}

type fakeAI struct {
	answer string
	prompt string
	calls  int
}

func (f *fakeAI) Answer(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.answer, nil
}

func (f *fakeAI) AnswerStream(ctx context.Context, prompt string, handler types.StreamHandler) error {
	f.calls++
	f.prompt = prompt
	for _, part := range []string{"streamed ", "answer"} {
		handler(part)
	}
	return nil
}

func storeMatch(id string, score float64, pageStart, pageEnd, chunkIndex int) types.Match {
	return types.SearchMatch{
		MatchID:    id,
		MatchScore: score,
		Meta: map[string]interface{}{
			"bookTitle":  "Some Book",
			"pageStart":  float64(pageStart),
			"pageEnd":    float64(pageEnd),
			"chunkIndex": float64(chunkIndex),
			"source":     "some_book.pdf#pages=1-2",
		},
	}
}

func chunkIndexFor(records ...types.ChunkRecord) map[string]types.ChunkRecord {
	index := make(map[string]types.ChunkRecord, len(records))
	for _, r := range records {
		index[r.ID] = r
	}
	return index
}

func TestAskComposesContextAndSources(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{
		storeMatch("c1", 0.9, 1, 2, 1),
		storeMatch("c2", 0.85, 3, 3, 2),
	}}
	ai := &fakeAI{answer: "the answer"}
	rag := NewRagService(&fakeEmbedder{}, db, nil, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: "first passage\nwith newline"},
		types.ChunkRecord{ID: "c2", Text: "second passage"},
	), config.AskConfig{})

	resp, err := rag.Ask(context.Background(), types.AskRequest{Question: "what?"})
	require.NoError(t, err)
	assert.Equal(t, "the answer", resp.Answer)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "c1", resp.Sources[0].ID)
	assert.Equal(t, 1, resp.Sources[0].PageStart)
	assert.Equal(t, 2, resp.Sources[0].PageEnd)
	assert.Equal(t, "Some Book", resp.Sources[0].BookTitle)

	// snippets flow into the prompt with newlines flattened
	assert.Contains(t, ai.prompt, "Source (page 1-2, chunk 1):")
	assert.Contains(t, ai.prompt, "first passage with newline")
	assert.Contains(t, ai.prompt, "QUESTION: what?")
}

func TestAskNoMatches(t *testing.T) {
	ai := &fakeAI{answer: "unused"}
	rag := NewRagService(&fakeEmbedder{}, &fakeVectorDB{}, nil, ai, nil, config.AskConfig{})

	resp, err := rag.Ask(context.Background(), types.AskRequest{Question: "anything?"})
	require.NoError(t, err)
	assert.Empty(t, resp.Answer)
	assert.Equal(t, "no matches found", resp.Reason)
	assert.Zero(t, ai.calls)
}

func TestAskClampsLongSnippets(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{storeMatch("c1", 0.9, 1, 1, 1)}}
	ai := &fakeAI{answer: "ok"}
	long := strings.Repeat("x", snippetClamp+500)
	rag := NewRagService(&fakeEmbedder{}, db, nil, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: long},
	), config.AskConfig{})

	_, err := rag.Ask(context.Background(), types.AskRequest{Question: "q"})
	require.NoError(t, err)
	assert.Contains(t, ai.prompt, strings.Repeat("x", snippetClamp)+" ...")
	assert.NotContains(t, ai.prompt, strings.Repeat("x", snippetClamp+1))
}

func TestAskHonorsContextBudget(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{
		storeMatch("c1", 0.9, 1, 1, 1),
		storeMatch("c2", 0.8, 2, 2, 2),
	}}
	ai := &fakeAI{answer: "ok"}
	rag := NewRagService(&fakeEmbedder{}, db, nil, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: strings.Repeat("a", 100)},
		types.ChunkRecord{ID: "c2", Text: strings.Repeat("b", 100)},
	), config.AskConfig{})

	resp, err := rag.Ask(context.Background(), types.AskRequest{Question: "q", MaxContextChars: 150})
	require.NoError(t, err)
	// only the first snippet fits the budget
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "c1", resp.Sources[0].ID)
}

func TestAskAppliesReranker(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{
		storeMatch("c1", 0.9, 1, 1, 1),
		storeMatch("c2", 0.3, 2, 2, 2), // below the floor
	}}
	ai := &fakeAI{answer: "ok"}
	rr := reranker.NewDynamicReranker(0.35, 0, 1.0, 8)
	rag := NewRagService(&fakeEmbedder{}, db, rr, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: "kept"},
		types.ChunkRecord{ID: "c2", Text: "dropped"},
	), config.AskConfig{})

	resp, err := rag.Ask(context.Background(), types.AskRequest{Question: "q"})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "c1", resp.Sources[0].ID)
	assert.NotContains(t, ai.prompt, "dropped")
}

func TestAskEmbedErrorPropagates(t *testing.T) {
	rag := NewRagService(&fakeEmbedder{err: errors.New("rate limited")}, &fakeVectorDB{}, nil, &fakeAI{}, nil, config.AskConfig{})
	_, err := rag.Ask(context.Background(), types.AskRequest{Question: "q"})
	assert.ErrorContains(t, err, "rate limited")
}

func TestAskStreamAccumulatesAnswer(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{storeMatch("c1", 0.9, 1, 1, 1)}}
	ai := &fakeAI{}
	rag := NewRagService(&fakeEmbedder{}, db, nil, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: "passage"},
	), config.AskConfig{})

	var deltas []string
	resp, err := rag.AskStream(context.Background(), types.AskRequest{Question: "q"}, func(delta string) {
		deltas = append(deltas, delta)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"streamed ", "answer"}, deltas)
	assert.Equal(t, "streamed answer", resp.Answer)
}

func TestAskUsesConfiguredDefaults(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{
		storeMatch("c1", 0.9, 1, 1, 1),
		storeMatch("c2", 0.8, 2, 2, 2),
	}}
	ai := &fakeAI{answer: "ok"}
	rag := NewRagService(&fakeEmbedder{}, db, nil, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: "first"},
		types.ChunkRecord{ID: "c2", Text: "second"},
	), config.AskConfig{TopK: 1, MaxContextChars: 500})

	// no per-request override: the configured top_k caps retrieval
	resp, err := rag.Ask(context.Background(), types.AskRequest{Question: "q"})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "c1", resp.Sources[0].ID)

	// an explicit request value still wins over the configured default
	resp, err = rag.Ask(context.Background(), types.AskRequest{Question: "q", TopK: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Sources, 2)
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "short", ClampRunes("short", 10))
	assert.Equal(t, "abc ...", ClampRunes("abcdef", 3))
	// never splits a multi-byte rune
	assert.Equal(t, "ééé ...", ClampRunes("ééééé", 3))
}

func TestContextBudgetCountsRunes(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{
		storeMatch("c1", 0.9, 1, 1, 1),
		storeMatch("c2", 0.8, 2, 2, 2),
	}}
	ai := &fakeAI{answer: "ok"}
	// 60 runes each but 120 bytes; both fit a 150-rune budget
	rag := NewRagService(&fakeEmbedder{}, db, nil, ai, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: strings.Repeat("é", 60)},
		types.ChunkRecord{ID: "c2", Text: strings.Repeat("ü", 60)},
	), config.AskConfig{})

	resp, err := rag.Ask(context.Background(), types.AskRequest{Question: "q", MaxContextChars: 150})
	require.NoError(t, err)
	assert.Len(t, resp.Sources, 2)
}

func TestRetrieveHydratesMatches(t *testing.T) {
	db := &fakeVectorDB{matches: []types.Match{storeMatch("c1", 0.9, 1, 1, 1)}}
	rag := NewRagService(&fakeEmbedder{}, db, nil, nil, chunkIndexFor(
		types.ChunkRecord{ID: "c1", Text: "local text"},
	), config.AskConfig{})

	matches, err := rag.Retrieve(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "local text", types.TextOf(matches[0]))
}
