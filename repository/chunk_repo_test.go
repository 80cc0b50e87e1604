package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrag/types"
)

func writeRecords(t *testing.T, repo *ChunkRepo, slug string, texts ...string) {
	t.Helper()
	writer, err := repo.NewWriter(slug)
	require.NoError(t, err)
	defer writer.Close()
	for i, text := range texts {
		require.NoError(t, writer.Write(types.ChunkRecord{
			ID:        string(rune('a'+i)) + "-id",
			BookSlug:  slug,
			Text:      text,
			PageStart: i + 1,
			PageEnd:   i + 1,
		}))
	}
	assert.Equal(t, len(texts), writer.Count())
}

func TestChunkRepoRoundTrip(t *testing.T) {
	repo := NewChunkRepo(t.TempDir())
	writeRecords(t, repo, "some_book", "first chunk", "second chunk", "third chunk")

	records, err := repo.Load(repo.Path("some_book"))
	require.NoError(t, err)
	require.Len(t, records, 3)

	// indices are 1-based and assigned in write order
	for i, record := range records {
		assert.Equal(t, i+1, record.ChunkIndex)
	}
	assert.Equal(t, "first chunk", records[0].Text)
	assert.Equal(t, "some_book", records[0].BookSlug)
}

func TestChunkRepoLoadIndex(t *testing.T) {
	repo := NewChunkRepo(t.TempDir())
	writeRecords(t, repo, "some_book", "one", "two")

	index, err := repo.LoadIndex(repo.Path("some_book"))
	require.NoError(t, err)
	require.Len(t, index, 2)
	assert.Equal(t, "one", index["a-id"].Text)
	assert.Equal(t, "two", index["b-id"].Text)
}

func TestChunkRepoMissingFile(t *testing.T) {
	repo := NewChunkRepo(t.TempDir())
	_, err := repo.Load(repo.Path("nope"))
	assert.ErrorIs(t, err, ErrChunksNotFound)
}

func TestChunkRepoSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	repo := NewChunkRepo(dir)
	path := filepath.Join(dir, "chunks.jsonl")
	content := `{"id":"x","text":"kept"}` + "\n\n" + `{"id":"y","text":"also kept"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := repo.Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestChunkRepoWriteChapters(t *testing.T) {
	dir := t.TempDir()
	repo := NewChunkRepo(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0755))
	require.NoError(t, repo.WriteChapters("b", []types.Chapter{
		{Chapter: "Chapter I", StartPage: 1, EndPage: 10},
	}))
	data, err := os.ReadFile(filepath.Join(dir, "b", "chapters.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Chapter I")
}
