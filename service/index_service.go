package service

import (
	"context"
	"fmt"
	"log"

	"bookrag/database"
	"bookrag/types"
)

// IndexService embeds chunk records and writes them to the vector
// index, replacing whatever vectors the same book had before.
type IndexService struct {
	embedder Embedder
	vectorDB database.VectorDatabase
}

func NewIndexService(embedder Embedder, vectorDB database.VectorDatabase) *IndexService {
	return &IndexService{embedder: embedder, vectorDB: vectorDB}
}

// IndexRecords embeds every record and upserts the vectors. Before the
// upsert, vectors previously indexed under each record's book slug are
// deleted, so re-ingesting a book never leaves orphans from an earlier
// chunking run. The delete happens only after embedding succeeds; a
// failed embedding batch leaves the index untouched.
func (s *IndexService) IndexRecords(ctx context.Context, records []types.ChunkRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no chunk records to index")
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	for _, slug := range bookSlugs(records) {
		if err := s.vectorDB.DeleteBook(ctx, slug); err != nil {
			return fmt.Errorf("failed to clear previous vectors for %q: %w", slug, err)
		}
		log.Printf("Cleared previous vectors for book %q", slug)
	}

	vectorRecords := make([]database.VectorRecord, len(records))
	for i, record := range records {
		vectorRecords[i] = database.VectorRecord{
			ID:     record.ID,
			Vector: vectors[i],
			// the index carries provenance only, never the text
			Metadata: map[string]interface{}{
				"bookTitle":  record.BookTitle,
				"bookSlug":   record.BookSlug,
				"chunkIndex": record.ChunkIndex,
				"pageStart":  record.PageStart,
				"pageEnd":    record.PageEnd,
				"source":     record.Source,
			},
		}
	}
	return s.vectorDB.UpsertBatch(ctx, vectorRecords)
}

// bookSlugs returns the distinct non-empty slugs in record order.
func bookSlugs(records []types.ChunkRecord) []string {
	seen := make(map[string]bool)
	var slugs []string
	for _, record := range records {
		if record.BookSlug == "" || seen[record.BookSlug] {
			continue
		}
		seen[record.BookSlug] = true
		slugs = append(slugs, record.BookSlug)
	}
	return slugs
}
