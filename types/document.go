package types

// Page is one extracted page of a source PDF. Numbers are 1-based.
type Page struct {
	Number   int               // page number within the document
	Text     string            // extracted (and later normalized) page text
	Metadata map[string]string // document-level metadata shared by all pages
}

// Chunk is a token-bounded span of normalized text assembled from one or
// more paragraphs. A chunk may cross page boundaries; PageStart and
// PageEnd record the covered range.
type Chunk struct {
	ID         string
	Text       string
	TokenCount int
	PageStart  int
	PageEnd    int
	Metadata   map[string]string
}

// ChunkRecord is the durable JSONL form of a chunk. The chunks file is
// the source of truth for chunk text; the vector index only stores ids,
// vectors and metadata.
type ChunkRecord struct {
	ID         string            `json:"id"`
	BookTitle  string            `json:"book_title"`
	BookSlug   string            `json:"book_slug"`
	ChunkIndex int               `json:"chunk_index"`
	Text       string            `json:"text"`
	TokenCount int               `json:"token_count"`
	PageStart  int               `json:"page_start"`
	PageEnd    int               `json:"page_end"`
	Source     string            `json:"source"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Chapter is a heading-derived span of pages, inferred during ingestion.
type Chapter struct {
	Chapter   string `json:"chapter"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}
