package repository

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bookrag/types"
)

// ErrChunksNotFound marks a missing chunks file; ingestion has to run
// before indexing or serving.
var ErrChunksNotFound = errors.New("chunks file not found")

// ChunkRepo persists chunk records as line-delimited JSON under
// <dataDir>/<slug>/chunks.jsonl. The file is the authoritative source
// of chunk text; the vector index never stores it.
type ChunkRepo struct {
	dataDir string
}

func NewChunkRepo(dataDir string) *ChunkRepo {
	return &ChunkRepo{dataDir: dataDir}
}

func (r *ChunkRepo) Path(slug string) string {
	return filepath.Join(r.dataDir, slug, "chunks.jsonl")
}

// ChunkWriter appends records one per line, assigning 1-based chunk
// indices in write order.
type ChunkWriter struct {
	file *os.File
	enc  *json.Encoder
	next int
}

func (r *ChunkRepo) NewWriter(slug string) (*ChunkWriter, error) {
	dir := filepath.Join(r.dataDir, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create book directory: %w", err)
	}
	file, err := os.Create(filepath.Join(dir, "chunks.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to create chunks file: %w", err)
	}
	return &ChunkWriter{file: file, enc: json.NewEncoder(file), next: 1}, nil
}

func (w *ChunkWriter) Write(record types.ChunkRecord) error {
	record.ChunkIndex = w.next
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("failed to write chunk %d: %w", w.next, err)
	}
	w.next++
	return nil
}

// Count returns how many records have been written so far.
func (w *ChunkWriter) Count() int {
	return w.next - 1
}

func (w *ChunkWriter) Close() error {
	return w.file.Close()
}

// Load reads every record from a chunks file in order.
func (r *ChunkRepo) Load(path string) ([]types.ChunkRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrChunksNotFound)
		}
		return nil, err
	}
	defer file.Close()

	var records []types.ChunkRecord
	scanner := bufio.NewScanner(file)
	// chunk lines can run well past the default scanner limit
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record types.ChunkRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to parse chunk record %d: %w", len(records)+1, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks file: %w", err)
	}
	return records, nil
}

// LoadIndex returns the records of a chunks file keyed by chunk id, for
// hydrating vector search matches with local text.
func (r *ChunkRepo) LoadIndex(path string) (map[string]types.ChunkRecord, error) {
	records, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	index := make(map[string]types.ChunkRecord, len(records))
	for _, record := range records {
		index[record.ID] = record
	}
	return index, nil
}

// WriteChapters stores heading-derived chapters next to the chunks file.
func (r *ChunkRepo) WriteChapters(slug string, chapters []types.Chapter) error {
	data, err := json.MarshalIndent(chapters, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.dataDir, slug, "chapters.json")
	return os.WriteFile(path, data, 0644)
}
