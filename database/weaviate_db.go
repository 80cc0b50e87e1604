package database

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"bookrag/config"
	"bookrag/types"
)

const BATCH_SIZE = 200

var chunkProperties = []string{"bookTitle", "bookSlug", "chunkIndex", "pageStart", "pageEnd", "source"}

func chunkClassObject(name string) *models.Class {
	return &models.Class{
		Class: name,
		Properties: []*models.Property{
			{Name: "bookTitle", DataType: []string{"text"}},
			{Name: "bookSlug", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "pageStart", DataType: []string{"int"}},
			{Name: "pageEnd", DataType: []string{"int"}},
			{Name: "source", DataType: []string{"text"}},
		},
		// vectors are computed client-side and pushed with each object
		Vectorizer:        "none",
		VectorIndexType:   "hnsw",
		VectorIndexConfig: map[string]interface{}{"distance": "cosine"},
	}
}

type WeaviateStore struct {
	client    *weaviate.Client
	className string
}

func NewWeaviateStore(cfg config.WeaviateConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	clientConfig := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientConfig.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	className := cfg.Class
	if className == "" {
		className = "BookChunk"
	}

	client, err := weaviate.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == className {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(chunkClassObject(className)).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s class: %v", className, err)
		}
	}
	return &WeaviateStore{
		client:    client,
		className: className,
	}, nil
}

// ReInit drops and recreates the chunk class, wiping every stored vector.
func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete %s class: %v", s.className, err)
	}

	err = s.client.Schema().ClassCreator().WithClass(chunkClassObject(s.className)).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create %s class: %v", s.className, err)
	}
	return nil
}

// UpsertBatch pushes records in fixed-size batches. Chunk ids double as
// object ids, so re-indexing a book overwrites its previous vectors.
func (s *WeaviateStore) UpsertBatch(ctx context.Context, records []VectorRecord) error {
	total := len(records)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class:      s.className,
				ID:         strfmt.UUID(records[j].ID),
				Properties: records[j].Metadata,
				Vector:     records[j].Vector,
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %v", i, end, err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to upsert object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
			}
		}

		log.Printf("Upserted batch %d-%d of %d vectors", i, end, total)
	}

	return nil
}

// QueryByVector returns the topK nearest chunks, scored by certainty in
// descending order. An empty bookSlug searches the whole index.
func (s *WeaviateStore) QueryByVector(ctx context.Context, vector []float32, topK int, bookSlug string) ([]types.Match, error) {
	fields := make([]graphql.Field, 0, len(chunkProperties)+1)
	for _, name := range chunkProperties {
		fields = append(fields, graphql.Field{Name: name})
	}
	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}, {Name: "certainty"}},
	})

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector)
	if topK > 0 {
		getBuilder = getBuilder.WithLimit(topK)
	}
	if where := buildSlugFilter(bookSlug); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %v", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("vector query failed: %v", result.Errors[0].Message)
	}

	var matches []types.Match
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return matches, nil
	}
	items, ok := get[s.className].([]interface{})
	if !ok {
		return matches, nil
	}
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		metadata := make(map[string]interface{}, len(chunkProperties))
		for _, name := range chunkProperties {
			if v, ok := obj[name]; ok && v != nil {
				metadata[name] = v
			}
		}
		var id string
		var score float64
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			id, _ = additional["id"].(string)
			// a missing or malformed certainty scores as zero
			score = toFloat(additional["certainty"])
		}
		matches = append(matches, types.SearchMatch{MatchID: id, MatchScore: score, Meta: metadata})
	}

	// weaviate returns nearest-first already; keep the contract explicit
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score() > matches[b].Score()
	})
	return matches, nil
}

// DeleteBook removes every vector of one book from the index.
func (s *WeaviateStore) DeleteBook(ctx context.Context, bookSlug string) error {
	where := buildSlugFilter(bookSlug)
	if where == nil {
		return fmt.Errorf("book slug is required")
	}
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.className).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete book %s: %v", bookSlug, err)
	}
	return nil
}

func buildSlugFilter(bookSlug string) *filters.WhereBuilder {
	if bookSlug == "" {
		return nil
	}
	return filters.Where().
		WithPath([]string{"bookSlug"}).
		WithOperator(filters.Equal).
		WithValueString(bookSlug)
}

func toFloat(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	}
	return 0
}
