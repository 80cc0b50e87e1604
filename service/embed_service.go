package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
)

const embedMaxRetries = 3

// Embedder turns a batch of texts into embedding vectors, one per input
// and in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API in batches with bounded
// retries. A batch that still fails after the last attempt aborts the
// whole call: placeholder vectors must never reach the index.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	batchSize int
}

func NewOpenAIEmbedder(baseURL, apiKey, model string, batchSize int) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if batchSize <= 0 {
		batchSize = 64
	}
	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(config),
		model:     openai.EmbeddingModel(model),
		batchSize: batchSize,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= embedMaxRetries; attempt++ {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: e.model,
			Input: batch,
		})
		if err == nil {
			if len(resp.Data) != len(batch) {
				return nil, fmt.Errorf("got %d vectors for %d inputs", len(resp.Data), len(batch))
			}
			vectors := make([][]float32, len(batch))
			for _, item := range resp.Data {
				vectors[item.Index] = item.Embedding
			}
			return vectors, nil
		}
		lastErr = err
		if attempt < embedMaxRetries {
			wait := time.Duration(1<<(attempt-1)) * time.Second
			log.Printf("Embedding attempt %d failed: %v, retrying in %s", attempt, err, wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", embedMaxRetries, lastErr)
}
