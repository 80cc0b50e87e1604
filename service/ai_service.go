package service

import (
	"context"
	"fmt"
	"strings"

	"bookrag/config"
	"bookrag/types"
)

// AIService generates an answer for a fully composed prompt.
type AIService interface {
	Answer(ctx context.Context, prompt string) (string, error)
	AnswerStream(ctx context.Context, prompt string, handler types.StreamHandler) error
}

// NewAIService builds the configured LLM backend.
func NewAIService(cfg config.LLMConfig) (AIService, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		return NewOpenAIService(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "gemini":
		return NewGeminiService(cfg.GeminiAPIKeys, cfg.Model)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
