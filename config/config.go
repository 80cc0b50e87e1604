package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string         `mapstructure:"port"`
	DataDir    string         `mapstructure:"data_dir"`
	ChunksFile string         `mapstructure:"chunks_file"`
	OpenAI     OpenAIConfig   `mapstructure:"openai"`
	Weaviate   WeaviateConfig `mapstructure:"weaviate"`
	LLM        LLMConfig      `mapstructure:"llm"`
	Chunking   ChunkingConfig `mapstructure:"chunking"`
	Reranker   RerankerConfig `mapstructure:"reranker"`
	Ask        AskConfig      `mapstructure:"ask"`
}

type OpenAIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	EmbedModel string `mapstructure:"embed_model"`
	BatchSize  int    `mapstructure:"batch_size"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
	Class  string `mapstructure:"class"`
}

type LLMConfig struct {
	Provider      string   `mapstructure:"provider"`
	Model         string   `mapstructure:"model"`
	BaseURL       string   `mapstructure:"base_url"`
	APIKey        string   `mapstructure:"api_key"`
	GeminiAPIKeys []string `mapstructure:"gemini_api_keys"`
}

type ChunkingConfig struct {
	MaxTokens     int `mapstructure:"max_tokens"`
	OverlapTokens int `mapstructure:"overlap_tokens"`
}

type RerankerConfig struct {
	Type         string  `mapstructure:"type"`
	MinScore     float64 `mapstructure:"min_score"`
	RelThreshold float64 `mapstructure:"rel_threshold"`
	GapThreshold float64 `mapstructure:"gap_threshold"`
	MaxK         int     `mapstructure:"max_k"`
	Endpoint     string  `mapstructure:"endpoint"`
	Model        string  `mapstructure:"model"`
	BatchSize    int     `mapstructure:"batch_size"`
}

type AskConfig struct {
	TopK            int `mapstructure:"top_k"`
	MaxContextChars int `mapstructure:"max_context_chars"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("GEMINI_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Secrets come from the environment, never from the yaml file.
	if key := v.GetString("OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
		if config.LLM.APIKey == "" {
			config.LLM.APIKey = key
		}
	}
	if key := v.GetString("WEAVIATE_APIKEY"); key != "" {
		config.Weaviate.APIKey = key
	}
	if keys := v.GetString("GEMINI_API_KEY"); keys != "" {
		config.LLM.GeminiAPIKeys = splitKeys(keys)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("openai.embed_model", "text-embedding-3-small")
	v.SetDefault("openai.batch_size", 64)
	v.SetDefault("weaviate.class", "BookChunk")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("chunking.max_tokens", 800)
	v.SetDefault("chunking.overlap_tokens", 128)
	v.SetDefault("reranker.type", "dynamic")
	v.SetDefault("reranker.min_score", 0.35)
	v.SetDefault("reranker.rel_threshold", 0.72)
	v.SetDefault("reranker.gap_threshold", 0.07)
	v.SetDefault("reranker.max_k", 8)
	v.SetDefault("reranker.batch_size", 32)
	v.SetDefault("ask.top_k", 5)
	v.SetDefault("ask.max_context_chars", 4000)
}

// splitKeys parses a comma-separated key list, so several Gemini keys
// can be rotated through a single env var.
func splitKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
