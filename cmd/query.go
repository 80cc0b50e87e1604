/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"bookrag/database"
	"bookrag/repository"
	"bookrag/service"
	"bookrag/types"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Run a retrieval query and print the matching chunks",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		chunksPath, _ := cmd.Flags().GetString("chunks")
		topK, _ := cmd.Flags().GetInt("top-k")
		question := strings.Join(args, " ")

		repo := repository.NewChunkRepo(cfg.DataDir)
		chunks, err := repo.LoadIndex(chunksPath)
		if err != nil {
			log.Fatalf("Failed to load chunks: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		embedder := service.NewOpenAIEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbedModel, cfg.OpenAI.BatchSize)
		rag := service.NewRagService(embedder, weaviateDb, nil, nil, chunks, cfg.Ask)

		matches, err := rag.Retrieve(context.Background(), question, topK)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		if len(matches) == 0 {
			fmt.Println("No matches found.")
			return
		}

		for i, m := range matches {
			meta := m.Metadata()
			fmt.Printf("%d. score=%.4f  %v (page %v-%v)\n", i+1, m.Score(), meta["source"], meta["pageStart"], meta["pageEnd"])
			snippet := service.ClampRunes(strings.ReplaceAll(types.TextOf(m), "\n", " "), 600)
			fmt.Printf("   %s\n\n", snippet)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringP("chunks", "c", "", "Path to the chunks.jsonl file")
	queryCmd.Flags().IntP("top-k", "k", 5, "Number of matches to return")
	queryCmd.MarkFlagRequired("chunks")
}
