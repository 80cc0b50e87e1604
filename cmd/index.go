/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"bookrag/database"
	"bookrag/repository"
	"bookrag/service"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed a chunks.jsonl file and upsert the vectors into Weaviate",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		chunksPath, _ := cmd.Flags().GetString("chunks")
		reinit, _ := cmd.Flags().GetBool("reinit")

		repo := repository.NewChunkRepo(cfg.DataDir)
		records, err := repo.Load(chunksPath)
		if err != nil {
			log.Fatalf("Failed to load chunks: %v", err)
		}
		if len(records) == 0 {
			log.Fatalf("No chunks found in %s", chunksPath)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if reinit {
			if err := weaviateDb.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate database: %v", err)
			}
		}

		embedder := service.NewOpenAIEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbedModel, cfg.OpenAI.BatchSize)
		indexService := service.NewIndexService(embedder, weaviateDb)

		log.Printf("Embedding %d chunks (batch size %d)...", len(records), cfg.OpenAI.BatchSize)
		if err := indexService.IndexRecords(context.Background(), records); err != nil {
			log.Fatalf("Failed to index chunks: %v", err)
		}
		log.Printf("Indexed %d chunks from %s", len(records), chunksPath)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("chunks", "c", "", "Path to the chunks.jsonl file")
	indexCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the chunk class first")
	indexCmd.MarkFlagRequired("chunks")
}
