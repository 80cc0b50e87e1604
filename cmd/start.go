/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"bookrag/database"
	"bookrag/handler"
	"bookrag/repository"
	"bookrag/reranker"
	"bookrag/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the question-answering server",
	Long:  `Serves /api/v1/ask, /api/v1/search and a streaming websocket over one ingested book.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		chunksPath, _ := cmd.Flags().GetString("chunks")
		if chunksPath == "" {
			chunksPath = cfg.ChunksFile
		}
		if chunksPath == "" {
			log.Fatal("No chunks file configured; set chunks_file or pass --chunks")
		}

		// The server binds one ingested book; its chunks file is the
		// source of answer text.
		repo := repository.NewChunkRepo(cfg.DataDir)
		chunks, err := repo.LoadIndex(chunksPath)
		if err != nil {
			log.Fatalf("Failed to load chunks: %v", err)
		}
		log.Printf("Loaded %d chunks from %s", len(chunks), chunksPath)

		weaviateDb, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		embedder := service.NewOpenAIEmbedder(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbedModel, cfg.OpenAI.BatchSize)

		rr, err := reranker.New(cfg.Reranker)
		if err != nil {
			log.Fatalf("Failed to build reranker: %v", err)
		}
		aiService, err := service.NewAIService(cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to build AI service: %v", err)
		}

		ragService := service.NewRagService(embedder, weaviateDb, rr, aiService, chunks, cfg.Ask)
		wsService := service.NewWebSocketService(ragService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		askHandler := handler.NewAskHandler(ragService)
		searchHandler := handler.NewSearchHandler(ragService)
		healthHandler := handler.NewHealthHandler(len(chunks))

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/ask", askHandler.HandleAsk)
			apiV1.POST("/search", searchHandler.HandleSearch)
			apiV1.GET("/healthz", healthHandler.HandleHealth)
		}
		router.GET("/ws/ask", func(c *gin.Context) {
			wsService.HandleAsk(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().String("chunks", "", "Path to the chunks.jsonl file to serve")
}
