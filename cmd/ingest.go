/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookrag/repository"
	"bookrag/service"
	"bookrag/types"
	"bookrag/utils"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract, clean and chunk a book PDF into chunks.jsonl",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		pdfPath, _ := cmd.Flags().GetString("pdf")
		slug, _ := cmd.Flags().GetString("slug")
		title, _ := cmd.Flags().GetString("title")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")
		overlapTokens, _ := cmd.Flags().GetInt("overlap-tokens")

		if maxTokens <= 0 {
			maxTokens = cfg.Chunking.MaxTokens
		}
		if overlapTokens < 0 {
			overlapTokens = cfg.Chunking.OverlapTokens
		}
		if title == "" {
			title = utils.BaseNameWithoutExt(pdfPath)
		}
		if slug == "" {
			slug = utils.Slugify(title)
		}

		pdfService := service.NewPDFService()
		pages, err := pdfService.ExtractPages(pdfPath)
		if err != nil {
			log.Fatalf("Failed to extract pages: %v", err)
		}
		log.Printf("Extracted %d pages from %s", len(pages), pdfPath)

		// chapter headings are guessed on raw layout, before cleaning
		chapters := service.GuessChapters(pages)

		for i := range pages {
			pages[i].Text = service.CleanText(pages[i].Text)
		}

		repo := repository.NewChunkRepo(cfg.DataDir)
		writer, err := repo.NewWriter(slug)
		if err != nil {
			log.Fatalf("Failed to create chunks file: %v", err)
		}
		defer writer.Close()

		fileName := filepath.Base(pdfPath)
		splitter := service.NewSplitter(service.NewTokenCounter(), maxTokens, overlapTokens)
		err = splitter.Split(pages, func(chunk types.Chunk) error {
			return writer.Write(types.ChunkRecord{
				ID:         chunk.ID,
				BookTitle:  title,
				BookSlug:   slug,
				Text:       chunk.Text,
				TokenCount: chunk.TokenCount,
				PageStart:  chunk.PageStart,
				PageEnd:    chunk.PageEnd,
				Source:     fmt.Sprintf("%s#pages=%d-%d", fileName, chunk.PageStart, chunk.PageEnd),
				Metadata:   chunk.Metadata,
			})
		})
		if err != nil {
			log.Fatalf("Failed to split pages: %v", err)
		}
		log.Printf("Wrote %d chunks to %s", writer.Count(), repo.Path(slug))

		if len(chapters) > 0 {
			if err := repo.WriteChapters(slug, chapters); err != nil {
				log.Printf("Failed to write chapters: %v", err)
			} else {
				log.Printf("Wrote %d inferred chapters", len(chapters))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("pdf", "f", "", "Path to the book PDF")
	ingestCmd.Flags().String("slug", "", "Book slug (default: derived from the title)")
	ingestCmd.Flags().String("title", "", "Book title (default: the file name)")
	ingestCmd.Flags().Int("max-tokens", 0, "Token budget per chunk (default from config)")
	ingestCmd.Flags().Int("overlap-tokens", -1, "Overlap token count (default from config)")
	ingestCmd.MarkFlagRequired("pdf")
}
