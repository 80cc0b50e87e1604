/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"bookrag/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookrag",
	Short: "Question answering over book PDFs",
	Long: `bookrag turns a book PDF into an indexed, queryable corpus:

  ingest  extract, clean and chunk a PDF into chunks.jsonl
  index   embed the chunks and upsert them into Weaviate
  query   run a retrieval query from the command line
  start   serve the question-answering API`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// loadConfig reads the configured yaml file, exiting on failure. Every
// subcommand needs at least part of it.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
