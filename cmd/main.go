package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-qa/internal/chromemdb"
	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/extractor"
	"document-qa/internal/helper"
	"document-qa/internal/index"
	"document-qa/internal/rag"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	dirPath := flag.String("dir", "", "Directory of documents to ingest")
	filePath := flag.String("file", "", "Path to a single document file")
	query := flag.String("query", "", "Query to be answered")
	k := flag.Int("k", 0, "Number of results to retrieve (0 uses the configured default)")
	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	files := collectFiles(*dirPath, *filePath)
	if len(files) == 0 && *query == "" {
		log.Fatal().Msg("Please provide documents using the -dir or -file flag, a query using the -query flag, or both")
	}

	pipeline := rag.NewPipeline(cfg, indexFactory(cfg))
	ctx := context.Background()

	if len(files) > 0 {
		stats, err := pipeline.IngestFiles(ctx, files)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting documents")
		}
		log.Info().
			Int("chunks", stats.TotalChunks).
			Int("dimension", stats.EmbeddingDimension).
			Int("processed", stats.DocumentsProcessed).
			Int("skipped", stats.DocumentsSkipped).
			Msg("Ingest complete")
	}

	if *query != "" {
		answer, err := pipeline.Query(ctx, *query, *k)
		if err != nil {
			log.Fatal().Err(err).Msg("Error querying")
		}

		log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", *query)

		log.Info().Msg("Answer: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", answer.Response)
		fmt.Printf("confidence: %.2f, sources: %d\n\n", answer.Confidence, answer.SourceCount)

		log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		helper.PrettyPrint(answer.Sources)
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("No config file, using defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

// indexFactory picks the similarity index backend from config.
func indexFactory(cfg *config.Config) rag.IndexFactory {
	if cfg.Index.Backend == "chromem" {
		return func(embedder *embedding.Embedder) (rag.SimilarityIndex, error) {
			return chromemdb.New(cfg.Index.Path, cfg.Index.Collection, false, embedder)
		}
	}
	return func(embedder *embedding.Embedder) (rag.SimilarityIndex, error) {
		return index.New(embedder), nil
	}
}

// collectFiles reads the documents named by the flags; unreadable entries are
// skipped with a log line so one bad file does not kill the batch.
func collectFiles(dirPath, filePath string) []extractor.File {
	var files []extractor.File
	appendFile := func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Error reading file, skipping")
			return
		}
		files = append(files, extractor.File{Name: filepath.Base(path), Data: data})
	}

	if dirPath != "" {
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading directory")
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			appendFile(filepath.Join(dirPath, entry.Name()))
		}
	}
	if filePath != "" {
		appendFile(filePath)
	}
	return files
}
