package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RAGConfig controls chunking and retrieval behaviour.
type RAGConfig struct {
	ChunkSize          int `yaml:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap"`
	EmbeddingDimension int `yaml:"embedding_dimension"`
	TopK               int `yaml:"top_k"`
}

// IndexConfig selects the similarity index backend.
type IndexConfig struct {
	// Backend is "memory" (default) or "chromem".
	Backend string `yaml:"backend"`
	// Path is the on-disk location for the chromem backend.
	Path string `yaml:"path"`
	// Collection names the chromem collection.
	Collection string `yaml:"collection"`
}

type Config struct {
	RAG      RAGConfig   `yaml:"rag"`
	Index    IndexConfig `yaml:"index"`
	LogLevel string      `yaml:"log_level"`
}

const (
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 200
	DefaultEmbeddingDimension = 384
	DefaultTopK               = 5
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a ready-to-use config when no file is provided.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with working defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = DefaultChunkSize
	}
	if cfg.RAG.ChunkOverlap <= 0 {
		cfg.RAG.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize / 2
	}
	if cfg.RAG.EmbeddingDimension <= 0 {
		cfg.RAG.EmbeddingDimension = DefaultEmbeddingDimension
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = DefaultTopK
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./chromemdb"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "documents"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
