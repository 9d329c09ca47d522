package config

import (
	"path/filepath"
	"time"
)

const (
	// DefaultSeed matches the random state the vocabulary has always been built with.
	DefaultSeed = 42
	// DefaultMaxFeatures is the vocabulary cap.
	DefaultMaxFeatures = 40000
	// DefaultTokenPattern keeps runs of two or more word characters.
	DefaultTokenPattern = `[\p{L}\p{M}\p{N}_]{2,}`

	defaultURL      = "https://ndownloader.figshare.com/files/5975967"
	defaultChecksum = "8f1b2514ca22a5ade8fbb9cfa5727df95fa587f4c87b786e15c759fa66d95610"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Corpus.DataDir == "" {
		cfg.Corpus.DataDir = filepath.Join("..", "data")
	}
	if cfg.Corpus.URL == "" {
		cfg.Corpus.URL = defaultURL
		// The checksum only describes the default archive.
		if cfg.Corpus.Checksum == "" {
			cfg.Corpus.Checksum = defaultChecksum
		}
	}
	if cfg.Corpus.ArchiveName == "" {
		cfg.Corpus.ArchiveName = "20news-bydate.tar.gz"
	}
	if cfg.Corpus.CacheFile == "" {
		cfg.Corpus.CacheFile = "20news-bydate.sqlite"
	}
	if cfg.Corpus.Subset == "" {
		cfg.Corpus.Subset = SubsetAll
	}
	if cfg.Corpus.DownloadTimeout == 0 {
		cfg.Corpus.DownloadTimeout = 5 * time.Minute
	}
	if cfg.Corpus.UserAgent == "" {
		cfg.Corpus.UserAgent = "ngvocab/1.0"
	}
	if cfg.Corpus.MaxDownloadBytes == 0 {
		cfg.Corpus.MaxDownloadBytes = 64 << 20
	}
	if cfg.Vectorizer.MaxFeatures == 0 {
		cfg.Vectorizer.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.Vectorizer.MinDF == 0 {
		cfg.Vectorizer.MinDF = 1
	}
	if cfg.Vectorizer.MaxDF == 0 {
		cfg.Vectorizer.MaxDF = 1.0
	}
	if cfg.Vectorizer.TokenPattern == "" {
		cfg.Vectorizer.TokenPattern = DefaultTokenPattern
	}
	if cfg.Vectorizer.Workers == 0 {
		cfg.Vectorizer.Workers = 1
	}
	if cfg.Output.VocabularyFile == "" {
		cfg.Output.VocabularyFile = filepath.Join(cfg.Corpus.DataDir, "ng-vocab.tsv")
	}
}
