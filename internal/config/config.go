// Package config provides configuration loading and structs for the ngvocab build job.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Subsets of the newsgroup corpus.
const (
	SubsetTrain = "train"
	SubsetTest  = "test"
	SubsetAll   = "all"
)

// StopWordsEnglish selects the English stop-word filter.
const StopWordsEnglish = "english"

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Output     OutputConfig     `yaml:"output"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CorpusConfig holds where the corpus comes from and how it is ordered.
type CorpusConfig struct {
	DataDir          string        `yaml:"data_dir"`
	URL              string        `yaml:"url"`
	ArchiveName      string        `yaml:"archive_name"`
	Checksum         string        `yaml:"checksum"`
	CacheFile        string        `yaml:"cache_file"`
	Subset           string        `yaml:"subset"`
	Categories       []string      `yaml:"categories"`
	Seed             *int64        `yaml:"seed"`
	Shuffle          *bool         `yaml:"shuffle"`
	DownloadTimeout  time.Duration `yaml:"download_timeout"`
	UserAgent        string        `yaml:"user_agent"`
	MaxDownloadBytes int64         `yaml:"max_download_bytes"`
}

// SeedOrDefault returns the shuffle seed; defaults to 42 when unset.
func (c *CorpusConfig) SeedOrDefault() int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return DefaultSeed
}

// ShuffleOrDefault returns whether documents are shuffled; defaults to true when unset.
func (c *CorpusConfig) ShuffleOrDefault() bool {
	if c.Shuffle != nil {
		return *c.Shuffle
	}
	return true
}

// CachePath is the SQLite corpus cache location.
func (c *CorpusConfig) CachePath() string {
	if filepath.IsAbs(c.CacheFile) {
		return c.CacheFile
	}
	return filepath.Join(c.DataDir, c.CacheFile)
}

// VectorizerConfig holds tokenization and vocabulary selection settings.
type VectorizerConfig struct {
	MaxFeatures  int     `yaml:"max_features"`
	MinDF        int     `yaml:"min_df"`
	MaxDF        float64 `yaml:"max_df"`
	Lowercase    *bool   `yaml:"lowercase"`
	StopWords    string  `yaml:"stop_words"`
	TokenPattern string  `yaml:"token_pattern"`
	Workers      int     `yaml:"workers"`
}

// LowercaseOrDefault returns whether terms are lowercased; defaults to true when unset.
func (v *VectorizerConfig) LowercaseOrDefault() bool {
	if v.Lowercase != nil {
		return *v.Lowercase
	}
	return true
}

// OutputConfig holds output artifact paths.
type OutputConfig struct {
	VocabularyFile string `yaml:"vocabulary_file"`
}

// MetricsConfig holds the optional Prometheus textfile destination.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	cfg.Corpus.DataDir = expandPath(cfg.Corpus.DataDir, configDir)
	cfg.Output.VocabularyFile = expandPath(cfg.Output.VocabularyFile, configDir)
	cfg.Metrics.TextfilePath = expandPath(cfg.Metrics.TextfilePath, configDir)
	ApplyDefaults(&cfg)

	return &cfg, nil
}

// LoadOrDefault loads path when it exists; a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports the first setting that the job cannot run with.
func (c *Config) Validate() error {
	switch c.Corpus.Subset {
	case SubsetTrain, SubsetTest, SubsetAll:
	default:
		return fmt.Errorf("unknown corpus subset %q (want train, test or all)", c.Corpus.Subset)
	}
	if c.Corpus.URL == "" {
		return errors.New("corpus url is empty")
	}
	if c.Vectorizer.MaxFeatures < 0 {
		return fmt.Errorf("max_features must not be negative, got %d", c.Vectorizer.MaxFeatures)
	}
	if c.Vectorizer.MinDF < 1 {
		return fmt.Errorf("min_df must be at least 1, got %d", c.Vectorizer.MinDF)
	}
	if c.Vectorizer.MaxDF <= 0 || c.Vectorizer.MaxDF > 1 {
		return fmt.Errorf("max_df must be in (0, 1], got %g", c.Vectorizer.MaxDF)
	}
	switch c.Vectorizer.StopWords {
	case "", StopWordsEnglish:
	default:
		return fmt.Errorf("unknown stop word list %q", c.Vectorizer.StopWords)
	}
	if _, err := regexp.Compile(c.Vectorizer.TokenPattern); err != nil {
		return fmt.Errorf("invalid token_pattern: %w", err)
	}
	if c.Output.VocabularyFile == "" {
		return errors.New("output vocabulary_file is empty")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" or "../" are relative
// to configDir; "~/" is relative to the home directory; other relative paths are kept.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
