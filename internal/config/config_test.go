package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
corpus:
  data_dir: "/srv/ng"
  subset: "train"
  seed: 7
vectorizer:
  max_features: 1000
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Corpus.DataDir != "/srv/ng" || cfg.Corpus.Subset != SubsetTrain {
		t.Errorf("unexpected corpus config: %+v", cfg.Corpus)
	}
	if got := cfg.Corpus.SeedOrDefault(); got != 7 {
		t.Errorf("seed = %d, want 7", got)
	}
	if cfg.Vectorizer.MaxFeatures != 1000 {
		t.Errorf("max_features = %d, want 1000", cfg.Vectorizer.MaxFeatures)
	}
	if want := filepath.Join("/srv/ng", "ng-vocab.tsv"); cfg.Output.VocabularyFile != want {
		t.Errorf("vocabulary_file = %s, want %s", cfg.Output.VocabularyFile, want)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
corpus:
  data_dir: "./data"
output:
  vocabulary_file: "../out/vocab.tsv"
metrics:
  textfile_path: "./metrics/ngvocab.prom"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data"); cfg.Corpus.DataDir != want {
		t.Errorf("data_dir = %s, want %s", cfg.Corpus.DataDir, want)
	}
	if want := filepath.Join(filepath.Dir(dir), "out", "vocab.tsv"); cfg.Output.VocabularyFile != want {
		t.Errorf("vocabulary_file = %s, want %s", cfg.Output.VocabularyFile, want)
	}
	if want := filepath.Join(dir, "metrics", "ngvocab.prom"); cfg.Metrics.TextfilePath != want {
		t.Errorf("textfile_path = %s, want %s", cfg.Metrics.TextfilePath, want)
	}
	if want := filepath.Join(dir, "data", "20news-bydate.sqlite"); cfg.Corpus.CachePath() != want {
		t.Errorf("cache path = %s, want %s", cfg.Corpus.CachePath(), want)
	}
}

func TestLoad_durations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("corpus:\n  download_timeout: 30s\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Corpus.DownloadTimeout != 30*time.Second {
		t.Errorf("download_timeout = %v, want 30s", cfg.Corpus.DownloadTimeout)
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("corpus: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOrDefault_missingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vectorizer.MaxFeatures != DefaultMaxFeatures {
		t.Errorf("max_features = %d, want %d", cfg.Vectorizer.MaxFeatures, DefaultMaxFeatures)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Corpus.DataDir != filepath.Join("..", "data") {
		t.Errorf("default data_dir: got %s", cfg.Corpus.DataDir)
	}
	if cfg.Corpus.Subset != SubsetAll {
		t.Errorf("default subset: got %s", cfg.Corpus.Subset)
	}
	if cfg.Corpus.SeedOrDefault() != 42 {
		t.Errorf("default seed: got %d", cfg.Corpus.SeedOrDefault())
	}
	if !cfg.Corpus.ShuffleOrDefault() {
		t.Error("shuffle should default to true")
	}
	if cfg.Corpus.Checksum == "" {
		t.Error("default archive should carry a checksum")
	}
	if cfg.Vectorizer.MaxFeatures != 40000 {
		t.Errorf("default max_features: got %d", cfg.Vectorizer.MaxFeatures)
	}
	if !cfg.Vectorizer.LowercaseOrDefault() {
		t.Error("lowercase should default to true")
	}
	if cfg.Vectorizer.StopWords != "" {
		t.Errorf("stop words should default to none, got %q", cfg.Vectorizer.StopWords)
	}
	if cfg.Output.VocabularyFile != filepath.Join("..", "data", "ng-vocab.tsv") {
		t.Errorf("default vocabulary_file: got %s", cfg.Output.VocabularyFile)
	}
}

func TestApplyDefaults_customURLHasNoChecksum(t *testing.T) {
	cfg := &Config{Corpus: CorpusConfig{URL: "http://mirror.local/20news.tar.gz"}}
	ApplyDefaults(cfg)
	if cfg.Corpus.Checksum != "" {
		t.Errorf("checksum should stay empty for a custom url, got %q", cfg.Corpus.Checksum)
	}
}

func TestCorpusConfig_ShuffleOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		c := &CorpusConfig{}
		if !c.ShuffleOrDefault() {
			t.Error("ShuffleOrDefault() = false, want true")
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		c := &CorpusConfig{Shuffle: &f}
		if c.ShuffleOrDefault() {
			t.Error("ShuffleOrDefault() = true, want false")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown subset", func(c *Config) { c.Corpus.Subset = "validation" }, true},
		{"negative cap", func(c *Config) { c.Vectorizer.MaxFeatures = -1 }, true},
		{"max_df too large", func(c *Config) { c.Vectorizer.MaxDF = 1.5 }, true},
		{"english stop words", func(c *Config) { c.Vectorizer.StopWords = StopWordsEnglish }, false},
		{"unknown stop words", func(c *Config) { c.Vectorizer.StopWords = "klingon" }, true},
		{"bad token pattern", func(c *Config) { c.Vectorizer.TokenPattern = "([a-z" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Corpus:     CorpusConfig{DataDir: "/tmp/ng"},
		Vectorizer: VectorizerConfig{MaxFeatures: 123},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Vectorizer.MaxFeatures != 123 {
		t.Errorf("loaded max_features: got %d", loaded.Vectorizer.MaxFeatures)
	}
}
