// Package corpus loads the 20 Newsgroups bydate corpus through a local SQLite cache,
// downloading and extracting the archive on first use.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/ngvocab/internal/config"
	"github.com/hyperjump/ngvocab/internal/models"
	"github.com/hyperjump/ngvocab/internal/storage"
)

// ErrChecksum is returned when the downloaded archive does not match the configured SHA-256.
var ErrChecksum = errors.New("archive checksum mismatch")

// Loader returns the corpus as a labeled, deterministically ordered dataset.
type Loader struct {
	cfg     *config.CorpusConfig
	store   storage.CorpusStore
	fetcher *Fetcher
	logger  *zap.Logger
	now     func() time.Time
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for fetch and load events.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithFetcher replaces the fetcher built from the corpus config.
func WithFetcher(f *Fetcher) LoaderOption {
	return func(ld *Loader) { ld.fetcher = f }
}

// NewLoader creates a loader reading from store and populating it from cfg.URL when empty.
func NewLoader(cfg *config.CorpusConfig, store storage.CorpusStore, opts ...LoaderOption) *Loader {
	ld := &Loader{
		cfg:     cfg,
		store:   store,
		fetcher: NewFetcher(cfg.DownloadTimeout, cfg.UserAgent, cfg.MaxDownloadBytes),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load returns the configured subset with labels and ordinal IDs. An empty cache is
// populated first. With shuffling enabled the order is a permutation seeded by the
// configured seed, so the same cache and seed always give the same order.
func (ld *Loader) Load(ctx context.Context) (*models.Dataset, error) {
	n, err := ld.store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cached documents: %w", err)
	}
	if n == 0 {
		ld.logger.Info("corpus cache empty, downloading", zap.String("url", ld.cfg.URL))
		if _, err := ld.Populate(ctx); err != nil {
			return nil, err
		}
	}

	subsets := []string{ld.cfg.Subset}
	if ld.cfg.Subset == config.SubsetAll {
		subsets = []string{config.SubsetTrain, config.SubsetTest}
	}
	docs, err := ld.store.ListDocuments(ctx, storage.DocumentFilter{
		Subsets:    subsets,
		Categories: ld.cfg.Categories,
	})
	if err != nil {
		return nil, fmt.Errorf("list cached documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents for subset %q and categories %v", ld.cfg.Subset, ld.cfg.Categories)
	}

	targetNames := categoryNames(docs)
	labels := make(map[string]int, len(targetNames))
	for i, name := range targetNames {
		labels[name] = i
	}
	for _, doc := range docs {
		doc.Label = labels[doc.Category]
	}
	if ld.cfg.ShuffleOrDefault() {
		Shuffle(docs, ld.cfg.SeedOrDefault())
	}
	for i, doc := range docs {
		doc.ID = i
	}

	ld.logger.Debug("corpus loaded",
		zap.Int("documents", len(docs)),
		zap.Int("categories", len(targetNames)),
		zap.String("subset", ld.cfg.Subset))
	return &models.Dataset{Documents: docs, TargetNames: targetNames}, nil
}

// Populate downloads the archive into the data directory, verifies it, stores its
// documents in the cache and removes the archive. Returns the number of documents stored.
func (ld *Loader) Populate(ctx context.Context) (int, error) {
	if err := os.MkdirAll(ld.cfg.DataDir, 0755); err != nil {
		return 0, fmt.Errorf("create data directory: %w", err)
	}
	archivePath := filepath.Join(ld.cfg.DataDir, ld.cfg.ArchiveName)
	partPath := archivePath + ".part"

	if err := ld.download(ctx, partPath); err != nil {
		_ = os.Remove(partPath)
		return 0, err
	}
	if err := os.Rename(partPath, archivePath); err != nil {
		_ = os.Remove(partPath)
		return 0, fmt.Errorf("move archive into place: %w", err)
	}
	defer os.Remove(archivePath)

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	docs, err := ReadArchive(f)
	_ = f.Close()
	if err != nil {
		return 0, fmt.Errorf("parse archive: %w", err)
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("archive %s contains no documents", ld.cfg.ArchiveName)
	}

	if err := ld.store.ReplaceDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("store documents: %w", err)
	}
	meta := map[string]string{
		storage.MetaSourceURL:      ld.cfg.URL,
		storage.MetaSourceChecksum: ld.cfg.Checksum,
		storage.MetaFetchedAt:      ld.now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if err := ld.store.SetMeta(ctx, k, v); err != nil {
			return 0, fmt.Errorf("store %s: %w", k, err)
		}
	}
	ld.logger.Info("corpus cached", zap.Int("documents", len(docs)), zap.String("data_dir", ld.cfg.DataDir))
	return len(docs), nil
}

func (ld *Loader) download(ctx context.Context, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	res, err := ld.fetcher.Download(ctx, ld.cfg.URL, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download %s: %w", ld.cfg.URL, err)
	}
	ld.logger.Debug("archive downloaded", zap.Int64("bytes", res.Bytes), zap.String("sha256", res.SHA256))
	if ld.cfg.Checksum != "" && !strings.EqualFold(res.SHA256, ld.cfg.Checksum) {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksum, res.SHA256, ld.cfg.Checksum)
	}
	return nil
}

// Shuffle permutes docs in place with a PRNG seeded by seed.
func Shuffle(docs []*models.Document, seed int64) {
	r := rand.New(rand.NewPCG(uint64(seed), 0))
	r.Shuffle(len(docs), func(i, j int) { docs[i], docs[j] = docs[j], docs[i] })
}

func categoryNames(docs []*models.Document) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, doc := range docs {
		if _, ok := seen[doc.Category]; ok {
			continue
		}
		seen[doc.Category] = struct{}{}
		names = append(names, doc.Category)
	}
	sort.Strings(names)
	return names
}
