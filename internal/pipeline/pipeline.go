// Package pipeline runs a vocabulary build: load the corpus, vectorize it and
// write the vocabulary file.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/ngvocab/internal/analysis"
	"github.com/hyperjump/ngvocab/internal/config"
	"github.com/hyperjump/ngvocab/internal/corpus"
	"github.com/hyperjump/ngvocab/internal/metrics"
	"github.com/hyperjump/ngvocab/internal/models"
	"github.com/hyperjump/ngvocab/internal/storage"
	"github.com/hyperjump/ngvocab/internal/vectorizer"
	"github.com/hyperjump/ngvocab/internal/vocab"
)

// Pipeline wires the corpus loader, vectorizer and vocabulary writer for one config.
type Pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.CorpusStore
	metrics *metrics.Metrics
	fetcher *corpus.Fetcher
	stdout  io.Writer
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore uses store instead of opening the SQLite cache named by the config.
// The caller keeps ownership of store.
func WithStore(store storage.CorpusStore) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithMetrics records run statistics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithFetcher overrides the archive fetcher.
func WithFetcher(f *corpus.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithStdout sets where the progress lines go. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.stdout = w }
}

// New returns a pipeline for cfg. A nil logger is replaced by a no-op logger.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		stdout: os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil && cfg.Metrics.TextfilePath != "" {
		p.metrics = metrics.New()
	}
	return p
}

// Run performs one build. It fails on any load, vectorize or file-level write error.
// Entries the writer had to skip are reported in the summary, not as an error.
func (p *Pipeline) Run(ctx context.Context) (*models.BuildSummary, error) {
	start := p.now()
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))

	store, closeStore, err := p.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	stageStart := p.now()
	ds, err := p.loader(store, logger).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	p.observe(metrics.StageLoad, stageStart)
	fmt.Fprintf(p.stdout, "#-docs in dataset: %d\n", ds.Len())
	logger.Info("corpus loaded",
		zap.Int("documents", ds.Len()),
		zap.Int("categories", len(ds.TargetNames)))

	stageStart = p.now()
	an, err := analysis.New(analysis.OptionsFromConfig(&p.cfg.Vectorizer))
	if err != nil {
		return nil, fmt.Errorf("build analyzer: %w", err)
	}
	vec := vectorizer.New(an, vectorizer.OptionsFromConfig(&p.cfg.Vectorizer), vectorizer.WithLogger(logger))
	matrix, err := vec.FitTransform(ctx, ds.Texts())
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	p.observe(metrics.StageVectorize, stageStart)
	fmt.Fprintf(p.stdout, "after vectorization: %s (%d,)\n", matrix.ShapeString(), len(ds.Targets()))

	stageStart = p.now()
	res, err := vocab.NewWriter(vocab.WithLogger(logger)).Write(p.cfg.Output.VocabularyFile, vec.Vocabulary())
	if err != nil {
		return nil, fmt.Errorf("write vocabulary: %w", err)
	}
	p.observe(metrics.StageWrite, stageStart)
	if !res.Complete() {
		logger.Warn("vocabulary file is incomplete",
			zap.String("path", res.Path),
			zap.Int("skipped", res.Skipped))
	}

	rows, cols := matrix.Shape()
	summary := &models.BuildSummary{
		RunID:          runID,
		Documents:      ds.Len(),
		Categories:     len(ds.TargetNames),
		Rows:           rows,
		Cols:           cols,
		NonZero:        matrix.NNZ(),
		VocabularyPath: res.Path,
		Written:        res.Written,
		Skipped:        res.Skipped,
		DurationMs:     p.now().Sub(start).Milliseconds(),
	}
	logger.Info("vocabulary written",
		zap.String("path", res.Path),
		zap.Int("written", res.Written),
		zap.Int("skipped", res.Skipped),
		zap.Int64("duration_ms", summary.DurationMs))

	if p.metrics != nil {
		p.metrics.SetCorpus(summary.Documents, summary.Categories)
		p.metrics.SetMatrix(cols, summary.NonZero)
		p.metrics.AddEntries(res.Written, res.Skipped)
		p.metrics.MarkSuccess(p.now())
		if path := p.cfg.Metrics.TextfilePath; path != "" {
			if err := p.metrics.WriteTextfile(path); err != nil {
				logger.Warn("metrics textfile not written", zap.String("path", path), zap.Error(err))
			}
		}
	}
	return summary, nil
}

// Fetch downloads and extracts the corpus into the cache, replacing its contents.
func (p *Pipeline) Fetch(ctx context.Context) (int, error) {
	store, closeStore, err := p.openStore()
	if err != nil {
		return 0, err
	}
	defer closeStore()
	logger := p.logger.With(zap.String("run_id", uuid.NewString()))
	return p.loader(store, logger).Populate(ctx)
}

// Status describes the corpus cache without fetching anything.
func (p *Pipeline) Status(ctx context.Context) (*models.CacheStatus, error) {
	store, closeStore, err := p.openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore()

	st := &models.CacheStatus{CachePath: p.cfg.Corpus.CachePath()}
	if st.Documents, err = store.CountDocuments(ctx); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if st.Categories, err = store.CountByCategory(ctx); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if st.Subsets, err = store.CountBySubset(ctx); err != nil {
		return nil, fmt.Errorf("count subsets: %w", err)
	}
	if st.SourceURL, err = store.GetMeta(ctx, storage.MetaSourceURL); err != nil {
		return nil, err
	}
	if st.SourceChecksum, err = store.GetMeta(ctx, storage.MetaSourceChecksum); err != nil {
		return nil, err
	}
	if st.FetchedAt, err = store.GetMeta(ctx, storage.MetaFetchedAt); err != nil {
		return nil, err
	}
	if n, err := storage.DiskUsageBytes(p.cfg.Corpus.DataDir); err == nil {
		st.DiskUsageBytes = &n
	}
	return st, nil
}

func (p *Pipeline) openStore() (storage.CorpusStore, func(), error) {
	if p.store != nil {
		return p.store, func() {}, nil
	}
	store, err := storage.NewSQLiteStorage(p.cfg.Corpus.CachePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open corpus cache: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			p.logger.Warn("close corpus cache", zap.Error(err))
		}
	}, nil
}

func (p *Pipeline) loader(store storage.CorpusStore, logger *zap.Logger) *corpus.Loader {
	opts := []corpus.LoaderOption{corpus.WithLogger(logger)}
	if p.fetcher != nil {
		opts = append(opts, corpus.WithFetcher(p.fetcher))
	}
	return corpus.NewLoader(&p.cfg.Corpus, store, opts...)
}

func (p *Pipeline) observe(stage string, since time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, p.now().Sub(since))
	}
}
