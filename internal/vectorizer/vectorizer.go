// Package vectorizer builds a capped term vocabulary and a document-term count matrix.
package vectorizer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/ngvocab/internal/analysis"
	"github.com/hyperjump/ngvocab/internal/config"
)

// ErrEmptyVocabulary is returned when fitting leaves no terms.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// ErrNotFitted is returned by Transform before Fit.
var ErrNotFitted = errors.New("vectorizer is not fitted")

// Vocabulary maps a term to its matrix column. Columns are 0..len-1.
type Vocabulary map[string]int

// Entry is one vocabulary term and its column.
type Entry struct {
	Term  string
	Index int
}

// Entries returns the vocabulary ordered by column.
func (v Vocabulary) Entries() []Entry {
	out := make([]Entry, 0, len(v))
	for term, idx := range v {
		out = append(out, Entry{Term: term, Index: idx})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Options controls vocabulary selection.
type Options struct {
	// MaxFeatures caps the vocabulary to the most frequent terms; 0 keeps all.
	MaxFeatures int
	// MinDF drops terms found in fewer documents.
	MinDF int
	// MaxDF drops terms found in more than this fraction of documents.
	MaxDF float64
	// Workers is the number of concurrent tokenizers.
	Workers int
}

// OptionsFromConfig maps vectorizer settings onto Options.
func OptionsFromConfig(cfg *config.VectorizerConfig) Options {
	return Options{
		MaxFeatures: cfg.MaxFeatures,
		MinDF:       cfg.MinDF,
		MaxDF:       cfg.MaxDF,
		Workers:     cfg.Workers,
	}
}

// CountVectorizer counts term occurrences over a fixed vocabulary learned by Fit.
type CountVectorizer struct {
	analyzer *analysis.Analyzer
	opts     Options
	vocab    Vocabulary
	logger   *zap.Logger
}

// Option configures a CountVectorizer.
type Option func(*CountVectorizer)

// WithLogger sets a logger for selection statistics.
func WithLogger(l *zap.Logger) Option {
	return func(v *CountVectorizer) { v.logger = l }
}

// New returns an unfitted vectorizer using a for tokenization.
func New(a *analysis.Analyzer, opts Options, extra ...Option) *CountVectorizer {
	if opts.MinDF < 1 {
		opts.MinDF = 1
	}
	if opts.MaxDF <= 0 || opts.MaxDF > 1 {
		opts.MaxDF = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	v := &CountVectorizer{analyzer: a, opts: opts, logger: zap.NewNop()}
	for _, o := range extra {
		o(v)
	}
	return v
}

// Fit learns the vocabulary from texts.
func (v *CountVectorizer) Fit(ctx context.Context, texts []string) error {
	_, err := v.FitTransform(ctx, texts)
	return err
}

// FitTransform learns the vocabulary and returns the count matrix of texts.
// The matrix has len(texts) rows and min(distinct terms, MaxFeatures) columns.
func (v *CountVectorizer) FitTransform(ctx context.Context, texts []string) (*Matrix, error) {
	docs, err := v.tokenize(ctx, texts)
	if err != nil {
		return nil, err
	}
	vocab, err := v.selectVocabulary(docs)
	if err != nil {
		return nil, err
	}
	v.vocab = vocab
	return buildMatrix(docs, vocab), nil
}

// Transform counts vocabulary terms in texts. Unknown terms are ignored.
func (v *CountVectorizer) Transform(ctx context.Context, texts []string) (*Matrix, error) {
	if v.vocab == nil {
		return nil, ErrNotFitted
	}
	docs, err := v.tokenize(ctx, texts)
	if err != nil {
		return nil, err
	}
	return buildMatrix(docs, v.vocab), nil
}

// Vocabulary returns the fitted vocabulary, nil before Fit.
func (v *CountVectorizer) Vocabulary() Vocabulary {
	return v.vocab
}

// StopWordsApplied reports whether a stop-word list filtered the terms.
func (v *CountVectorizer) StopWordsApplied() bool {
	return v.analyzer.StopWords() != ""
}

// tokenize analyzes every text; results are positionally stable for any worker count.
func (v *CountVectorizer) tokenize(ctx context.Context, texts []string) ([][]string, error) {
	out := make([][]string, len(texts))
	if v.opts.Workers == 1 {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = v.analyzer.Terms(text)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.Workers)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = v.analyzer.Terms(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type termStat struct {
	term string
	tf   int
	df   int
}

// selectVocabulary applies the document-frequency bounds, keeps the MaxFeatures most
// frequent terms (ties by term) and numbers the survivors in term order.
func (v *CountVectorizer) selectVocabulary(docs [][]string) (Vocabulary, error) {
	stats := make(map[string]*termStat)
	seen := make(map[string]struct{})
	for _, terms := range docs {
		for _, term := range terms {
			st, ok := stats[term]
			if !ok {
				st = &termStat{term: term}
				stats[term] = st
			}
			st.tf++
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				st.df++
			}
		}
		clear(seen)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("%w; perhaps the documents only contain stop words", ErrEmptyVocabulary)
	}

	maxDocs := v.opts.MaxDF * float64(len(docs))
	if maxDocs < float64(v.opts.MinDF) {
		return nil, fmt.Errorf("max_df corresponds to fewer documents (%.1f) than min_df (%d)", maxDocs, v.opts.MinDF)
	}
	kept := make([]*termStat, 0, len(stats))
	for _, st := range stats {
		if st.df < v.opts.MinDF || float64(st.df) > maxDocs {
			continue
		}
		kept = append(kept, st)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w after pruning; try a lower min_df or a higher max_df", ErrEmptyVocabulary)
	}

	if v.opts.MaxFeatures > 0 && len(kept) > v.opts.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if kept[i].tf != kept[j].tf {
				return kept[i].tf > kept[j].tf
			}
			return kept[i].term < kept[j].term
		})
		kept = kept[:v.opts.MaxFeatures]
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].term < kept[j].term })

	vocab := make(Vocabulary, len(kept))
	for i, st := range kept {
		vocab[st.term] = i
	}
	v.logger.Debug("vocabulary selected",
		zap.Int("distinct_terms", len(stats)),
		zap.Int("kept", len(vocab)),
		zap.Int("max_features", v.opts.MaxFeatures))
	return vocab, nil
}
