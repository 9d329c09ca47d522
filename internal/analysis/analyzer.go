// Package analysis turns raw post text into vocabulary terms using a bleve analyzer chain.
package analysis

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/hyperjump/ngvocab/internal/config"
)

const (
	analyzerName  = "ngvocab"
	tokenizerName = "ngvocab_tokens"
)

// Options selects the tokenizer pattern and token filters.
type Options struct {
	TokenPattern string
	Lowercase    bool
	// StopWords is "" for none or config.StopWordsEnglish.
	StopWords string
}

// OptionsFromConfig maps vectorizer settings onto analyzer options.
func OptionsFromConfig(cfg *config.VectorizerConfig) Options {
	return Options{
		TokenPattern: cfg.TokenPattern,
		Lowercase:    cfg.LowercaseOrDefault(),
		StopWords:    cfg.StopWords,
	}
}

// Analyzer produces terms from text. It is safe for concurrent use.
type Analyzer struct {
	analyze func([]byte) analysis.TokenStream
	opts    Options
}

// New builds the analyzer: a regexp tokenizer followed by to_lower and stop_en
// filters when enabled.
func New(opts Options) (*Analyzer, error) {
	if opts.TokenPattern == "" {
		opts.TokenPattern = config.DefaultTokenPattern
	}
	cache := registry.NewCache()
	if _, err := cache.DefineTokenizer(tokenizerName, map[string]interface{}{
		"type":   regexp.Name,
		"regexp": opts.TokenPattern,
	}); err != nil {
		return nil, fmt.Errorf("define tokenizer: %w", err)
	}

	filters := []string{}
	if opts.Lowercase {
		filters = append(filters, lowercase.Name)
	}
	switch opts.StopWords {
	case "":
	case config.StopWordsEnglish:
		filters = append(filters, en.StopName)
	default:
		return nil, fmt.Errorf("unknown stop word list %q", opts.StopWords)
	}

	a, err := cache.DefineAnalyzer(analyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     tokenizerName,
		"token_filters": filters,
	})
	if err != nil {
		return nil, fmt.Errorf("define analyzer: %w", err)
	}
	return &Analyzer{analyze: a.Analyze, opts: opts}, nil
}

// Terms returns the terms of text in order of appearance, duplicates included.
func (a *Analyzer) Terms(text string) []string {
	tokens := a.analyze([]byte(text))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok.Term) == 0 {
			continue
		}
		out = append(out, string(tok.Term))
	}
	return out
}

// StopWords reports which stop-word list is applied, "" for none.
func (a *Analyzer) StopWords() string {
	return a.opts.StopWords
}
