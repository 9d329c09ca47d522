// Package storage defines the persistence interface for the cached corpus.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/ngvocab/internal/models"
)

// ErrEmptyCache is returned when documents are read from a cache that was never populated.
var ErrEmptyCache = errors.New("corpus cache is empty")

// Source metadata keys.
const (
	MetaSourceURL      = "source_url"
	MetaSourceChecksum = "source_checksum"
	MetaFetchedAt      = "fetched_at"
)

// DocumentFilter selects cached documents. Empty fields match everything.
type DocumentFilter struct {
	Subsets    []string
	Categories []string
}

// CorpusStore defines corpus cache operations.
type CorpusStore interface {
	// ReplaceDocuments clears the cache and stores docs in one transaction.
	ReplaceDocuments(ctx context.Context, docs []*models.Document) error
	// ListDocuments returns matching documents ordered by subset, category and filename.
	// Returned documents carry no ID or Label; those depend on the caller's selection.
	// An unpopulated cache yields ErrEmptyCache.
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]*models.Document, error)
	CountDocuments(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountBySubset(ctx context.Context) (map[string]int, error)

	SetMeta(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (string, error)

	Close() error
}
