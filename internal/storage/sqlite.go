// Package storage provides SQLite implementation of the CorpusStore interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/ngvocab/internal/models"
)

// SQLiteStorage implements CorpusStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		subset TEXT NOT NULL,
		category TEXT NOT NULL,
		filename TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (subset, filename)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_order ON documents(subset, category, filename);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceDocuments deletes every cached document and inserts docs in a transaction.
func (s *SQLiteStorage) ReplaceDocuments(ctx context.Context, docs []*models.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (subset, category, filename, text) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, doc := range docs {
		if _, err := stmt.ExecContext(ctx, doc.Subset, doc.Category, doc.Filename, doc.Text); err != nil {
			return fmt.Errorf("failed to insert %s: %w", doc.Filename, err)
		}
	}
	return tx.Commit()
}

// ListDocuments returns documents matching filter, train before test, then by category and filename.
// It returns ErrEmptyCache when the cache holds no documents at all.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, filter DocumentFilter) ([]*models.Document, error) {
	var (
		where []string
		args  []interface{}
	)
	if len(filter.Subsets) > 0 {
		where = append(where, "subset IN ("+placeholders(len(filter.Subsets))+")")
		for _, v := range filter.Subsets {
			args = append(args, v)
		}
	}
	if len(filter.Categories) > 0 {
		where = append(where, "category IN ("+placeholders(len(filter.Categories))+")")
		for _, v := range filter.Categories {
			args = append(args, v)
		}
	}
	query := `SELECT subset, category, filename, text FROM documents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY CASE subset WHEN 'train' THEN 0 ELSE 1 END, subset, category, filename`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.Subset, &doc.Category, &doc.Filename, &doc.Text); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		n, err := s.CountDocuments(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrEmptyCache
		}
	}
	return docs, nil
}

// CountDocuments returns the total number of cached documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountByCategory returns the number of cached documents per category.
func (s *SQLiteStorage) CountByCategory(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, "category")
}

// CountBySubset returns the number of cached documents per subset.
func (s *SQLiteStorage) CountBySubset(ctx context.Context) (map[string]int, error) {
	return s.countGrouped(ctx, "subset")
}

// column is always a literal from this file.
func (s *SQLiteStorage) countGrouped(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM documents GROUP BY %s`, column, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// SetMeta stores a metadata value, replacing any previous one.
func (s *SQLiteStorage) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMeta returns a metadata value, or "" when the key is unset.
func (s *SQLiteStorage) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
