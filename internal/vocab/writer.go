// Package vocab writes and checks tab-separated vocabulary files.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/ngvocab/pkg/utils"
)

var (
	errInvalidUTF8   = errors.New("term is not valid UTF-8")
	errSeparator     = errors.New("term contains a tab or newline")
	errEmptyTerm     = errors.New("term is empty")
	errNegativeIndex = errors.New("index is negative")
)

// EntryError records one vocabulary entry that could not be written.
type EntryError struct {
	Term  string
	Index int
	Err   error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("entry %q (%d): %v", e.Term, e.Index, e.Err)
}

func (e EntryError) Unwrap() error { return e.Err }

// WriteResult reports the outcome of Write.
type WriteResult struct {
	Path     string
	Written  int
	Skipped  int
	Failures []EntryError
}

// Complete reports whether every entry was written.
func (r *WriteResult) Complete() bool {
	return r.Skipped == 0
}

// Writer writes vocabulary files.
type Writer struct {
	logger *zap.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLogger sets the logger for per-entry progress and failures.
func WithLogger(l *zap.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// NewWriter returns a Writer.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{logger: zap.NewNop()}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Write creates or truncates path and writes one "term\tindex\n" line per entry,
// ordered by index. An entry that cannot be written is logged, counted as skipped
// and does not stop the remaining entries. Failing to open, flush or close the
// file is returned as an error.
func (w *Writer) Write(path string, v map[string]int) (*WriteResult, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}

	res := &WriteResult{Path: path}
	bw := bufio.NewWriter(f)
	for _, e := range sortedEntries(v) {
		if err := writeEntry(bw, e.term, e.index); err != nil {
			fail := EntryError{Term: e.term, Index: e.index, Err: err}
			res.Failures = append(res.Failures, fail)
			res.Skipped++
			w.logger.Warn("skipping vocabulary entry",
				zap.String("term", utils.Truncate(strconv.Quote(e.term), 64)),
				zap.Int("index", e.index),
				zap.Error(err))
			continue
		}
		res.Written++
		w.logger.Debug("wrote entry", zap.String("term", e.term), zap.Int("index", e.index))
	}

	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flush vocabulary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close vocabulary file: %w", err)
	}
	return res, nil
}

type entry struct {
	term  string
	index int
}

func sortedEntries(v map[string]int) []entry {
	out := make([]entry, 0, len(v))
	for term, idx := range v {
		out = append(out, entry{term: term, index: idx})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].index != out[j].index {
			return out[i].index < out[j].index
		}
		return out[i].term < out[j].term
	})
	return out
}

func checkEntry(term string, index int) error {
	switch {
	case term == "":
		return errEmptyTerm
	case !utf8.ValidString(term):
		return errInvalidUTF8
	case strings.ContainsAny(term, "\t\n\r"):
		return errSeparator
	case index < 0:
		return errNegativeIndex
	}
	return nil
}

func writeEntry(bw *bufio.Writer, term string, index int) error {
	if err := checkEntry(term, index); err != nil {
		return err
	}
	line := make([]byte, 0, len(term)+12)
	line = append(line, term...)
	line = append(line, '\t')
	line = strconv.AppendInt(line, int64(index), 10)
	line = append(line, '\n')
	_, err := bw.Write(line)
	return err
}
