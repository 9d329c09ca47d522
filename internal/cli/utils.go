// Package cli renders ngvocab command output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/ngvocab/internal/models"
	"github.com/hyperjump/ngvocab/internal/vocab"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSummary writes a build summary to w in the given format.
func WriteSummary(w io.Writer, s *models.BuildSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "run_id:       %s\n", s.RunID)
	fmt.Fprintf(w, "documents:    %d   # posts loaded from the corpus\n", s.Documents)
	fmt.Fprintf(w, "categories:   %d\n", s.Categories)
	fmt.Fprintf(w, "matrix:       (%d, %d)   # documents x terms, %d non-zero\n", s.Rows, s.Cols, s.NonZero)
	fmt.Fprintf(w, "vocabulary:   %s\n", s.VocabularyPath)
	fmt.Fprintf(w, "written:      %d\n", s.Written)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "skipped:      %d   # vocabulary file is incomplete\n", s.Skipped)
	}
	fmt.Fprintf(w, "duration_ms:  %d\n", s.DurationMs)
	return nil
}

// WriteStatus writes the corpus cache status to w in the given format.
func WriteStatus(w io.Writer, st *models.CacheStatus, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "cache_path:        %s\n", st.CachePath)
	fmt.Fprintf(w, "documents:         %d   # cached posts\n", st.Documents)
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:  %d   # data directory on disk\n", *st.DiskUsageBytes)
	}
	if st.Documents == 0 {
		fmt.Fprintln(w, "\n# cache is empty; run \"ngvocab fetch\" or \"ngvocab build\"")
		return nil
	}
	if st.SourceURL != "" {
		fmt.Fprintf(w, "source_url:        %s\n", st.SourceURL)
	}
	if st.SourceChecksum != "" {
		fmt.Fprintf(w, "source_sha256:     %s\n", st.SourceChecksum)
	}
	if st.FetchedAt != "" {
		fmt.Fprintf(w, "fetched_at:        %s\n", st.FetchedAt)
	}
	writeCounts(w, "subsets", st.Subsets)
	writeCounts(w, "categories", st.Categories)
	return nil
}

func writeCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "\n# %s\n", title)
	for _, name := range names {
		fmt.Fprintf(w, "%-26s %d\n", name, counts[name])
	}
}

// WriteReport writes a vocabulary check report to w in the given format.
func WriteReport(w io.Writer, rep *vocab.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			*vocab.Report
			OK bool `json:"ok"`
		}{rep, rep.OK()})
	}
	if rep.OK() {
		fmt.Fprintf(w, "%s: ok (%d entries)\n", rep.Path, rep.Lines)
		return nil
	}
	fmt.Fprintf(w, "%s: %d problem(s) in %d lines\n", rep.Path, len(rep.Problems), rep.Lines)
	for _, p := range rep.Problems {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}
