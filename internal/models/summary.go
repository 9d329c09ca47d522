package models

// BuildSummary is the result of one vocabulary build run.
type BuildSummary struct {
	RunID          string `json:"run_id"`
	Documents      int    `json:"documents"`
	Categories     int    `json:"categories"`
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	NonZero        int    `json:"non_zero"`
	VocabularyPath string `json:"vocabulary_path"`
	Written        int    `json:"written"`
	// Skipped counts vocabulary entries that failed to write; the file is incomplete when > 0.
	Skipped    int   `json:"skipped"`
	DurationMs int64 `json:"duration_ms"`
}

// Complete reports whether every vocabulary entry reached the output file.
func (s *BuildSummary) Complete() bool {
	return s.Skipped == 0 && s.Written == s.Cols
}

// CacheStatus describes the local corpus cache.
type CacheStatus struct {
	CachePath      string         `json:"cache_path"`
	Documents      int64          `json:"documents"`
	Categories     map[string]int `json:"categories,omitempty"`
	Subsets        map[string]int `json:"subsets,omitempty"`
	SourceURL      string         `json:"source_url,omitempty"`
	SourceChecksum string         `json:"source_checksum,omitempty"`
	FetchedAt      string         `json:"fetched_at,omitempty"`
	DiskUsageBytes *int64         `json:"disk_usage_bytes,omitempty"`
}
