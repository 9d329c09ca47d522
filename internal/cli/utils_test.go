package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/ngvocab/internal/models"
	"github.com/hyperjump/ngvocab/internal/vocab"
)

func sampleSummary() *models.BuildSummary {
	return &models.BuildSummary{
		RunID:          "3f0c1b2a-0000-4000-8000-000000000000",
		Documents:      18846,
		Categories:     20,
		Rows:           18846,
		Cols:           40000,
		NonZero:        2000000,
		VocabularyPath: "../data/ng-vocab.tsv",
		Written:        40000,
		DurationMs:     1234,
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteSummary_JSON(t *testing.T) {
	s := sampleSummary()
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s, OutputJSON); err != nil {
		t.Fatalf("WriteSummary(json): %v", err)
	}
	var decoded models.BuildSummary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded != *s {
		t.Errorf("decoded = %+v, want %+v", decoded, *s)
	}
	if !strings.Contains(buf.String(), `"vocabulary_path": "../data/ng-vocab.tsv"`) {
		t.Errorf("expected snake_case keys, got:\n%s", buf.String())
	}
}

func TestWriteSummary_Text(t *testing.T) {
	s := sampleSummary()
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"documents:    18846", "matrix:       (18846, 40000)", "written:      40000"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("skipped line shown for a complete run:\n%s", out)
	}

	s.Written, s.Skipped = 39998, 2
	buf.Reset()
	_ = WriteSummary(&buf, s, OutputText)
	if !strings.Contains(buf.String(), "skipped:      2") {
		t.Errorf("text output missing skip count:\n%s", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(4096)
	st := &models.CacheStatus{
		CachePath:      "../data/20news-bydate.sqlite",
		Documents:      3,
		Categories:     map[string]int{"sci.space": 2, "rec.autos": 1},
		Subsets:        map[string]int{"train": 2, "test": 1},
		SourceURL:      "https://example.com/20news.tar.gz",
		FetchedAt:      "2026-01-02T03:04:05Z",
		DiskUsageBytes: &disk,
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Index(out, "rec.autos") > strings.Index(out, "sci.space") {
		t.Errorf("categories not sorted:\n%s", out)
	}
	for _, want := range []string{"documents:         3", "disk_usage_bytes:  4096", "fetched_at:        2026-01-02T03:04:05Z", "# categories"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := WriteStatus(&buf, st, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.CacheStatus
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Documents != 3 || decoded.Categories["sci.space"] != 2 || *decoded.DiskUsageBytes != 4096 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteStatus_Empty(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteStatus(&buf, &models.CacheStatus{CachePath: "cache.sqlite"}, OutputText)
	if !strings.Contains(buf.String(), "cache is empty") {
		t.Errorf("expected empty cache hint:\n%s", buf.String())
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteReport(&buf, &vocab.Report{Path: "v.tsv", Lines: 4}, OutputText)
	if buf.String() != "v.tsv: ok (4 entries)\n" {
		t.Errorf("ok report = %q", buf.String())
	}

	bad := &vocab.Report{Path: "v.tsv", Lines: 2, Problems: []string{"line 2: missing tab separator"}}
	buf.Reset()
	_ = WriteReport(&buf, bad, OutputText)
	if !strings.Contains(buf.String(), "1 problem(s)") || !strings.Contains(buf.String(), "line 2: missing tab") {
		t.Errorf("bad report = %q", buf.String())
	}

	buf.Reset()
	if err := WriteReport(&buf, bad, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["ok"] != false || decoded["lines"] != float64(2) {
		t.Errorf("decoded = %v", decoded)
	}
}
