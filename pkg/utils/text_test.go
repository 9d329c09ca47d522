package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"cut with ellipsis", "hello world", 5, "hello..."},
		{"maxLen 0 returns as-is", "x", 0, "x"},
		{"does not split runes", "naïve", 3, "na..."},
		{"rune boundary kept", "naïve", 4, "naï..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
