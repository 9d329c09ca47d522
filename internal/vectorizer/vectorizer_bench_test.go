package vectorizer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/ngvocab/internal/analysis"
)

func benchTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		var b strings.Builder
		for w := 0; w < 200; w++ {
			fmt.Fprintf(&b, "word%d ", (i*31+w*7)%5000)
		}
		texts[i] = b.String()
	}
	return texts
}

func benchmarkFitTransform(b *testing.B, workers int) {
	a, err := analysis.New(analysis.Options{Lowercase: true})
	if err != nil {
		b.Fatal(err)
	}
	texts := benchTexts(500)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v := New(a, Options{MaxFeatures: 1000, Workers: workers})
		if _, err := v.FitTransform(ctx, texts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFitTransform_Serial(b *testing.B)   { benchmarkFitTransform(b, 1) }
func BenchmarkFitTransform_Parallel(b *testing.B) { benchmarkFitTransform(b, 4) }
