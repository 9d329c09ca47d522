package corpus

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"

	"github.com/hyperjump/ngvocab/internal/config"
	"github.com/hyperjump/ngvocab/internal/models"
)

const subsetDirPrefix = "20news-bydate-"

// ReadArchive parses a gzip'd tar of the bydate corpus. Regular files at
// 20news-bydate-<subset>/<category>/<name> become documents; other entries are ignored.
// Post bodies are Latin-1, so bytes are decoded as ISO-8859-1.
func ReadArchive(r io.Reader) ([]*models.Document, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	decoder := charmap.ISO8859_1.NewDecoder()
	tr := tar.NewReader(gz)
	var docs []*models.Document
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := path.Clean(strings.TrimPrefix(hdr.Name, "./"))
		subset, category, ok := splitEntry(name)
		if !ok {
			continue
		}
		raw, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		text, err := decoder.Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		docs = append(docs, &models.Document{
			Text:     string(text),
			Category: category,
			Subset:   subset,
			Filename: name,
		})
	}
	return docs, nil
}

func splitEntry(name string) (subset, category string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	subset = strings.TrimPrefix(parts[0], subsetDirPrefix)
	if subset == parts[0] || (subset != config.SubsetTrain && subset != config.SubsetTest) {
		return "", "", false
	}
	return subset, parts[1], true
}
