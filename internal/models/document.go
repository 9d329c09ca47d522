// Package models defines core data structures for corpus documents and build results.
package models

import "fmt"

// Document is one newsgroup post with its category label.
type Document struct {
	ID       int    `json:"id" db:"-"`
	Text     string `json:"text" db:"text"`
	Label    int    `json:"label" db:"-"`
	Category string `json:"category" db:"category"`
	Subset   string `json:"subset" db:"subset"`
	Filename string `json:"filename" db:"filename"`
}

// Dataset is an ordered document set with the names behind each label.
// Label i of any document names TargetNames[i].
type Dataset struct {
	Documents   []*Document `json:"documents"`
	TargetNames []string    `json:"target_names"`
}

// Len returns the number of documents.
func (d *Dataset) Len() int {
	return len(d.Documents)
}

// Texts returns document texts in dataset order.
func (d *Dataset) Texts() []string {
	out := make([]string, len(d.Documents))
	for i, doc := range d.Documents {
		out[i] = doc.Text
	}
	return out
}

// Targets returns document labels in dataset order.
func (d *Dataset) Targets() []int {
	out := make([]int, len(d.Documents))
	for i, doc := range d.Documents {
		out[i] = doc.Label
	}
	return out
}

// Validate checks that IDs are ordinal positions and labels name a target.
func (d *Dataset) Validate() error {
	for i, doc := range d.Documents {
		if doc.ID != i {
			return fmt.Errorf("document at position %d has id %d", i, doc.ID)
		}
		if doc.Label < 0 || doc.Label >= len(d.TargetNames) {
			return fmt.Errorf("document %d has label %d outside [0, %d)", i, doc.Label, len(d.TargetNames))
		}
		if d.TargetNames[doc.Label] != doc.Category {
			return fmt.Errorf("document %d label %d names %q, not %q", i, doc.Label, d.TargetNames[doc.Label], doc.Category)
		}
	}
	return nil
}
