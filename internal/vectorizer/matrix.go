package vectorizer

import (
	"fmt"
	"sort"
)

// Matrix is a document-term count matrix in compressed sparse row form.
// Row i holds columns Indices[Indptr[i]:Indptr[i+1]] (ascending) with counts in Data.
type Matrix struct {
	Rows    int
	Cols    int
	Indptr  []int
	Indices []int
	Data    []int
}

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) {
	return m.Rows, m.Cols
}

// NNZ returns the number of stored (non-zero) cells.
func (m *Matrix) NNZ() int {
	return len(m.Data)
}

// Row returns the column indices and counts of row i. The slices alias the matrix.
func (m *Matrix) Row(i int) (indices, counts []int) {
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	return m.Indices[lo:hi], m.Data[lo:hi]
}

// At returns the count at (i, j).
func (m *Matrix) At(i, j int) int {
	indices, counts := m.Row(i)
	k := sort.SearchInts(indices, j)
	if k < len(indices) && indices[k] == j {
		return counts[k]
	}
	return 0
}

// ColumnSums returns the total count per column.
func (m *Matrix) ColumnSums() []int {
	sums := make([]int, m.Cols)
	for k, j := range m.Indices {
		sums[j] += m.Data[k]
	}
	return sums
}

// ShapeString formats the shape the way the build log prints it: "(rows, cols)".
func (m *Matrix) ShapeString() string {
	return fmt.Sprintf("(%d, %d)", m.Rows, m.Cols)
}

// buildMatrix counts vocabulary terms per document. Terms outside vocab are ignored.
func buildMatrix(docs [][]string, vocab Vocabulary) *Matrix {
	m := &Matrix{
		Rows:   len(docs),
		Cols:   len(vocab),
		Indptr: make([]int, 1, len(docs)+1),
	}
	counts := make(map[int]int)
	for _, terms := range docs {
		for _, term := range terms {
			if j, ok := vocab[term]; ok {
				counts[j]++
			}
		}
		start := len(m.Indices)
		for j := range counts {
			m.Indices = append(m.Indices, j)
		}
		row := m.Indices[start:]
		sort.Ints(row)
		for _, j := range row {
			m.Data = append(m.Data, counts[j])
		}
		m.Indptr = append(m.Indptr, len(m.Indices))
		clear(counts)
	}
	return m
}
