package vocab

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Read parses a vocabulary file into term -> index. Malformed lines and
// duplicate terms are errors.
func Read(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]int)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		term, idx, err := parseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if _, dup := out[term]; dup {
			return nil, fmt.Errorf("%s:%d: duplicate term %q", path, lineNo, term)
		}
		out[term] = idx
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLine(line string) (string, int, error) {
	term, num, ok := strings.Cut(line, "\t")
	if !ok {
		return "", 0, fmt.Errorf("missing tab separator")
	}
	if term == "" {
		return "", 0, errEmptyTerm
	}
	if num == "" || strings.ContainsAny(num, "+-\t") {
		return "", 0, fmt.Errorf("invalid index %q", num)
	}
	idx, err := strconv.Atoi(num)
	if err != nil {
		return "", 0, fmt.Errorf("invalid index %q", num)
	}
	return term, idx, nil
}

// Report describes a checked vocabulary file.
type Report struct {
	Path     string   `json:"path"`
	Lines    int      `json:"lines"`
	Expected int      `json:"expected,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// maxProblems bounds the problems collected by Verify.
const maxProblems = 20

// Verify checks that every line of path is "<term>\t<index>", that terms are
// unique, that indices are unique and lie in [0, lines), and, when expected > 0,
// that the file has exactly expected lines. Only I/O failures are returned as errors.
func Verify(path string, expected int) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rep := &Report{Path: path, Expected: expected}
	problem := func(format string, args ...any) {
		if len(rep.Problems) < maxProblems {
			rep.Problems = append(rep.Problems, fmt.Sprintf(format, args...))
		}
	}

	terms := make(map[string]int)
	indices := make(map[int]int)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		rep.Lines++
		term, idx, err := parseLine(sc.Text())
		if err != nil {
			problem("line %d: %v", rep.Lines, err)
			continue
		}
		if prev, dup := terms[term]; dup {
			problem("line %d: term %q already on line %d", rep.Lines, term, prev)
		} else {
			terms[term] = rep.Lines
		}
		if prev, dup := indices[idx]; dup {
			problem("line %d: index %d already on line %d", rep.Lines, idx, prev)
		} else {
			indices[idx] = rep.Lines
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	var outside []int
	for idx := range indices {
		if idx >= rep.Lines {
			outside = append(outside, idx)
		}
	}
	sort.Ints(outside)
	for _, idx := range outside {
		problem("line %d: index %d outside [0, %d)", indices[idx], idx, rep.Lines)
	}
	if expected > 0 && rep.Lines != expected {
		problem("got %d lines, want %d", rep.Lines, expected)
	}
	return rep, nil
}
