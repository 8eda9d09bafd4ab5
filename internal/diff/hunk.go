// Package diff parses unified-diff hunks and renumbers patch lines with their
// new-file line numbers.
package diff

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/enclosing"
)

// ErrMalformedHeader is returned for a line starting with "@@" that is not a
// valid hunk header.
var ErrMalformedHeader = errors.New("malformed hunk header")

// headerRegex captures @@ -oldStart[,oldCount] +newStart[,newCount] @@ section.
var headerRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)

// noNewlineMarker follows a line that lacks a trailing newline.
const noNewlineMarker = `\ No newline at end of file`

// Hunk is one "@@" section of a unified diff.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int

	// Section is the text after the closing "@@", often a function
	// signature chosen by git.
	Section string

	// Lines holds the body lines with their ' ', '+' or '-' prefix.
	Lines []string
}

// Header renders the hunk's "@@" line.
func (h Hunk) Header() string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	if h.Section != "" {
		header += " " + h.Section
	}
	return header
}

// String renders the header followed by the body lines.
func (h Hunk) String() string {
	if len(h.Lines) == 0 {
		return h.Header()
	}
	return h.Header() + "\n" + strings.Join(h.Lines, "\n")
}

// NewRange returns the new-file lines the hunk covers. A hunk that only
// deletes covers no new lines; it reports the line the deletion follows so
// that callers can still find its enclosing definition.
func (h Hunk) NewRange() enclosing.LineRange {
	if h.NewLines == 0 {
		start := max(h.NewStart, 1)
		return enclosing.Lines(start, start)
	}
	return enclosing.Lines(h.NewStart, h.NewStart+h.NewLines-1)
}

// InsertAt returns the new-file line at which the hunk body begins. For a
// pure deletion it is the line after the one the deletion follows.
func (h Hunk) InsertAt() int {
	if h.NewLines == 0 {
		return h.NewStart + 1
	}
	return h.NewStart
}

// ParseHeader parses a "@@ -a,b +c,d @@ section" line. Omitted counts
// default to 1.
func ParseHeader(line string) (Hunk, error) {
	m := headerRegex.FindStringSubmatch(line)
	if m == nil {
		return Hunk{}, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	h := Hunk{
		OldStart: atoiDefault(m[1], 0),
		OldLines: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 0),
		NewLines: atoiDefault(m[4], 1),
		Section:  strings.TrimSpace(m[5]),
	}
	return h, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ParseHunks splits a patch into hunks. Anything before the first header
// (such as "diff --git" or "---"/"+++" lines) is ignored, as are "\ No
// newline at end of file" markers.
func ParseHunks(patch string) ([]Hunk, error) {
	var hunks []Hunk
	var cur *Hunk

	for _, line := range splitLines(patch) {
		if strings.HasPrefix(line, "@@") {
			h, err := ParseHeader(line)
			if err != nil {
				return nil, err
			}
			hunks = append(hunks, h)
			cur = &hunks[len(hunks)-1]
			continue
		}
		if cur == nil || line == noNewlineMarker {
			continue
		}
		cur.Lines = append(cur.Lines, line)
	}
	return hunks, nil
}

// splitLines splits on "\n", dropping the empty element a trailing newline
// would produce.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
