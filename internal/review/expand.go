package review

import (
	"log/slog"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/diff"
	"github.com/dusk-indust/hunkctx/internal/enclosing"
)

// ExpandedHunk is a hunk widened to cover the definitions its changes sit in.
// Contexts lists those definitions; it is empty when the hunk was left as is.
type ExpandedHunk struct {
	diff.Hunk
	Contexts []enclosing.EnclosingContext
}

// hunkGroup collects hunks whose expanded extents overlap or touch.
type hunkGroup struct {
	start, end int
	hunks      []diff.Hunk
	contexts   []enclosing.EnclosingContext
}

// ExpandHunks widens each hunk to its enclosing definition in source (the
// new file contents) and merges hunks whose widened extents overlap, so no
// line is rendered twice. Lines pulled in from source become context lines.
// Hunks without an enclosing definition are returned unchanged.
func ExpandHunks(r enclosing.Resolver, source []byte, hunks []diff.Hunk, logger *slog.Logger) []ExpandedHunk {
	if logger == nil {
		logger = slog.Default()
	}
	fileLines := sourceLines(source)

	var groups []*hunkGroup
	for _, h := range hunks {
		start := h.InsertAt()
		end := start + h.NewLines - 1

		var found *enclosing.EnclosingContext
		res := r.FindEnclosingContext(source, h.NewRange())
		switch {
		case res.Failed():
			logger.Warn("hunk context unavailable", "hunk", h.Header(), "error", res.Err)
		case res.Found():
			found = res.Context
			start = min(start, found.StartLine)
			end = max(end, min(found.EndLine, len(fileLines)))
		}

		if n := len(groups); n > 0 && start <= groups[n-1].end+1 {
			g := groups[n-1]
			g.start = min(g.start, start)
			g.end = max(g.end, end)
			g.hunks = append(g.hunks, h)
			if found != nil {
				g.contexts = appendContext(g.contexts, *found)
			}
			groups = absorbPrevious(groups)
			continue
		}

		g := &hunkGroup{start: start, end: end, hunks: []diff.Hunk{h}}
		if found != nil {
			g.contexts = []enclosing.EnclosingContext{*found}
		}
		groups = append(groups, g)
	}

	out := make([]ExpandedHunk, 0, len(groups))
	for _, g := range groups {
		if len(g.hunks) == 1 && len(g.contexts) == 0 {
			out = append(out, ExpandedHunk{Hunk: g.hunks[0]})
			continue
		}
		out = append(out, ExpandedHunk{
			Hunk:     mergeGroup(g, fileLines),
			Contexts: g.contexts,
		})
	}
	return out
}

// absorbPrevious folds the last group into the ones before it while a
// lowered start makes them overlap or touch. A later hunk can reach back past
// earlier groups when it resolves to a definition that encloses them.
func absorbPrevious(groups []*hunkGroup) []*hunkGroup {
	for n := len(groups); n > 1 && groups[n-1].start <= groups[n-2].end+1; n = len(groups) {
		prev, last := groups[n-2], groups[n-1]
		prev.start = min(prev.start, last.start)
		prev.end = max(prev.end, last.end)
		prev.hunks = append(prev.hunks, last.hunks...)
		for _, c := range last.contexts {
			prev.contexts = appendContext(prev.contexts, c)
		}
		groups = groups[:n-1]
	}
	return groups
}

// appendContext adds c unless an identical span is already present.
func appendContext(list []enclosing.EnclosingContext, c enclosing.EnclosingContext) []enclosing.EnclosingContext {
	for _, existing := range list {
		if existing.Lines() == c.Lines() {
			return list
		}
	}
	return append(list, c)
}

// mergeGroup renders a group as a single hunk: source lines between and
// around the original hunks become context lines.
func mergeGroup(g *hunkGroup, fileLines []string) diff.Hunk {
	first := g.hunks[0]
	merged := diff.Hunk{NewStart: g.start}

	var oldCount, newCount int
	emitContext := func(line int) {
		if line < 1 || line > len(fileLines) {
			return
		}
		merged.Lines = append(merged.Lines, " "+fileLines[line-1])
		oldCount++
		newCount++
	}

	line := g.start
	for _, h := range g.hunks {
		for ; line < h.InsertAt(); line++ {
			emitContext(line)
		}
		for _, body := range h.Lines {
			merged.Lines = append(merged.Lines, body)
			switch {
			case strings.HasPrefix(body, "+"):
				newCount++
			case strings.HasPrefix(body, "-"):
				oldCount++
			default:
				oldCount++
				newCount++
			}
		}
		line = max(line, h.InsertAt()+h.NewLines)
	}
	for ; line <= g.end; line++ {
		emitContext(line)
	}

	oldInsert := first.OldStart
	if first.OldLines == 0 {
		oldInsert++
	}
	merged.OldStart = max(oldInsert-(first.InsertAt()-g.start), 0)
	merged.OldLines = oldCount
	merged.NewLines = newCount

	if len(g.contexts) > 0 {
		merged.Section = sectionFor(outermost(g.contexts), fileLines)
	} else {
		merged.Section = first.Section
	}
	return merged
}

// outermost returns the context that starts first; the earliest listed wins
// ties.
func outermost(contexts []enclosing.EnclosingContext) enclosing.EnclosingContext {
	best := contexts[0]
	for _, c := range contexts[1:] {
		if c.StartLine < best.StartLine {
			best = c
		}
	}
	return best
}

// sectionFor returns the first source line of the definition, trimmed, the
// same way git labels hunks with the enclosing function's header.
func sectionFor(c enclosing.EnclosingContext, fileLines []string) string {
	if c.StartLine < 1 || c.StartLine > len(fileLines) {
		return c.Name
	}
	return strings.TrimSpace(fileLines[c.StartLine-1])
}

func sourceLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(source), "\n"), "\n")
}
