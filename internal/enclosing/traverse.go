package enclosing

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Selection decides which qualifying definition wins when several contain
// the target range.
type Selection int

const (
	// SelectOutermost keeps the definition with the largest span.
	SelectOutermost Selection = iota
	// SelectInnermost keeps the definition with the smallest span.
	SelectInnermost
)

func (s Selection) String() string {
	switch s {
	case SelectOutermost:
		return "outermost"
	case SelectInnermost:
		return "innermost"
	default:
		return "unknown"
	}
}

// ParseSelection maps "outermost" and "innermost" to a Selection. The empty
// string selects the default.
func ParseSelection(s string) (Selection, bool) {
	switch s {
	case "", "outermost":
		return SelectOutermost, true
	case "innermost":
		return SelectInnermost, true
	default:
		return SelectOutermost, false
	}
}

// nodeLines converts tree-sitter's 0-based rows into 1-based lines.
func nodeLines(node *tree_sitter.Node) LineRange {
	return LineRange{
		Start: int(node.StartPosition().Row) + 1,
		End:   int(node.EndPosition().Row) + 1,
	}
}

// definitionWalker performs a pre-order walk over a syntax tree and records
// the best definition node containing target.
type definitionWalker struct {
	binding   *binding
	target    LineRange
	selection Selection
	prune     bool

	best      *tree_sitter.Node
	bestLines LineRange
}

func (w *definitionWalker) walk(cursor *tree_sitter.TreeCursor) {
	node := cursor.Node()
	lines := nodeLines(node)
	contains := lines.Contains(w.target)

	// Descendants never extend past their ancestor, so nothing below a node
	// that misses the target can contain it either.
	if w.prune && !contains {
		return
	}

	if contains && w.binding.isDefinition(node.Kind()) && w.better(lines) {
		w.best = node
		w.bestLines = lines
	}

	if cursor.GotoFirstChild() {
		w.walk(cursor)
		for cursor.GotoNextSibling() {
			w.walk(cursor)
		}
		cursor.GotoParent()
	}
}

// better reports whether a candidate with the given lines replaces the
// current best. Equal spans keep the earlier node.
func (w *definitionWalker) better(lines LineRange) bool {
	if w.best == nil {
		return true
	}
	switch w.selection {
	case SelectInnermost:
		return lines.Span() < w.bestLines.Span()
	default:
		return lines.Span() > w.bestLines.Span()
	}
}

// firstSyntaxError returns the first ERROR or MISSING node in pre-order,
// descending only into subtrees that report an error.
func firstSyntaxError(cursor *tree_sitter.TreeCursor) *tree_sitter.Node {
	node := cursor.Node()
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	if !cursor.GotoFirstChild() {
		return nil
	}
	defer cursor.GotoParent()
	for {
		if found := firstSyntaxError(cursor); found != nil {
			return found
		}
		if !cursor.GotoNextSibling() {
			return nil
		}
	}
}
