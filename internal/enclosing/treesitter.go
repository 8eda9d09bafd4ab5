package enclosing

import (
	"fmt"
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// binding ties a tree-sitter grammar to the node kinds that count as
// definitions in that language. It is the only per-language piece; the
// traversal is shared.
type binding struct {
	language    Language
	displayName string
	grammar     func() *tree_sitter.Language

	// definitions maps grammar node kinds to their default category.
	definitions map[string]DefinitionKind

	// refine adjusts the category from the node's surroundings, e.g. a
	// function nested in a class body becomes a method. Optional.
	refine func(node *tree_sitter.Node, kind DefinitionKind) DefinitionKind

	// name extracts the definition's name. Optional; defaults to the "name"
	// field.
	name func(node *tree_sitter.Node, source []byte) string
}

func (b *binding) isDefinition(kind string) bool {
	_, ok := b.definitions[kind]
	return ok
}

func (b *binding) kindOf(node *tree_sitter.Node) DefinitionKind {
	kind := b.definitions[node.Kind()]
	if b.refine != nil {
		kind = b.refine(node, kind)
	}
	return kind
}

func (b *binding) nameOf(node *tree_sitter.Node, source []byte) string {
	if b.name != nil {
		return b.name(node, source)
	}
	return fieldText(node, "name", source)
}

// fieldText returns the source text of a named field, or "" if absent.
func fieldText(node *tree_sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Utf8Text(source)
}

// parentKind returns the kind of node's parent, or "" at the root.
func parentKind(node *tree_sitter.Node) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	return parent.Kind()
}

// Option configures a TreeSitterResolver.
type Option func(*options)

type options struct {
	selection Selection
	logger    *slog.Logger
	prune     bool
}

func defaultOptions() options {
	return options{
		selection: SelectOutermost,
		logger:    slog.Default().With("component", "enclosing"),
		prune:     true,
	}
}

// WithSelection chooses between outermost (default) and innermost matches.
func WithSelection(s Selection) Option {
	return func(o *options) { o.selection = s }
}

// WithLogger sets the logger used to report parse failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// withoutPruning walks every subtree. Results are identical; tests use it to
// check that.
func withoutPruning() Option {
	return func(o *options) { o.prune = false }
}

// Compile-time check.
var _ Resolver = (*TreeSitterResolver)(nil)

// TreeSitterResolver implements Resolver for one tree-sitter grammar.
// A new tree-sitter parser and tree are created per call and released before
// the call returns, so a TreeSitterResolver is safe for concurrent use.
type TreeSitterResolver struct {
	binding *binding
	lang    *tree_sitter.Language
	opts    options
}

func newTreeSitterResolver(b *binding, opts ...Option) *TreeSitterResolver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &TreeSitterResolver{
		binding: b,
		lang:    b.grammar(),
		opts:    o,
	}
}

// Language returns the language this resolver parses.
func (r *TreeSitterResolver) Language() Language {
	return r.binding.language
}

// Selection returns the configured selection mode.
func (r *TreeSitterResolver) Selection() Selection {
	return r.opts.selection
}

// withSelection returns a copy of r that selects with sel and keeps every
// other option, including the logger.
func (r *TreeSitterResolver) withSelection(sel Selection) *TreeSitterResolver {
	c := *r
	c.opts.selection = sel
	return &c
}

// FindEnclosingContext parses source and returns the definition containing
// lines. Empty source and ranges past the end of the file resolve to none.
func (r *TreeSitterResolver) FindEnclosingContext(source []byte, lines LineRange) Resolution {
	if err := lines.Validate(); err != nil {
		return Resolution{Err: err}
	}
	if len(source) == 0 {
		return Resolution{}
	}

	var found *EnclosingContext
	err := r.withTree(source, func(root *tree_sitter.Node) {
		cursor := root.Walk()
		defer cursor.Close()

		w := &definitionWalker{
			binding:   r.binding,
			target:    lines,
			selection: r.opts.selection,
			prune:     r.opts.prune,
		}
		w.walk(cursor)

		if w.best != nil {
			found = r.describe(w.best, w.bestLines, source)
		}
	})
	if err != nil {
		r.opts.logger.Warn("enclosing context lookup failed",
			"language", r.binding.language, "lines", lines.String(), "error", err)
		return Resolution{Err: err}
	}
	return Resolution{Context: found}
}

// DryRun parses source and reports whether it is syntactically well formed.
func (r *TreeSitterResolver) DryRun(source []byte) Validity {
	if len(source) == 0 {
		return Validity{Valid: true}
	}

	var v Validity
	err := r.withTree(source, func(root *tree_sitter.Node) {
		if !root.HasError() {
			v = Validity{Valid: true}
			return
		}
		v = Validity{Error: r.syntaxErrorMessage(root, source)}
	})
	if err != nil {
		return Validity{Error: err.Error()}
	}
	return v
}

// withTree parses source and hands the root node to fn. The tree is closed
// when fn returns. Panics raised while parsing or inside fn are converted to
// ErrParse.
func (r *TreeSitterResolver) withTree(source []byte, fn func(root *tree_sitter.Node)) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrParse, r.binding.language, rec)
		}
	}()

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(r.lang); err != nil {
		return fmt.Errorf("%w: set language %s: %v", ErrParse, r.binding.language, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("%w: tree-sitter returned nil tree for %s source", ErrParse, r.binding.language)
	}
	defer tree.Close()

	fn(tree.RootNode())
	return nil
}

// describe copies everything callers need out of node so the result outlives
// the tree.
func (r *TreeSitterResolver) describe(node *tree_sitter.Node, lines LineRange, source []byte) *EnclosingContext {
	return &EnclosingContext{
		Language:  r.binding.language,
		NodeKind:  node.Kind(),
		Kind:      r.binding.kindOf(node),
		Name:      r.binding.nameOf(node, source),
		StartLine: lines.Start,
		EndLine:   lines.End,
		Text:      node.Utf8Text(source),
	}
}

func (r *TreeSitterResolver) syntaxErrorMessage(root *tree_sitter.Node, source []byte) string {
	cursor := root.Walk()
	defer cursor.Close()

	bad := firstSyntaxError(cursor)
	if bad == nil {
		return fmt.Sprintf("Syntax error in %s code", r.binding.displayName)
	}
	line := int(bad.StartPosition().Row) + 1
	if bad.IsMissing() {
		return fmt.Sprintf("Syntax error in %s code: missing %q at line %d", r.binding.displayName, bad.Kind(), line)
	}
	text := bad.Utf8Text(source)
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("Syntax error in %s code at line %d near %q", r.binding.displayName, line, text)
}
