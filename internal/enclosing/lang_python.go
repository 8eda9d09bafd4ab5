package enclosing

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonBinding = &binding{
	language:    LangPython,
	displayName: "Python",
	grammar: func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_python.Language())
	},
	definitions: map[string]DefinitionKind{
		"function_definition": KindFunction,
		"class_definition":    KindClass,
	},
	refine: refinePython,
}

// NewPythonResolver returns a resolver for Python source.
func NewPythonResolver(opts ...Option) *TreeSitterResolver {
	return newTreeSitterResolver(pythonBinding, opts...)
}

// refinePython marks functions declared directly in a class body as methods.
// Decorated functions sit one level deeper, under decorated_definition.
func refinePython(node *tree_sitter.Node, kind DefinitionKind) DefinitionKind {
	if kind != KindFunction {
		return kind
	}
	parent := node.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Kind() != "block" {
		return kind
	}
	if parentKind(parent) == "class_definition" {
		return KindMethod
	}
	return kind
}
