package enclosing

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustBinding = &binding{
	language:    LangRust,
	displayName: "Rust",
	grammar: func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_rust.Language())
	},
	definitions: map[string]DefinitionKind{
		"function_item": KindFunction,
		"impl_item":     KindImpl,
		"trait_item":    KindTrait,
		"struct_item":   KindType,
		"enum_item":     KindEnum,
		"mod_item":      KindModule,
	},
	refine: refineRust,
	name:   rustName,
}

// NewRustResolver returns a resolver for Rust source.
func NewRustResolver(opts ...Option) *TreeSitterResolver {
	return newTreeSitterResolver(rustBinding, opts...)
}

// refineRust marks functions inside impl and trait bodies as methods.
func refineRust(node *tree_sitter.Node, kind DefinitionKind) DefinitionKind {
	if kind != KindFunction {
		return kind
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "declaration_list" {
		return kind
	}
	switch parentKind(parent) {
	case "impl_item", "trait_item":
		return KindMethod
	}
	return kind
}

// rustName names impl blocks after their type, e.g. "Display for Point".
func rustName(node *tree_sitter.Node, source []byte) string {
	if node.Kind() != "impl_item" {
		return fieldText(node, "name", source)
	}
	typ := fieldText(node, "type", source)
	if trait := fieldText(node, "trait", source); trait != "" {
		return trait + " for " + typ
	}
	return typ
}
