package enclosing

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

var goBinding = &binding{
	language:    LangGo,
	displayName: "Go",
	grammar: func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_go.Language())
	},
	definitions: map[string]DefinitionKind{
		"function_declaration": KindFunction,
		"method_declaration":   KindMethod,
		"type_declaration":     KindType,
	},
	refine: refineGo,
	name:   goName,
}

// NewGoResolver returns a resolver for Go source.
func NewGoResolver(opts ...Option) *TreeSitterResolver {
	return newTreeSitterResolver(goBinding, opts...)
}

// firstTypeSpec returns the first type_spec (or type_alias) of a
// type_declaration. Grouped declarations report their first member.
func firstTypeSpec(node *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "type_spec" || child.Kind() == "type_alias" {
			return child
		}
	}
	return nil
}

func refineGo(node *tree_sitter.Node, kind DefinitionKind) DefinitionKind {
	if kind != KindType {
		return kind
	}
	spec := firstTypeSpec(node)
	if spec == nil {
		return kind
	}
	typeNode := spec.ChildByFieldName("type")
	if typeNode != nil && typeNode.Kind() == "interface_type" {
		return KindInterface
	}
	return kind
}

func goName(node *tree_sitter.Node, source []byte) string {
	if node.Kind() != "type_declaration" {
		return fieldText(node, "name", source)
	}
	spec := firstTypeSpec(node)
	if spec == nil {
		return ""
	}
	return fieldText(spec, "name", source)
}
