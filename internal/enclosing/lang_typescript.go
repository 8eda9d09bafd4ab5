package enclosing

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// typescriptDefinitions is shared by the TypeScript and TSX grammars, which
// use the same node vocabulary for declarations.
var typescriptDefinitions = map[string]DefinitionKind{
	"function_declaration":           KindFunction,
	"generator_function_declaration": KindFunction,
	"class_declaration":              KindClass,
	"abstract_class_declaration":     KindClass,
	"method_definition":              KindMethod,
	"interface_declaration":          KindInterface,
	"enum_declaration":               KindEnum,
	"type_alias_declaration":         KindType,
}

var typescriptBinding = &binding{
	language:    LangTypeScript,
	displayName: "TypeScript",
	grammar: func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	},
	definitions: typescriptDefinitions,
}

var tsxBinding = &binding{
	language:    LangTSX,
	displayName: "TSX",
	grammar: func() *tree_sitter.Language {
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	},
	definitions: typescriptDefinitions,
}

// NewTypeScriptResolver returns a resolver for TypeScript source.
func NewTypeScriptResolver(opts ...Option) *TreeSitterResolver {
	return newTreeSitterResolver(typescriptBinding, opts...)
}

// NewTSXResolver returns a resolver for TSX and JavaScript (JSX) source.
func NewTSXResolver(opts ...Option) *TreeSitterResolver {
	return newTreeSitterResolver(tsxBinding, opts...)
}
