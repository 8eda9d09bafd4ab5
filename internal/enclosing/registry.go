package enclosing

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// bindings lists every grammar compiled into the binary.
var bindings = map[Language]*binding{
	LangPython:     pythonBinding,
	LangGo:         goBinding,
	LangTypeScript: typescriptBinding,
	LangTSX:        tsxBinding,
	LangRust:       rustBinding,
}

// extToLanguage maps file extensions to Language.
var extToLanguage = map[string]Language{
	".py":  LangPython,
	".pyi": LangPython,
	".go":  LangGo,
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
	".js":  LangTSX,
	".jsx": LangTSX,
	".mjs": LangTSX,
	".rs":  LangRust,
}

// LanguageForPath reports the language of a file by its extension.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// NewResolver returns the tree-sitter resolver for lang.
func NewResolver(lang Language, opts ...Option) (*TreeSitterResolver, error) {
	b, ok := bindings[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return newTreeSitterResolver(b, opts...), nil
}

// Registry selects a Resolver by language or by file path. It is read-only
// after construction and safe for concurrent use.
type Registry struct {
	resolvers map[Language]Resolver
}

// NewRegistry creates a Registry with every supported language registered.
// opts apply to each resolver.
func NewRegistry(opts ...Option) *Registry {
	resolvers := make(map[Language]Resolver, len(bindings))
	for lang, b := range bindings {
		resolvers[lang] = newTreeSitterResolver(b, opts...)
	}
	return &Registry{resolvers: resolvers}
}

// NewRegistryOf creates a Registry from explicit resolvers. A later resolver
// for the same language replaces an earlier one.
func NewRegistryOf(resolvers ...Resolver) *Registry {
	m := make(map[Language]Resolver, len(resolvers))
	for _, r := range resolvers {
		m[r.Language()] = r
	}
	return &Registry{resolvers: m}
}

// Resolver returns the resolver registered for lang.
func (r *Registry) Resolver(lang Language) (Resolver, bool) {
	res, ok := r.resolvers[lang]
	return res, ok
}

// ForPath returns the resolver for the file's extension.
func (r *Registry) ForPath(path string) (Resolver, bool) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, false
	}
	return r.Resolver(lang)
}

// SupportedLanguages returns the registered languages in sorted order.
func (r *Registry) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(r.resolvers))
	for l := range r.resolvers {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Select returns a copy of r whose tree-sitter resolvers use sel. Their
// other options carry over. Resolvers of other types are shared as is.
func (r *Registry) Select(sel Selection) *Registry {
	m := make(map[Language]Resolver, len(r.resolvers))
	for lang, res := range r.resolvers {
		if ts, ok := res.(*TreeSitterResolver); ok {
			res = ts.withSelection(sel)
		}
		m[lang] = res
	}
	return &Registry{resolvers: m}
}

// Restrict returns a Registry limited to langs. An empty list returns r
// unchanged.
func (r *Registry) Restrict(langs []Language) (*Registry, error) {
	if len(langs) == 0 {
		return r, nil
	}
	m := make(map[Language]Resolver, len(langs))
	for _, l := range langs {
		res, ok := r.resolvers[l]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
		}
		m[l] = res
	}
	return &Registry{resolvers: m}, nil
}
