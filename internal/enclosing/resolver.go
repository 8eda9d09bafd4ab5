package enclosing

import (
	"errors"
	"fmt"
)

// Language identifies a source language with a registered grammar.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// DefinitionKind is the normalised category of a definition node.
type DefinitionKind string

const (
	KindFunction  DefinitionKind = "function"
	KindMethod    DefinitionKind = "method"
	KindClass     DefinitionKind = "class"
	KindType      DefinitionKind = "type"
	KindInterface DefinitionKind = "interface"
	KindEnum      DefinitionKind = "enum"
	KindImpl      DefinitionKind = "impl"
	KindTrait     DefinitionKind = "trait"
	KindModule    DefinitionKind = "module"
)

var (
	// ErrInvalidRange is returned for ranges with Start < 1 or Start > End.
	ErrInvalidRange = errors.New("invalid line range")

	// ErrParse wraps every failure of the underlying grammar engine.
	ErrParse = errors.New("parse failed")

	// ErrUnsupportedLanguage is returned when no grammar is registered.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// LineRange is a 1-based, inclusive range of source lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Lines returns the range [start, end].
func Lines(start, end int) LineRange {
	return LineRange{Start: start, End: end}
}

// Validate reports whether r satisfies 1 <= Start <= End.
func (r LineRange) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start line %d is below 1", ErrInvalidRange, r.Start)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: start line %d is after end line %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Contains reports whether other lies entirely within r.
func (r LineRange) Contains(other LineRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Span is End - Start. A single-line range has span 0.
func (r LineRange) Span() int {
	return r.End - r.Start
}

func (r LineRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// EnclosingContext describes the definition that encloses a line range. It is
// a copy of the node's facts and stays valid after the syntax tree is gone.
type EnclosingContext struct {
	Language  Language       `json:"language"`
	NodeKind  string         `json:"nodeKind"`
	Kind      DefinitionKind `json:"kind"`
	Name      string         `json:"name,omitempty"`
	StartLine int            `json:"startLine"`
	EndLine   int            `json:"endLine"`
	Text      string         `json:"text"`
}

// Lines returns the span of the definition.
func (c EnclosingContext) Lines() LineRange {
	return LineRange{Start: c.StartLine, End: c.EndLine}
}

// Resolution is the outcome of FindEnclosingContext. It is in exactly one of
// three states: found (Context set), none (both nil) or failed (Err set).
type Resolution struct {
	Context *EnclosingContext `json:"context,omitempty"`
	Err     error             `json:"-"`
}

// Found reports whether an enclosing definition was located.
func (r Resolution) Found() bool {
	return r.Err == nil && r.Context != nil
}

// Failed reports whether the resolution could not be carried out.
func (r Resolution) Failed() bool {
	return r.Err != nil
}

// Validity is the result of a dry-run parse.
type Validity struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

// Resolver locates enclosing definitions and checks syntax for one language.
// Implementations never panic; failures are reported in the returned values.
type Resolver interface {
	// FindEnclosingContext returns the outermost definition that contains
	// lines, or none when no definition does.
	FindEnclosingContext(source []byte, lines LineRange) Resolution

	// DryRun parses source and reports whether the tree is free of errors.
	DryRun(source []byte) Validity

	// Language returns the language this resolver parses.
	Language() Language
}
