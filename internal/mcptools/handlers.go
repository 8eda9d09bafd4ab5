package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/dusk-indust/hunkctx/internal/review"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ContextService holds the resolvers and prompt builder used by MCP tool
// handlers.
type ContextService struct {
	registry  *enclosing.Registry
	innermost *enclosing.Registry // registry with innermost selection
	smarter  *review.SmarterContext
	builder  *review.Builder
	budget   *review.Budget
	root     string // relative paths are read from here
	logger   *slog.Logger
}

// NewContextService creates a ContextService over registry. cfg configures
// the review prompt builder.
func NewContextService(registry *enclosing.Registry, cfg review.BuilderConfig) *ContextService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Budget == nil {
		cfg.Budget = review.NewBudget(nil, nil)
	}
	return &ContextService{
		registry:  registry,
		innermost: registry.Select(enclosing.SelectInnermost),
		smarter:   review.NewSmarterContext(registry, cfg.Logger),
		builder:   review.NewBuilder(registry, cfg),
		budget:    cfg.Budget,
		logger:    cfg.Logger.With("component", "mcptools"),
	}
}

// SetRoot sets the directory relative paths are resolved against.
func (s *ContextService) SetRoot(root string) {
	s.root = root
}

// resolverFor picks the resolver from an explicit language or the path's
// extension.
func (s *ContextService) resolverFor(path, language string, innermost bool) (enclosing.Resolver, error) {
	lang := enclosing.Language(strings.ToLower(language))
	if lang == "" {
		detected, ok := enclosing.LanguageForPath(path)
		if !ok {
			return nil, fmt.Errorf("%w: cannot detect language of %q", enclosing.ErrUnsupportedLanguage, path)
		}
		lang = detected
	}

	registry := s.registry
	if innermost {
		registry = s.innermost
	}
	r, ok := registry.Resolver(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %s", enclosing.ErrUnsupportedLanguage, lang)
	}
	return r, nil
}

// readSource returns source when given, otherwise the contents of path.
func (s *ContextService) readSource(path, source string) ([]byte, error) {
	if source != "" {
		return []byte(source), nil
	}
	if path == "" {
		return nil, fmt.Errorf("path or source is required")
	}
	if !filepath.IsAbs(path) && s.root != "" {
		path = filepath.Join(s.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// FindEnclosingContext returns the definition that contains a line range.
func (s *ContextService) FindEnclosingContext(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FindEnclosingContextInput,
) (*mcp.CallToolResult, FindEnclosingContextOutput, error) {
	resolver, err := s.resolverFor(input.Path, input.Language, input.Innermost)
	if err != nil {
		return nil, FindEnclosingContextOutput{}, err
	}
	source, err := s.readSource(input.Path, input.Source)
	if err != nil {
		return nil, FindEnclosingContextOutput{}, err
	}

	end := input.EndLine
	if end == 0 {
		end = input.StartLine
	}
	res := resolver.FindEnclosingContext(source, enclosing.Lines(input.StartLine, end))
	if res.Failed() {
		return nil, FindEnclosingContextOutput{}, fmt.Errorf("find enclosing context: %w", res.Err)
	}
	return nil, FindEnclosingContextOutput{Found: res.Found(), Context: res.Context}, nil
}

// CheckValidity reports whether a file parses without syntax errors.
func (s *ContextService) CheckValidity(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CheckValidityInput,
) (*mcp.CallToolResult, CheckValidityOutput, error) {
	resolver, err := s.resolverFor(input.Path, input.Language, false)
	if err != nil {
		return nil, CheckValidityOutput{}, err
	}
	source, err := s.readSource(input.Path, input.Source)
	if err != nil {
		return nil, CheckValidityOutput{}, err
	}
	return nil, CheckValidityOutput{Validity: resolver.DryRun(source)}, nil
}

// ExpandPatch renders one changed file the way it appears in review prompts.
func (s *ContextService) ExpandPatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExpandPatchInput,
) (*mcp.CallToolResult, ExpandPatchOutput, error) {
	if input.File.Filename == "" {
		return nil, ExpandPatchOutput{}, fmt.Errorf("file.filename is required")
	}

	build := s.smarter.BuildPatchPrompt
	if input.Numbered {
		build = review.BuildSuggestionPrompt
	}
	patch, err := build(ctx, input.File)
	if err != nil {
		return nil, ExpandPatchOutput{}, err
	}
	return nil, ExpandPatchOutput{Patch: patch}, nil
}

// BuildReviewPrompt assembles the review conversation for a pull request.
func (s *ContextService) BuildReviewPrompt(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildReviewPromptInput,
) (*mcp.CallToolResult, BuildReviewPromptOutput, error) {
	if len(input.Files) == 0 {
		return nil, BuildReviewPromptOutput{}, fmt.Errorf("files is required")
	}

	convo, err := s.builder.Build(ctx, input.Files)
	if err != nil {
		return nil, BuildReviewPromptOutput{}, err
	}

	out := BuildReviewPromptOutput{
		Messages: make([]ChatMessage, len(convo)),
		Tokens:   s.budget.Count(convo),
	}
	for i, m := range convo {
		out.Messages[i] = ChatMessage{Role: m.Role, Content: m.Content}
	}
	return nil, out, nil
}

// ListLanguages returns the languages this server can resolve.
func (s *ContextService) ListLanguages(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListLanguagesInput,
) (*mcp.CallToolResult, ListLanguagesOutput, error) {
	langs := s.registry.SupportedLanguages()
	out := ListLanguagesOutput{Languages: make([]string, len(langs))}
	for i, l := range langs {
		out.Languages[i] = string(l)
	}
	return nil, out, nil
}
