// Package review renders pull-request files into review prompts: patch
// strategies, chat messages and token-budget checks.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/diff"
	"github.com/dusk-indust/hunkctx/internal/enclosing"
)

// PRFile is one changed file of a pull request. OldContents is nil for files
// added by the pull request; CurrentContents is nil when the new version was
// not fetched.
type PRFile struct {
	Filename        string  `json:"filename"`
	Patch           string  `json:"patch"`
	OldContents     *string `json:"oldContents,omitempty"`
	CurrentContents *string `json:"currentContents,omitempty"`
}

// PatchBuilder renders one file for inclusion in a prompt.
type PatchBuilder func(ctx context.Context, file PRFile) (string, error)

// fileHeading is the markdown heading that introduces every rendered file.
func fileHeading(filename string) string {
	return "## " + filename + "\n\n"
}

// RawPatchStrategy renders the patch exactly as received.
func RawPatchStrategy(_ context.Context, file PRFile) (string, error) {
	return fileHeading(file.Filename) + file.Patch, nil
}

// BuildSuggestionPrompt renders the patch with new-file line numbers so that
// suggestions can refer to lines.
func BuildSuggestionPrompt(_ context.Context, file PRFile) (string, error) {
	numbered, err := diff.AssignLineNumbers(file.Patch)
	if err != nil {
		return "", fmt.Errorf("number lines of %s: %w", file.Filename, err)
	}
	return fileHeading(file.Filename) + numbered, nil
}

// SmarterContext expands every hunk of a patch to the definition that
// encloses it, so the reviewer sees whole functions and classes.
type SmarterContext struct {
	registry *enclosing.Registry
	logger   *slog.Logger
}

// NewSmarterContext creates a SmarterContext that picks resolvers from
// registry. logger may be nil.
func NewSmarterContext(registry *enclosing.Registry, logger *slog.Logger) *SmarterContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &SmarterContext{
		registry: registry,
		logger:   logger.With("component", "review"),
	}
}

// Build renders file with expanded hunks. It falls back to the raw patch when
// the language is unsupported, the new contents are missing, or the patch
// cannot be parsed.
func (s *SmarterContext) Build(ctx context.Context, file PRFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resolver, ok := s.registry.ForPath(file.Filename)
	if !ok || file.CurrentContents == nil {
		return RawPatchStrategy(ctx, file)
	}

	hunks, err := diff.ParseHunks(file.Patch)
	if err != nil {
		s.logger.Warn("falling back to raw patch", "file", file.Filename, "error", err)
		return RawPatchStrategy(ctx, file)
	}
	if len(hunks) == 0 {
		return RawPatchStrategy(ctx, file)
	}

	source := []byte(*file.CurrentContents)
	if v := resolver.DryRun(source); !v.Valid {
		s.logger.Debug("source has syntax errors, context may be partial",
			"file", file.Filename, "error", v.Error)
	}

	expanded := ExpandHunks(resolver, source, hunks, s.logger.With("file", file.Filename))
	parts := make([]string, len(expanded))
	for i, h := range expanded {
		parts[i] = h.String()
	}
	return fileHeading(file.Filename) + strings.Join(parts, "\n\n"), nil
}

// BuildPatchPrompt uses the raw patch for files new in the pull request and
// expanded context for modified files.
func (s *SmarterContext) BuildPatchPrompt(ctx context.Context, file PRFile) (string, error) {
	if file.OldContents == nil {
		return RawPatchStrategy(ctx, file)
	}
	return s.Build(ctx, file)
}
