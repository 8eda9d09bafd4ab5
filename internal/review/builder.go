package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many files are rendered at once.
const DefaultConcurrency = 8

// ErrOverBudget is returned when no rendering of the pull request fits the
// model's token limit.
var ErrOverBudget = errors.New("conversation exceeds model token limit")

// ConstructPrompt renders every file with patchBuilder, joins the results in
// file order and wraps them with convoBuilder.
func ConstructPrompt(
	ctx context.Context,
	files []PRFile,
	patchBuilder PatchBuilder,
	convoBuilder ConvoBuilder,
) ([]openai.ChatCompletionMessage, error) {
	return constructPrompt(ctx, files, patchBuilder, convoBuilder, DefaultConcurrency)
}

func constructPrompt(
	ctx context.Context,
	files []PRFile,
	patchBuilder PatchBuilder,
	convoBuilder ConvoBuilder,
	concurrency int,
) ([]openai.ChatCompletionMessage, error) {
	patches, err := buildPatches(ctx, files, patchBuilder, concurrency)
	if err != nil {
		return nil, err
	}
	return convoBuilder(strings.Join(patches, "\n")), nil
}

// buildPatches renders files in parallel. The first failure cancels the
// remaining work.
func buildPatches(ctx context.Context, files []PRFile, patchBuilder PatchBuilder, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	patches := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, file := range files {
		g.Go(func() error {
			patch, err := patchBuilder(gctx, file)
			if err != nil {
				return fmt.Errorf("build patch for %s: %w", file.Filename, err)
			}
			patches[i] = patch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return patches, nil
}

// BuilderConfig configures a Builder. Zero values select defaults.
type BuilderConfig struct {
	Model       string
	Convo       ConvoBuilder
	Concurrency int
	Budget      *Budget
	Logger      *slog.Logger
}

// Builder assembles the review conversation for a pull request, preferring
// expanded context and falling back to raw patches when that is too large.
type Builder struct {
	smarter     *SmarterContext
	budget      *Budget
	convo       ConvoBuilder
	model       string
	concurrency int
	logger      *slog.Logger
}

// NewBuilder creates a Builder that resolves context with registry.
func NewBuilder(registry *enclosing.Registry, cfg BuilderConfig) *Builder {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Convo == nil {
		cfg.Convo = ReviewMessages
	}
	if cfg.Budget == nil {
		cfg.Budget = defaultBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Builder{
		smarter:     NewSmarterContext(registry, cfg.Logger),
		budget:      cfg.Budget,
		convo:       cfg.Convo,
		model:       cfg.Model,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger.With("component", "review"),
	}
}

// Build returns the conversation for files.
func (b *Builder) Build(ctx context.Context, files []PRFile) ([]openai.ChatCompletionMessage, error) {
	convo, err := constructPrompt(ctx, files, b.smarter.BuildPatchPrompt, b.convo, b.concurrency)
	if err != nil {
		return nil, err
	}
	if b.budget.WithinLimit(convo, b.model) {
		return convo, nil
	}

	b.logger.Info("expanded context exceeds token limit, using raw patches",
		"model", b.model, "tokens", b.budget.Count(convo))

	convo, err = constructPrompt(ctx, files, RawPatchStrategy, b.convo, b.concurrency)
	if err != nil {
		return nil, err
	}
	if b.budget.WithinLimit(convo, b.model) {
		return convo, nil
	}
	return nil, fmt.Errorf("%w: %d tokens for model %s", ErrOverBudget, b.budget.Count(convo), b.model)
}
