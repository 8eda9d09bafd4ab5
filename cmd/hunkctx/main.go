package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dusk-indust/hunkctx/internal/config"
	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/dusk-indust/hunkctx/internal/mcptools"
	"github.com/dusk-indust/hunkctx/internal/review"
	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hunkctx",
		Short: "Widen diff hunks to the definitions that enclose them",
		Long: `hunkctx parses source files with tree-sitter to find the function, method,
class or type that contains a range of lines, and uses it to expand pull
request patches into review prompts.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("project-root", ".", "directory holding hunkctx.yml; relative paths resolve against it")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().Bool("json", false, "print results as JSON")

	root.AddCommand(
		newResolveCmd(),
		newCheckCmd(),
		newExpandCmd(),
		newPromptCmd(),
		newServeMCPCmd(),
	)
	return root
}

// env is the per-invocation state shared by subcommands.
type env struct {
	cfg      *config.ProjectConfig
	root     string
	registry *enclosing.Registry
	builder  review.BuilderConfig
	svc      *mcptools.ContextService
	logger   *slog.Logger
	json     bool
}

func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Root().PersistentFlags()
	root, err := flags.GetString("project-root")
	if err != nil {
		return nil, err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	asJSON, err := flags.GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose || cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	registry, err := cfg.Registry(enclosing.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	builderCfg, err := cfg.BuilderConfig()
	if err != nil {
		return nil, err
	}
	builderCfg.Logger = logger

	svc := mcptools.NewContextService(registry, builderCfg)
	svc.SetRoot(root)

	return &env{
		cfg:      cfg,
		root:     root,
		registry: registry,
		builder:  builderCfg,
		svc:      svc,
		logger:   logger,
		json:     asJSON,
	}, nil
}

// path resolves a command-line path against --project-root.
func (e *env) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.root, p)
}

// print writes v as indented JSON when --json is set, otherwise text.
func (e *env) print(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	if !e.json {
		_, err := fmt.Fprint(out, text)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
