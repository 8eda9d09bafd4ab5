package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/diff"
	"github.com/dusk-indust/hunkctx/internal/mcptools"
	"github.com/dusk-indust/hunkctx/internal/review"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt <diff files...>",
		Short: "Build the review conversation for one or more diffs",
		Long: `prompt reads "git diff" output, looks up the current version of every
changed file under --project-root and prints the chat messages a reviewer
model would receive. Files matching the config's exclude patterns are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPrompt,
	}
	cmd.Flags().Bool("xml", false, "use the XML review format")
	return cmd
}

func runPrompt(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	xml, _ := cmd.Flags().GetBool("xml")

	var files []review.PRFile
	for _, path := range args {
		data, err := os.ReadFile(e.path(path))
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		patches, err := diff.SplitFiles(string(data))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for _, p := range patches {
			if e.cfg.Excluded(p.Name()) {
				e.logger.Debug("skipping excluded file", "file", p.Name())
				continue
			}
			files = append(files, e.prFile(p))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no file changes found in %s", strings.Join(args, ", "))
	}

	svc := e.svc
	if xml {
		cfg := e.builder
		cfg.Convo = review.XMLReviewMessages
		svc = mcptools.NewContextService(e.registry, cfg)
	}

	_, out, err := svc.BuildReviewPrompt(cmd.Context(), nil, mcptools.BuildReviewPromptInput{Files: files})
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, m := range out.Messages {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "(%d tokens)\n", out.Tokens)
	return e.print(cmd, out, b.String())
}

// prFile pairs a file's patch with its current contents on disk. Deleted and
// unreadable files are reviewed from the raw patch.
func (e *env) prFile(p diff.FilePatch) review.PRFile {
	file := review.PRFile{Filename: p.Name(), Patch: p.Patch}
	if p.IsDeleted() {
		return file
	}
	data, err := os.ReadFile(e.path(filepath.FromSlash(p.Name())))
	if err != nil {
		e.logger.Debug("current contents unavailable", "file", p.Name(), "error", err)
		return file
	}
	file.CurrentContents = ptr(string(data))
	if !p.IsNew() {
		file.OldContents = ptr("")
	}
	return file
}
