package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/hunkctx/internal/mcptools"
	"github.com/dusk-indust/hunkctx/internal/review"
	"github.com/spf13/cobra"
)

func newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <file> --patch <diff>",
		Short: "Widen each hunk of a patch to its enclosing definition",
		Long: `expand reads the current contents of <file> and a patch against it, and
prints the patch with every hunk grown to the definition that contains it.`,
		Args: cobra.ExactArgs(1),
		RunE: runExpand,
	}
	cmd.Flags().String("patch", "", "file holding the unified diff for <file>")
	cmd.Flags().String("old", "", "previous version of <file>, if available")
	cmd.Flags().Bool("new-file", false, "treat <file> as newly added and print the raw patch")
	cmd.Flags().Bool("numbered", false, "print added lines prefixed with their line numbers")
	_ = cmd.MarkFlagRequired("patch")
	return cmd
}

func runExpand(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	patchPath, _ := cmd.Flags().GetString("patch")
	oldPath, _ := cmd.Flags().GetString("old")
	newFile, _ := cmd.Flags().GetBool("new-file")
	numbered, _ := cmd.Flags().GetBool("numbered")

	patch, err := os.ReadFile(e.path(patchPath))
	if err != nil {
		return fmt.Errorf("read patch: %w", err)
	}
	current, err := os.ReadFile(e.path(args[0]))
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	file := review.PRFile{
		Filename:        filepath.ToSlash(args[0]),
		Patch:           string(patch),
		CurrentContents: ptr(string(current)),
	}
	switch {
	case newFile:
	case oldPath != "":
		old, err := os.ReadFile(e.path(oldPath))
		if err != nil {
			return fmt.Errorf("read old version: %w", err)
		}
		file.OldContents = ptr(string(old))
	default:
		file.OldContents = ptr("")
	}

	_, out, err := e.svc.ExpandPatch(cmd.Context(), nil, mcptools.ExpandPatchInput{File: file, Numbered: numbered})
	if err != nil {
		return err
	}
	return e.print(cmd, out, out.Patch+"\n")
}

func ptr(s string) *string { return &s }
