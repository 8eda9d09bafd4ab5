package main

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/hunkctx/internal/mcptools"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Print the definition that encloses a line range",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
	cmd.Flags().Int("start", 0, "first line of the range (1-based)")
	cmd.Flags().Int("end", 0, "last line of the range (defaults to --start)")
	cmd.Flags().Bool("innermost", false, "select the smallest enclosing definition instead of the largest")
	cmd.Flags().String("language", "", "override language detection (go, python, rust, typescript, tsx)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")
	innermost, _ := cmd.Flags().GetBool("innermost")
	language, _ := cmd.Flags().GetString("language")

	_, out, err := e.svc.FindEnclosingContext(cmd.Context(), nil, mcptools.FindEnclosingContextInput{
		Path:      args[0],
		Language:  language,
		StartLine: start,
		EndLine:   end,
		Innermost: innermost,
	})
	if err != nil {
		return err
	}

	if !out.Found {
		return e.print(cmd, out, "no enclosing definition\n")
	}
	c := out.Context
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (lines %d-%d)\n", c.Kind, c.Name, c.StartLine, c.EndLine)
	b.WriteString(c.Text)
	if !strings.HasSuffix(c.Text, "\n") {
		b.WriteByte('\n')
	}
	return e.print(cmd, out, b.String())
}
