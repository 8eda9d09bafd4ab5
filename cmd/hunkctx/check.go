package main

import (
	"errors"
	"fmt"

	"github.com/dusk-indust/hunkctx/internal/mcptools"
	"github.com/spf13/cobra"
)

// errInvalidSyntax makes "check" exit non-zero for files that do not parse.
var errInvalidSyntax = errors.New("syntax check failed")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Report whether a file parses without syntax errors",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().String("language", "", "override language detection")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	language, _ := cmd.Flags().GetString("language")

	_, out, err := e.svc.CheckValidity(cmd.Context(), nil, mcptools.CheckValidityInput{
		Path:     args[0],
		Language: language,
	})
	if err != nil {
		return err
	}

	text := args[0] + ": ok\n"
	if !out.Validity.Valid {
		text = fmt.Sprintf("%s: %s\n", args[0], out.Validity.Error)
	}
	if err := e.print(cmd, out, text); err != nil {
		return err
	}
	if !out.Validity.Valid {
		return errInvalidSyntax
	}
	return nil
}
