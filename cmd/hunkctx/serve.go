package main

import (
	"os/signal"
	"syscall"

	"github.com/dusk-indust/hunkctx/internal/mcptools"
	"github.com/spf13/cobra"
)

func newServeMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeMCP,
	}
	cmd.Flags().String("http", "", "listen address for streamable HTTP (stdio when empty)")
	return cmd
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("http")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr == "" {
		e.logger.Debug("serving MCP on stdio")
		return mcptools.RunMCPServerStdio(ctx, e.svc)
	}
	e.logger.Info("serving MCP over HTTP", "addr", addr)
	return mcptools.RunMCPServer(ctx, e.svc, addr)
}
