package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewContextMCPServer creates an MCP server with all 5 context tools registered.
func NewContextMCPServer(svc *ContextService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hunkctx",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_enclosing_context",
		Description: "Find the function, method, class or type definition that fully contains a line range of a source file. Returns the outermost such definition (or the innermost when requested) with its kind, name, line span and text.",
	}, svc.FindEnclosingContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_validity",
		Description: "Parse a source file and report whether it is syntactically well formed. This is a parse-only check, not a compile or type check.",
	}, svc.CheckValidity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "expand_patch",
		Description: "Render a changed file for code review. Each diff hunk of a modified file is widened to the definition it sits in; new files are rendered as the raw patch.",
	}, svc.ExpandPatch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_review_prompt",
		Description: "Assemble the review chat messages for a pull request, falling back to raw patches when expanded context exceeds the model's token limit.",
	}, svc.BuildReviewPrompt)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_languages",
		Description: "List the source languages the server can parse.",
	}, svc.ListLanguages)

	return server
}

// RunMCPServer starts an HTTP server exposing the context MCP tools.
func RunMCPServer(ctx context.Context, svc *ContextService, addr string) error {
	server := NewContextMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *ContextService) error {
	return NewContextMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
