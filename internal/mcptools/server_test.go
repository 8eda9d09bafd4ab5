//go:build cgo

package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports. It returns the connected client session and the underlying
// ContextService so that tests can inspect state when needed.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *ContextService) {
	t.Helper()

	svc := newTestService(t)
	server := NewContextMCPServer(svc)

	st, ct := mcp.NewInMemoryTransports()

	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, svc
}

// decodeStructured re-decodes a tool's structured content into out.
func decodeStructured(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	require.NotNil(t, result.StructuredContent, "expected structured content")
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// TestMCPListTools verifies that the MCP server exposes exactly 5 tools with
// the expected names.
func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)

	require.Len(t, result.Tools, 5, "expected 5 registered tools")

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	expected := []string{
		"build_review_prompt",
		"check_validity",
		"expand_patch",
		"find_enclosing_context",
		"list_languages",
	}
	assert.Equal(t, expected, names)
}

// TestMCPFindEnclosingContext resolves a range in a fixture file through the
// client-server transport.
func TestMCPFindEnclosingContext(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "find_enclosing_context",
		Arguments: FindEnclosingContextInput{
			Path:      "python/shapes.py",
			StartLine: 24,
			EndLine:   24,
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "find_enclosing_context should not return an error")

	var output FindEnclosingContextOutput
	decodeStructured(t, result, &output)

	require.True(t, output.Found)
	assert.Equal(t, "describe", output.Context.Name)
	assert.Equal(t, 22, output.Context.StartLine)
	assert.Equal(t, 26, output.Context.EndLine)
}

// TestMCPCheckValidity runs the dry-run tool on malformed source.
func TestMCPCheckValidity(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "check_validity",
		Arguments: CheckValidityInput{
			Path:   "main.go",
			Source: "package main\n\nfunc main( {\n}\n",
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var output CheckValidityOutput
	decodeStructured(t, result, &output)
	assert.False(t, output.Validity.Valid)
	assert.NotEmpty(t, output.Validity.Error)
}

// TestMCPToolError verifies that handler errors surface as tool errors.
func TestMCPToolError(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "find_enclosing_context",
		Arguments: FindEnclosingContextInput{
			Path:      "README.md",
			Source:    "# readme",
			StartLine: 1,
		},
	})
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError, "unsupported language should set IsError")
}

// TestMCPCallUnknownTool verifies that calling a non-existent tool returns an
// error.
func TestMCPCallUnknownTool(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})

	// The MCP SDK may return an error at the protocol level or set IsError on
	// the result. Accept either behavior.
	if err != nil {
		return
	}

	require.NotNil(t, result)
	assert.True(t, result.IsError, "calling an unknown tool should set IsError")
}
