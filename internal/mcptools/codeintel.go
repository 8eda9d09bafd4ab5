package mcptools

import (
	"github.com/dusk-indust/hunkctx/internal/enclosing"
	"github.com/dusk-indust/hunkctx/internal/review"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// FindEnclosingContextInput is the input for the find_enclosing_context MCP tool.
type FindEnclosingContextInput struct {
	Path      string `json:"path" jsonschema:"file path; its extension selects the language and it is read when source is empty"`
	Source    string `json:"source,omitempty" jsonschema:"full file contents"`
	Language  string `json:"language,omitempty" jsonschema:"override the language. Values: go, python, rust, typescript, tsx"`
	StartLine int    `json:"startLine" jsonschema:"first line of the range (1-based)"`
	EndLine   int    `json:"endLine,omitempty" jsonschema:"last line of the range, inclusive (default: startLine)"`
	Innermost bool   `json:"innermost,omitempty" jsonschema:"return the smallest enclosing definition instead of the outermost"`
}

// FindEnclosingContextOutput is the result of the find_enclosing_context MCP tool.
type FindEnclosingContextOutput struct {
	Found   bool                        `json:"found"`
	Context *enclosing.EnclosingContext `json:"context,omitempty"`
}

// CheckValidityInput is the input for the check_validity MCP tool.
type CheckValidityInput struct {
	Path     string `json:"path" jsonschema:"file path; its extension selects the language and it is read when source is empty"`
	Source   string `json:"source,omitempty" jsonschema:"full file contents"`
	Language string `json:"language,omitempty" jsonschema:"override the language. Values: go, python, rust, typescript, tsx"`
}

// CheckValidityOutput is the result of the check_validity MCP tool.
type CheckValidityOutput struct {
	Validity enclosing.Validity `json:"validity"`
}

// ExpandPatchInput is the input for the expand_patch MCP tool.
type ExpandPatchInput struct {
	File     review.PRFile `json:"file" jsonschema:"the changed file: filename, patch, and optionally old and current contents"`
	Numbered bool          `json:"numbered,omitempty" jsonschema:"render the raw patch with new-file line numbers instead of expanding it"`
}

// ExpandPatchOutput is the result of the expand_patch MCP tool.
type ExpandPatchOutput struct {
	Patch string `json:"patch"`
}

// BuildReviewPromptInput is the input for the build_review_prompt MCP tool.
type BuildReviewPromptInput struct {
	Files []review.PRFile `json:"files" jsonschema:"the changed files of the pull request"`
}

// ChatMessage is one message of an assembled conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildReviewPromptOutput is the result of the build_review_prompt MCP tool.
type BuildReviewPromptOutput struct {
	Messages []ChatMessage `json:"messages"`
	Tokens   int           `json:"tokens"`
}

// ListLanguagesInput is the input for the list_languages MCP tool.
type ListLanguagesInput struct{}

// ListLanguagesOutput is the result of the list_languages MCP tool.
type ListLanguagesOutput struct {
	Languages []string `json:"languages"`
}
