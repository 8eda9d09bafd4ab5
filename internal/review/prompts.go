package review

import (
	"embed"
	"strings"

	"github.com/sashabaranov/go-openai"
)

//go:embed prompts/*.md
var promptFS embed.FS

func mustPrompt(name string) string {
	data, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		panic("review: missing embedded prompt " + name)
	}
	return string(data)
}

var (
	// ReviewDiffPrompt asks for free-form review feedback on a diff.
	ReviewDiffPrompt = mustPrompt("review_diff.md")

	// XMLReviewPrompt asks for suggestions wrapped in <review> XML.
	XMLReviewPrompt = mustPrompt("xml_review.md")

	// SuggestionTemplate lays out a posted suggestion comment. It has
	// {COMMENT}, {ISSUE_LINK} and {CODE} placeholders.
	SuggestionTemplate = mustPrompt("suggestion.md")
)

// FormatSuggestion fills SuggestionTemplate.
func FormatSuggestion(comment, issueLink, code string) string {
	return strings.NewReplacer(
		"{COMMENT}", comment,
		"{ISSUE_LINK}", issueLink,
		"{CODE}", code,
	).Replace(SuggestionTemplate)
}

// ConvoBuilder turns a rendered diff into a chat conversation.
type ConvoBuilder func(diff string) []openai.ChatCompletionMessage

// ReviewMessages pairs ReviewDiffPrompt with the diff.
func ReviewMessages(diff string) []openai.ChatCompletionMessage {
	return systemAndUser(ReviewDiffPrompt, diff)
}

// XMLReviewMessages pairs XMLReviewPrompt with the diff.
func XMLReviewMessages(diff string) []openai.ChatCompletionMessage {
	return systemAndUser(XMLReviewPrompt, diff)
}

func systemAndUser(system, user string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}
}

// ConvoBuilderFor returns the builder for a prompt format: "review" (the
// default) or "xml".
func ConvoBuilderFor(format string) (ConvoBuilder, bool) {
	switch format {
	case "", "review":
		return ReviewMessages, true
	case "xml":
		return XMLReviewMessages, true
	default:
		return nil, false
	}
}
