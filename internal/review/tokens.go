package review

import (
	"sync"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"github.com/tiktoken-go/tokenizer"
)

// DefaultModel is the model whose limit applies when none is configured.
const DefaultModel = "llama3-70b-8192"

// ModelTokenLimits are the context windows of the supported chat models.
var ModelTokenLimits = map[string]int{
	"mixtral-8x7b-32768": 32768,
	"gemma-7b-it":        32768,
	"llama3-70b-8192":    8192,
	"llama3-8b-8192":     8192,
}

// Chat framing overhead, as counted for gpt-3.5-turbo style conversations.
const (
	tokensPerMessage     = 4
	tokensReplyPriming   = 3
	defaultCharsPerToken = 4
)

// TokenCounter estimates how many tokens text and conversations use.
type TokenCounter interface {
	CountText(text string) int
	CountMessages(messages []openai.ChatCompletionMessage) int
}

// countMessages adds per-message framing and the reply primer to the token
// counts of each message's fields.
func countMessages(countText func(string) int, messages []openai.ChatCompletionMessage) int {
	total := tokensReplyPriming
	for _, m := range messages {
		total += tokensPerMessage
		total += countText(m.Role)
		total += countText(m.Content)
		total += countText(m.Name)
	}
	return total
}

// BPECounter counts tokens with the cl100k_base encoding used by
// gpt-3.5-turbo and gpt-4. The vocabulary is compiled into the tokenizer
// package, so no download happens.
type BPECounter struct {
	codec    tokenizer.Codec
	fallback *CharacterCounter
}

var cl100k = sync.OnceValues(func() (tokenizer.Codec, error) {
	return tokenizer.Get(tokenizer.Cl100kBase)
})

// NewBPECounter returns a cl100k_base counter. It fails only if the encoding
// cannot be loaded.
func NewBPECounter() (*BPECounter, error) {
	codec, err := cl100k()
	if err != nil {
		return nil, err
	}
	return &BPECounter{codec: codec, fallback: NewCharacterCounter(0)}, nil
}

// CountText returns the number of tokens in text.
func (c *BPECounter) CountText(text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return c.fallback.CountText(text)
	}
	return len(ids)
}

// CountMessages returns the token count of a conversation, including
// per-message framing and the reply primer.
func (c *BPECounter) CountMessages(messages []openai.ChatCompletionMessage) int {
	return countMessages(c.CountText, messages)
}

// DefaultTokenCounter returns the cl100k_base counter, or a CharacterCounter
// if the encoding cannot be loaded.
func DefaultTokenCounter() TokenCounter {
	if c, err := NewBPECounter(); err == nil {
		return c
	}
	return NewCharacterCounter(0)
}

// CharacterCounter approximates tokens as a fixed number of characters each.
// It is used when a project configures charsPerToken.
type CharacterCounter struct {
	charsPerToken int
}

// NewCharacterCounter returns a counter using charsPerToken characters per
// token. Values below 1 select the default of 4.
func NewCharacterCounter(charsPerToken int) *CharacterCounter {
	if charsPerToken <= 0 {
		charsPerToken = defaultCharsPerToken
	}
	return &CharacterCounter{charsPerToken: charsPerToken}
}

// CountText returns the estimated token count of text.
func (c *CharacterCounter) CountText(text string) int {
	chars := utf8.RuneCountInString(text)
	return (chars + c.charsPerToken - 1) / c.charsPerToken
}

// CountMessages returns the estimated token count of a conversation,
// including per-message framing and the reply primer.
func (c *CharacterCounter) CountMessages(messages []openai.ChatCompletionMessage) int {
	return countMessages(c.CountText, messages)
}

// Budget checks conversations against per-model token limits.
type Budget struct {
	counter TokenCounter
	limits  map[string]int
}

// NewBudget creates a Budget. overrides add to or replace ModelTokenLimits.
// A nil counter selects DefaultTokenCounter.
func NewBudget(counter TokenCounter, overrides map[string]int) *Budget {
	if counter == nil {
		counter = DefaultTokenCounter()
	}
	limits := make(map[string]int, len(ModelTokenLimits)+len(overrides))
	for m, l := range ModelTokenLimits {
		limits[m] = l
	}
	for m, l := range overrides {
		limits[m] = l
	}
	return &Budget{counter: counter, limits: limits}
}

// Limit returns the token limit of model.
func (b *Budget) Limit(model string) (int, bool) {
	l, ok := b.limits[model]
	return l, ok
}

// Count returns the size of the conversation in tokens.
func (b *Budget) Count(convo []openai.ChatCompletionMessage) int {
	return b.counter.CountMessages(convo)
}

// WithinLimit reports whether convo fits strictly below model's limit.
// Unknown models never fit.
func (b *Budget) WithinLimit(convo []openai.ChatCompletionMessage, model string) bool {
	limit, ok := b.Limit(model)
	if !ok {
		return false
	}
	return b.Count(convo) < limit
}

var defaultBudget = NewBudget(nil, nil)

// GetTokenLength returns the cl100k_base token count of blob.
func GetTokenLength(blob string) int {
	return defaultBudget.counter.CountText(blob)
}

// IsConversationWithinLimit checks convo against the built-in limits.
func IsConversationWithinLimit(convo []openai.ChatCompletionMessage, model string) bool {
	return defaultBudget.WithinLimit(convo, model)
}
