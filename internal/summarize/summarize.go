package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	appLog "vestacal/internal/log"
)

// Summarizer condenses a piece of text to at most maxLen characters. It is
// best-effort: callers fall back to Truncate on any error, so formatting
// never fails because of it.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLen int) (string, error)
}

// Truncate clips s to at most maxLen characters (rune-safe). This is the
// local fallback used whenever summarization is unavailable or errors.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

const systemPromptFormat = "Summarize the following event title in %d characters or less. " +
	"Use common abbreviations, make results as standalone readable as possible. " +
	"Do not use any hashtags or other formatting. " +
	"Do not add words if they are already within max length. " +
	"If names are included, try hard not to omit them."

// OpenAI summarizes through a chat-completions model.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds an OpenAI summarizer. Returns nil when apiKey is empty
// so callers can treat "not configured" as "truncate locally".
func NewOpenAI(apiKey, model string) *OpenAI {
	if apiKey == "" {
		return nil
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *OpenAI) Summarize(ctx context.Context, text string, maxLen int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   50,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPromptFormat, maxLen),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	appLog.Debug("summarized title", "model", o.model, "summary", summary)

	// The model may overshoot; the length contract is ours to enforce.
	return Truncate(summary, maxLen), nil
}
