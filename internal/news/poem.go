package news

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	appLog "vestacal/internal/log"
)

const (
	// Board geometry the poem must fit.
	PoemLines        = 4
	PoemLineChars    = 18
	croppedLineChars = 22

	// PoemFileName is the artifact written into the output folder.
	PoemFileName = "news_poem.txt"
)

// Poet turns a set of headlines into a short poem sized for the board.
type Poet struct {
	client *openai.Client
	model  string
}

// NewPoet builds a Poet. Returns nil when apiKey is empty.
func NewPoet(apiKey, model string) *Poet {
	if apiKey == "" {
		return nil
	}
	return &Poet{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate asks the model for a poem over the headlines, then runs a
// second rewrite pass to squeeze it into the line constraints. The model
// is unreliable about lengths, so the result is still cropped by the
// caller before display.
func (p *Poet) Generate(ctx context.Context, headlines []string) (string, error) {
	if len(headlines) == 0 {
		return "", errors.New("no headlines")
	}

	prompt := fmt.Sprintf(
		"Write a poem based on the following set of news headlines. You have exactly %d lines. "+
			"Remember that each line cannot exceed %d characters including spaces and punctuation. "+
			"Check your work carefully. Output only the poem, and nothing else. Poem:\n%s\n",
		PoemLines, PoemLineChars, strings.Join(headlines, "\n"))

	initial, err := p.complete(ctx,
		fmt.Sprintf("You are a creative poet tasked with summarizing news headlines as humorous poetry. "+
			"Your speciality is all of your poems are %d lines long, and no single line of poetry can be "+
			"longer than %d characters including spaces and punctuation.", PoemLines, PoemLineChars),
		prompt)
	if err != nil {
		return "", err
	}
	appLog.Debug("initial poem generated")

	rewritePrompt := fmt.Sprintf(
		"Rewrite this poem to ensure it has exactly %d lines, and each line is no more than %d characters "+
			"including spaces and punctuation. Do this step by step, and check your work, but only output the "+
			"final poem:\n\n%s\n\nRewritten poem:", PoemLines, PoemLineChars, initial)

	final, err := p.complete(ctx,
		"You are a poetry editor. Your task is to rewrite poems to fit specific constraints without losing their essence.",
		rewritePrompt)
	if err != nil {
		// The first draft is still usable.
		appLog.Warn("poem rewrite failed, keeping first draft", "err", err)
		return initial, nil
	}
	return final, nil
}

func (p *Poet) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: 500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CropText clips text to at most maxLines lines of maxChars characters
// each (rune-safe).
func CropText(text string, maxLines, maxChars int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > maxChars {
			lines[i] = string(runes[:maxChars])
		}
	}
	return strings.Join(lines, "\n")
}

// WritePoemFile crops the poem to the board geometry and writes it under
// dir, prefixed with the upper-cased date header the board expects.
func WritePoemFile(dir, poem string, now time.Time) (string, error) {
	cropped := CropText(poem, PoemLines, croppedLineChars)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	header := strings.ToUpper(now.Format("---January 02---")) + "\n"
	path := filepath.Join(dir, PoemFileName)
	if err := os.WriteFile(path, []byte(header+cropped), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
