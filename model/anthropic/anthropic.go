// Package anthropic implements model.Completer over Anthropic's Messages
// API using the official anthropic-sdk-go client.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/careersim/careersim-go/model"
)

const defaultMaxTokens = 4096

// Completer wraps the Anthropic client. Claude has no native JSON response
// mode, so schema requests are appended to the prompt as formatting
// instructions. Safe for concurrent use.
//
// Example:
//
//	c := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"), "claude-sonnet-4-5")
//	out, err := c.Complete(ctx, model.Request{Prompt: "..."})
type Completer struct {
	client *anthropic.Client
	model  string
}

// New creates a Completer for the given model name.
func New(apiKey, modelName string) *Completer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Completer{client: &client, model: modelName}
}

// Complete implements model.Completer.
func (c *Completer) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt + model.SchemaInstructions(req.Schema))),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return model.Response{}, model.ClassifyError("anthropic", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return model.Response{
		Text:       sb.String(),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}
