// Package openai implements model.Completer over OpenAI's chat completions
// API using the official openai-go client.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/careersim/careersim-go/model"
)

// Completer wraps the OpenAI client. Schema requests use the JSON-object
// response format, which guarantees syntactically valid JSON output. Safe
// for concurrent use.
type Completer struct {
	client *openai.Client
	model  string
}

// New creates a Completer for the given model name.
func New(apiKey, modelName string) *Completer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Completer{client: &client, model: modelName}
}

// Complete implements model.Completer.
func (c *Completer) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(req.System),
				},
			},
		})
	}
	// The JSON response format requires the word "json" somewhere in the
	// conversation, which the schema instructions provide.
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(req.Prompt + model.SchemaInstructions(req.Schema)),
			},
		},
	})

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		}
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Response{}, model.ClassifyError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return model.Response{}, model.ClassifyError("openai", errors.New("empty response"))
	}

	return model.Response{
		Text:       completion.Choices[0].Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}
