// Package google implements model.Completer over Google's Gemini API using
// the generative-ai-go client.
package google

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/careersim/careersim-go/model"
)

// Completer wraps the Gemini client. Schema requests set the JSON response
// MIME type so the model emits valid JSON directly. Safe for concurrent
// use; call Close when done.
//
// Example:
//
//	c, err := google.New(ctx, os.Getenv("GOOGLE_API_KEY"), "gemini-2.0-flash")
//	if err != nil { ... }
//	defer c.Close()
type Completer struct {
	client *genai.Client
	model  string
}

// New creates a Completer for the given model name.
func New(ctx context.Context, apiKey, modelName string) (*Completer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, model.ClassifyError("google", err)
	}
	return &Completer{client: client, model: modelName}, nil
}

// Close releases the underlying client.
func (c *Completer) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete implements model.Completer.
func (c *Completer) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	gm := c.client.GenerativeModel(c.model)
	if req.System != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Schema != nil {
		gm.ResponseMIMEType = "application/json"
	}
	if req.Temperature > 0 {
		gm.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(req.Prompt+model.SchemaInstructions(req.Schema)))
	if err != nil {
		return model.Response{}, model.ClassifyError("google", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Response{}, model.ClassifyError("google", errors.New("empty response"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return model.Response{Text: sb.String(), TokensUsed: tokens}, nil
}
