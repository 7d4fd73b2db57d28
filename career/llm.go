package career

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/model"
)

// completeJSON runs one completion and decodes the first JSON object in the
// reply into out. Malformed output is a transient stage error: models
// occasionally wrap JSON in prose or truncate it, and a retried completion
// usually parses. Provider errors pass through untouched so their own
// retryability classification applies.
func completeJSON(ctx context.Context, c model.Completer, node string, req model.Request, out any) error {
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", node, err)
	}
	raw, err := extractJSON(resp.Text)
	if err != nil {
		return graph.Transient(node, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return graph.Transient(node, fmt.Errorf("decode completion: %w", err))
	}
	return nil
}

// extractJSON returns the outermost JSON object in text, tolerating prose
// and markdown fences around it.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("completion contains no JSON object")
	}
	return text[start : end+1], nil
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
