package career

import (
	"github.com/careersim/careersim-go/model"
	"github.com/careersim/careersim-go/search"
)

// Stages bundles the collaborators the pipeline stages share. Each stage is
// a method with the StageFunc signature; BuildGraph wires them into nodes.
type Stages struct {
	// Completer answers the model-backed stages. Required.
	Completer model.Completer

	// Search supplies market data for the market scout. Required.
	Search search.Client
}

// schema builds the minimal JSON-schema shape the model package renders
// into prompt instructions: an object listing its top-level properties.
func schema(fields ...string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f] = map[string]any{}
	}
	return map[string]any{"type": "object", "properties": props}
}
