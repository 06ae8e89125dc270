package agent

import (
	"context"
	"encoding/json"
)

// Tool is one callable capability offered to the model. Implementations
// return human-readable text, not structured data: the result is embedded
// into the conversation verbatim for a text-completion model to read.
//
// Execute must not fail for anticipated conditions (collaborator errors,
// empty results); it returns explanatory text instead, so the loop can
// always feed a tool-result turn back to the model.
type Tool interface {
	// Name is the identifier the model calls the tool by.
	Name() string

	// Description tells the model what the tool does and when to use it.
	Description() string

	// Schema is the JSON-schema parameter spec presented to the model.
	Schema() json.RawMessage

	// Execute runs the tool with the model-supplied arguments.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}
