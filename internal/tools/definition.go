package tools

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Definition is the MCP description of a tool, as listed by tools/list.
type Definition struct {
	Name        string             `json:"name"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
	Annotations *Annotations       `json:"annotations,omitempty"`
}

// Annotations are behavioural hints for clients.
type Annotations struct {
	Title           string `json:"title,omitempty"`
	ReadOnlyHint    bool   `json:"readOnlyHint,omitempty"`
	DestructiveHint *bool  `json:"destructiveHint,omitempty"`
	IdempotentHint  bool   `json:"idempotentHint,omitempty"`
	OpenWorldHint   *bool  `json:"openWorldHint,omitempty"`
}

// Define builds a Definition whose input schema is inferred from Args.
// It panics if Args cannot be described, which only happens for argument
// types that are not JSON-serializable.
func Define[Args any](name, title, description string, openWorld bool) Definition {
	schema, err := jsonschema.For[Args](nil)
	if err != nil {
		panic(fmt.Sprintf("tools: input schema for %s: %v", name, err))
	}
	destructive := false
	return Definition{
		Name:        name,
		Title:       title,
		Description: description,
		InputSchema: schema,
		Annotations: &Annotations{
			Title:           title,
			ReadOnlyHint:    true,
			DestructiveHint: &destructive,
			OpenWorldHint:   &openWorld,
		},
	}
}
