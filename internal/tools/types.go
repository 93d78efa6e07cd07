// Package tools holds the catalog of schema-described operations the
// reasoning provider may invoke instead of replying in free text. Tools
// are registered once at startup; visibility per conversation phase is a
// pure lookup, so the catalog is safe for concurrent reads.
package tools

import (
	"roadmapper/internal/types"
)

// Tool describes one provider-invocable operation. The schema is plain
// JSON Schema sent verbatim to the provider; argument validation beyond
// that happens in the handler that consumes the call.
type Tool struct {
	// Name is the unique identifier the provider selects by.
	Name string

	// Description is natural language sent to the provider.
	Description string

	// Schema is the JSON Schema for the tool's parameters.
	Schema map[string]any
}

// Validate checks the tool definition is complete.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Schema == nil {
		return ErrToolSchemaNil
	}
	return nil
}

// Definition converts the tool to the provider-facing wire form.
func (t *Tool) Definition() types.ToolDefinition {
	return types.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.Schema,
	}
}
