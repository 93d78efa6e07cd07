package tools

import (
	"fmt"
	"sync"

	"roadmapper/internal/logging"
	"roadmapper/internal/types"
)

// Registry holds all available tools and answers which subset is visible
// for a given phase and declared intent. Registration happens at startup;
// lookups are thread-safe.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Returns an error for invalid or duplicate tools.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)

	logging.ToolsDebug("Registered tool: %s", tool.Name)
	return nil
}

// MustRegister registers a tool and panics on error. Use for static
// registration at init time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions returns provider wire definitions for the named tools.
// Missing names are skipped.
func (r *Registry) Definitions(names ...string) []types.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]types.ToolDefinition, 0, len(names))
	for _, name := range names {
		if tool, ok := r.tools[name]; ok {
			defs = append(defs, tool.Definition())
		}
	}
	return defs
}

// Visible returns the tool subset the provider may use for the given
// phase and declared intent. The mapping is a static table: forward
// phases expose exactly one generation tool; editing is further gated by
// the intent the user declared for the turn.
func (r *Registry) Visible(phase types.Phase, intent types.Intent) []types.ToolDefinition {
	switch phase {
	case types.PhaseDiscovery:
		return r.Definitions(NameAskClarifyingQuestion, NameConfirmSpecifications)
	case types.PhaseConfirmation, types.PhaseGeneration:
		return r.Definitions(NameGenerateRoadmap)
	case types.PhaseOverview:
		return r.Definitions(NameGenerateOverview)
	case types.PhaseSubtasks:
		return r.Definitions(NameGenerateSubtasks)
	case types.PhaseEditing:
		switch intent {
		case types.IntentExpand:
			return r.Definitions(NameAskClarifyingQuestion, NameExpandRoadmap)
		case types.IntentEdit:
			return r.Definitions(NameAskClarifyingQuestion, NameEditMilestone)
		default:
			return r.Definitions(NameAskClarifyingQuestion, NameAddSubtasks)
		}
	}
	return nil
}
