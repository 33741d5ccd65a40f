package tools

import (
	"sync"

	"github.com/jinzhu/copier"
)

// Registry holds the tool set exposed to a listening session. Registration
// order is preserved so declarations are stable across reconnects.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, tool := range tools {
		r.Register(tool)
	}
	return r
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Resolve looks a tool up by name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// Declarations returns a copy of the registered tool declarations in
// registration order.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	declarations := make([]Declaration, 0, len(r.order))
	for _, name := range r.order {
		declarations = append(declarations, r.tools[name].Declaration())
	}
	r.mu.RUnlock()

	copied := make([]Declaration, 0, len(declarations))
	copier.Copy(&copied, declarations)
	return copied
}
