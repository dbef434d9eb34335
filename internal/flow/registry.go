package flow

import (
	"fmt"
	"sort"
	"sync"

	"github.com/subhasish12345/SHOPSAGE/internal/prompt"
)

type entry struct {
	def  Definition
	tmpl *prompt.Template
}

// Registry holds flow definitions by name. It is safe for concurrent use;
// registration is expected to finish before invocations begin.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]entry)}
}

// Register validates def, compiles its template and adds it. Names are
// unique; a second registration under the same name fails with
// ErrDuplicateFlow.
func (r *Registry) Register(def Definition) error {
	tmpl, err := def.compile()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.flows[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFlow, def.Name)
	}
	r.flows[def.Name] = entry{def: def, tmpl: tmpl}
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, error) {
	e, err := r.lookup(name)
	if err != nil {
		return Definition{}, err
	}
	return e.def, nil
}

func (r *Registry) lookup(name string) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.flows[name]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.flows))
	for name := range r.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every definition sorted by name.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.flows))
	for _, e := range r.flows {
		defs = append(defs, e.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Len returns the number of registered flows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}
