package llm

import (
	"fmt"
	"sort"
)

// Registry resolves a caller-supplied backend identifier to a Generator.
// Unknown identifiers are a typed error, never a silent default; choosing a
// default backend is the caller's policy, not the registry's.
type Registry struct {
	byName map[string]Generator
}

func NewRegistry(gens ...Generator) *Registry {
	r := &Registry{byName: make(map[string]Generator, len(gens))}
	for _, g := range gens {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Generator) {
	r.byName[g.Name()] = g
}

func (r *Registry) Get(id string) (Generator, error) {
	g, ok := r.byName[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, id)
	}
	return g, nil
}

// Names lists registered identifiers, sorted for stable logs.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
