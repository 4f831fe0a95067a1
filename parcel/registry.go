package parcel

import (
	"sort"
	"sync"
)

// Creator decodes the body of an aggregate whose tag was already read.
type Creator func(p *Parcel) Aggregate

// Registry maps aggregate tags to creators. It is safe for concurrent use.
type Registry struct {
	creators map[string]Creator
	mu       sync.RWMutex
}

var defaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{creators: make(map[string]Creator)}
}

// Register adds a creator to the process-wide registry.
func Register(tag string, create Creator) {
	defaultRegistry.Register(tag, create)
}

// Register adds or replaces the creator of tag.
func (r *Registry) Register(tag string, create Creator) {
	r.mu.Lock()
	r.creators[tag] = create
	r.mu.Unlock()
}

// Lookup returns the creator of tag.
func (r *Registry) Lookup(tag string) (Creator, bool) {
	r.mu.RLock()
	c, ok := r.creators[tag]
	r.mu.RUnlock()
	return c, ok
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.creators))
	for t := range r.creators {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
