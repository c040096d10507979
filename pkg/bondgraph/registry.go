package bondgraph

import "sync"

// TemplateRegistry holds the templates and quantity declarations of a
// library. It is filled once by a loader and then shared read-only between
// compositions.
type TemplateRegistry struct {
	mu sync.RWMutex

	templates     map[string]*Template
	templateOrder []string
	quantities    map[string]*Quantity
	quantityOrder []string
}

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates:  make(map[string]*Template),
		quantities: make(map[string]*Quantity),
	}
}

// Register adds t, replacing any template with the same URI.
func (r *TemplateRegistry) Register(t *Template) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[t.URI()]; !ok {
		r.templateOrder = append(r.templateOrder, t.URI())
	}
	r.templates[t.URI()] = t
}

// GetTemplate returns the template with the given URI, or nil.
func (r *TemplateRegistry) GetTemplate(uri string) *Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates[uri]
}

// Lookup is GetTemplate with an ErrTemplateNotFound error for absent URIs.
func (r *TemplateRegistry) Lookup(uri string) (*Template, error) {
	if t := r.GetTemplate(uri); t != nil {
		return t, nil
	}
	return nil, TemplateNotFoundError("lookup_template", uri)
}

// Templates returns the templates in registration order.
func (r *TemplateRegistry) Templates() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Template, 0, len(r.templateOrder))
	for _, uri := range r.templateOrder {
		out = append(out, r.templates[uri])
	}
	return out
}

// Len returns the number of templates.
func (r *TemplateRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// AddQuantity records a quantity declaration, replacing any earlier one with
// the same URI.
func (r *TemplateRegistry) AddQuantity(q *Quantity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quantities[q.URI()]; !ok {
		r.quantityOrder = append(r.quantityOrder, q.URI())
	}
	r.quantities[q.URI()] = q
}

// Quantity returns a declared quantity, or nil.
func (r *TemplateRegistry) Quantity(uri string) *Quantity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.quantities[uri]
}

// Quantities returns the quantity declarations in the order they were added.
func (r *TemplateRegistry) Quantities() []*Quantity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Quantity, 0, len(r.quantityOrder))
	for _, uri := range r.quantityOrder {
		out = append(out, r.quantities[uri])
	}
	return out
}
