package bondgraph

// Template is a reusable sub-model with named connection points. The backing
// model is only read by merges.
type Template struct {
	uri     string
	model   *Model
	label   string
	ports   []*Node
	portIdx map[string]int
}

// NewTemplate wraps model as a template. An empty label defaults to the
// display form of uri.
func NewTemplate(uri string, model *Model, label string) *Template {
	if label == "" {
		if model != nil {
			label = model.DisplayID(uri)
		} else {
			label = uri
		}
	}
	return &Template{
		uri:     uri,
		model:   model,
		label:   label,
		portIdx: make(map[string]int),
	}
}

func (t *Template) URI() string   { return t.uri }
func (t *Template) Label() string { return t.label }
func (t *Template) Model() *Model { return t.model }

// AddPort exposes a backing-model node as a port. URIs that do not resolve
// are ignored.
func (t *Template) AddPort(nodeURI string) {
	if t.model == nil {
		return
	}
	n := t.model.GetNode(nodeURI)
	if n == nil {
		return
	}
	if i, ok := t.portIdx[nodeURI]; ok {
		t.ports[i] = n
		return
	}
	t.portIdx[nodeURI] = len(t.ports)
	t.ports = append(t.ports, n)
}

// Ports returns the port nodes in declaration order.
func (t *Template) Ports() []*Node {
	return append([]*Node(nil), t.ports...)
}

// Port returns the port node with the given URI, or nil.
func (t *Template) Port(uri string) *Node {
	if i, ok := t.portIdx[uri]; ok {
		return t.ports[i]
	}
	return nil
}
