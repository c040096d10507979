// Package library loads template libraries from YAML documents into a
// bondgraph.TemplateRegistry.
package library

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
	"github.com/dd0wney/cluso-bondgraph/pkg/namespace"
	"github.com/dd0wney/cluso-bondgraph/pkg/units"
	"github.com/dd0wney/cluso-bondgraph/pkg/validation"
)

// Errors for references that do not resolve within a library document.
var (
	ErrUnknownQuantity = errors.New("undeclared quantity")
	ErrUnknownNode     = errors.New("unknown node")
	ErrUnknownPort     = errors.New("port does not name a template node")
)

// Library is a loaded template library.
type Library struct {
	Registry   *bondgraph.TemplateRegistry
	Namespaces *namespace.Map
}

// Loader builds libraries. A Loader may be reused.
type Loader struct {
	units      *units.Registry
	namespaces *namespace.Map
	logger     logging.Logger
	metrics    *metrics.Registry
}

// Option configures a Loader.
type Option func(*Loader)

// WithUnits sets the unit registry used for every template model.
func WithUnits(reg *units.Registry) Option {
	return func(l *Loader) { l.units = reg }
}

// WithNamespaces sets the base namespace map that document prefixes extend.
func WithNamespaces(ns *namespace.Map) Option {
	return func(l *Loader) { l.namespaces = ns }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(l *Loader) { l.metrics = reg }
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.units == nil {
		l.units = units.NewRegistry()
	}
	if l.namespaces == nil {
		l.namespaces = namespace.Defaults()
	}
	l.logger = logging.OrNop(l.logger).With(logging.Component("library"))
	return l
}

// LoadFile loads the library document at path.
func (l *Loader) LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	lib, err := l.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Load decodes, validates and builds a library document.
func (l *Loader) Load(r io.Reader) (*Library, error) {
	var decl validation.LibraryDecl
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing library: %w", err)
	}
	return l.Build(&decl)
}

// Build turns a decoded library document into a registry. Every template's
// backing model is frozen.
func (l *Loader) Build(decl *validation.LibraryDecl) (*Library, error) {
	timer := logging.StartTimer(l.logger, "library loaded")

	if err := validation.ValidateLibrary(decl); err != nil {
		return nil, err
	}

	ns := l.namespaces.Copy()
	prefixes := make([]string, 0, len(decl.Namespaces))
	for p := range decl.Namespaces {
		prefixes = append(prefixes, p)
	}
	slices.Sort(prefixes)
	for _, p := range prefixes {
		ns.Add(p, decl.Namespaces[p])
	}

	reg := bondgraph.NewTemplateRegistry()
	for _, qd := range decl.Quantities {
		q, err := l.quantity(ns, qd)
		if err != nil {
			return nil, err
		}
		reg.AddQuantity(q)
	}

	for _, td := range decl.Templates {
		t, err := l.template(ns, reg, td)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", td.URI, err)
		}
		reg.Register(t)
	}

	l.metrics.SetTemplatesRegistered(reg.Len())
	timer.End(logging.Count(reg.Len()), logging.Int("quantities", len(decl.Quantities)))
	return &Library{Registry: reg, Namespaces: ns}, nil
}

func (l *Loader) quantity(ns *namespace.Map, qd validation.QuantityDecl) (*bondgraph.Quantity, error) {
	uri := ns.URI(qd.URI)
	label := qd.Label
	if label == "" {
		label = ns.Curie(uri)
	}
	return bondgraph.NewQuantity(l.units, uri, qd.Units, label, qd.Variable)
}

func (l *Loader) template(ns *namespace.Map, reg *bondgraph.TemplateRegistry, td validation.TemplateDecl) (*bondgraph.Template, error) {
	uri := ns.URI(td.URI)
	modelURI := ns.URI(td.Model)
	if td.Model == "" {
		modelURI = uri + "-model"
	}

	m := bondgraph.NewModel(modelURI,
		bondgraph.WithUnits(l.units),
		bondgraph.WithNamespaces(ns),
		bondgraph.WithLogger(l.logger))

	for _, nd := range td.Nodes {
		n, err := m.AddNode(ns.URI(nd.URI), ns.URI(nd.Type), nd.Units, nd.Label, nd.Properties)
		if err != nil {
			return nil, err
		}
		for _, qref := range slices.Concat(nd.States, nd.Parameters, nd.Quantities) {
			q := reg.Quantity(ns.URI(qref))
			if q == nil {
				return nil, fmt.Errorf("node %s: %w %s", nd.URI, ErrUnknownQuantity, qref)
			}
			n.AddQuantity(q)
		}
	}

	for i, bd := range td.Bonds {
		bondURI := ns.URI(bd.URI)
		if bd.URI == "" {
			bondURI = fmt.Sprintf("%s-bond-%d", uri, i+1)
		}
		b, err := m.AddBond(bondURI, ns.URI(bd.Source), ns.URI(bd.Target))
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, fmt.Errorf("bond %s -> %s: %w", bd.Source, bd.Target, ErrUnknownNode)
		}
	}

	t := bondgraph.NewTemplate(uri, m, td.Label)
	for _, p := range td.Ports {
		portURI := ns.URI(p)
		t.AddPort(portURI)
		if t.Port(portURI) == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPort, p)
		}
	}

	m.Freeze()
	l.logger.Debug("template registered",
		logging.TemplateURI(uri),
		logging.Int("nodes", m.NodeCount()),
		logging.Int("bonds", m.BondCount()),
		logging.Int("ports", len(t.Ports())))
	return t, nil
}
