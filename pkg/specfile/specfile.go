// Package specfile reads model specification documents and flattens them
// into the row streams consumed by package compose.
package specfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bondgraph/pkg/compose"
	"github.com/dd0wney/cluso-bondgraph/pkg/namespace"
	"github.com/dd0wney/cluso-bondgraph/pkg/validation"
)

// ParseFile reads the specification at path. Prefixes declared in the
// document extend base, which may be nil.
func ParseFile(path string, base *namespace.Map) (*compose.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading specification: %w", err)
	}
	src, err := Parse(bytes.NewReader(data), base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Parse decodes and validates a specification document.
func Parse(r io.Reader, base *namespace.Map) (*compose.Source, error) {
	var decl validation.SpecificationDecl
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&decl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty specification")
		}
		return nil, fmt.Errorf("parsing specification: %w", err)
	}
	return Flatten(&decl, base)
}

// Flatten converts a specification document into rows with every CURIE
// expanded. The empty prefix defaults to the model's namespace, and
// components without an id get a random one.
func Flatten(decl *validation.SpecificationDecl, base *namespace.Map) (*compose.Source, error) {
	if err := validation.ValidateSpecification(decl); err != nil {
		return nil, err
	}

	ns := namespace.Defaults()
	if base != nil {
		ns = base.Copy()
	}
	prefixes := make([]string, 0, len(decl.Namespaces))
	for p := range decl.Namespaces {
		prefixes = append(prefixes, p)
	}
	slices.Sort(prefixes)
	for _, p := range prefixes {
		ns.Add(p, decl.Namespaces[p])
	}

	modelURI := ns.URI(decl.Model)
	modelNS := namespace.Base(modelURI)
	_, hasDefault := ns.Namespace("")
	expand := func(term string) string {
		if local, ok := strings.CutPrefix(term, ":"); ok && !hasDefault {
			return modelNS + local
		}
		return ns.URI(term)
	}

	src := &compose.Source{Namespaces: ns}
	for _, cd := range decl.Components {
		id := cd.ID
		if id == "" {
			id = uuid.NewString()
		}
		model := modelURI
		if cd.Model != "" {
			model = expand(cd.Model)
		}

		row := compose.ComponentRow{
			Model:     model,
			Name:      decl.Name,
			Component: id,
			Template:  expand(cd.Template),
		}
		if len(cd.Connections) == 0 {
			src.Components = append(src.Components, row)
			continue
		}
		for _, conn := range cd.Connections {
			row.Port = expand(conn.Port)
			row.Node = expand(conn.Node)
			src.Components = append(src.Components, row)
		}
	}

	for _, vd := range decl.Values {
		src.Values = append(src.Values, compose.ValueRow{Node: expand(vd.Node), Value: vd.Value})
	}
	for _, qd := range decl.Quantities {
		name := qd.Name
		if name != "" {
			name = expand(name)
		}
		src.Quantities = append(src.Quantities, compose.QuantityRow{
			Node:     expand(qd.Node),
			Quantity: expand(qd.Quantity),
			Name:     name,
			Value:    qd.Value,
		})
	}
	return src, nil
}
