// Package namespace maps prefixes to URI namespaces and converts between
// full URIs and compact "prefix:local" CURIEs.
package namespace

import (
	"bufio"
	"fmt"
	"strings"
)

// Namespace is a URI prefix from which terms are built.
type Namespace string

// Term returns the URI of local within the namespace.
func (ns Namespace) Term(local string) string {
	return string(ns) + local
}

// String returns the namespace URI.
func (ns Namespace) String() string {
	return string(ns)
}

// Well-known namespaces.
const (
	RDFS Namespace = "http://www.w3.org/2000/01/rdf-schema#"
	BG   Namespace = "http://celldl.org/ontologies/bond-graph#"
	CDT  Namespace = "https://w3id.org/cdt/"
	TPL  Namespace = "http://celldl.org/ontologies/model-template#"
	XSD  Namespace = "http://www.w3.org/2001/XMLSchema#"
)

// Map is a bidirectional prefix <-> namespace table. Each prefix and each
// namespace appears at most once; insertion order decides which prefix wins
// when namespaces overlap.
type Map struct {
	prefixes []string
	byPrefix map[string]string
	byNS     map[string]string
}

// New creates a map from prefix/namespace pairs. Pairs are applied in the
// order given.
func New(pairs ...[2]string) *Map {
	m := &Map{
		byPrefix: make(map[string]string),
		byNS:     make(map[string]string),
	}
	for _, p := range pairs {
		m.Add(p[0], p[1])
	}
	return m
}

// Defaults returns a map holding the well-known bondgraph prefixes.
func Defaults() *Map {
	return New(
		[2]string{"bg", BG.String()},
		[2]string{"cdt", CDT.String()},
		[2]string{"rdfs", RDFS.String()},
		[2]string{"tpl", TPL.String()},
		[2]string{"xsd", XSD.String()},
	)
}

// FromPrefixes reads "PREFIX p: <ns>" lines, stopping at the first line that
// is neither blank nor a prefix declaration.
func FromPrefixes(text string) *Map {
	m := New()
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) == 0 {
			continue
		}
		if len(parts) != 3 || !strings.EqualFold(parts[0], "prefix") ||
			!strings.HasSuffix(parts[1], ":") ||
			!strings.HasPrefix(parts[2], "<") || !strings.HasSuffix(parts[2], ">") {
			break
		}
		m.Add(strings.TrimSuffix(parts[1], ":"), parts[2][1:len(parts[2])-1])
	}
	return m
}

// Add binds prefix to namespace, replacing any earlier binding of either.
func (m *Map) Add(prefix, namespace string) {
	if old, ok := m.byNS[namespace]; ok {
		m.Delete(old)
	}
	if old, ok := m.byPrefix[prefix]; ok {
		delete(m.byNS, old)
	} else {
		m.prefixes = append(m.prefixes, prefix)
	}
	m.byPrefix[prefix] = namespace
	m.byNS[namespace] = prefix
}

// Delete removes a prefix binding.
func (m *Map) Delete(prefix string) {
	ns, ok := m.byPrefix[prefix]
	if !ok {
		return
	}
	delete(m.byPrefix, prefix)
	delete(m.byNS, ns)
	for i, p := range m.prefixes {
		if p == prefix {
			m.prefixes = append(m.prefixes[:i], m.prefixes[i+1:]...)
			break
		}
	}
}

// Namespace returns the namespace bound to prefix.
func (m *Map) Namespace(prefix string) (string, bool) {
	ns, ok := m.byPrefix[prefix]
	return ns, ok
}

// Len returns the number of bindings.
func (m *Map) Len() int {
	return len(m.prefixes)
}

// Copy returns an independent copy.
func (m *Map) Copy() *Map {
	c := New()
	for _, p := range m.prefixes {
		c.Add(p, m.byPrefix[p])
	}
	return c
}

// Merge adds every binding of other to m and returns m.
func (m *Map) Merge(other *Map) *Map {
	if other == nil {
		return m
	}
	for _, p := range other.prefixes {
		m.Add(p, other.byPrefix[p])
	}
	return m
}

// Curie compacts uri using the first matching namespace. A URI with no
// matching namespace is returned unchanged.
func (m *Map) Curie(uri string) string {
	for _, p := range m.prefixes {
		if ns := m.byPrefix[p]; strings.HasPrefix(uri, ns) {
			return p + ":" + uri[len(ns):]
		}
	}
	return uri
}

// URI expands a CURIE. Anything that is not a CURIE over a known prefix is
// returned unchanged.
func (m *Map) URI(curie string) string {
	prefix, local, ok := strings.Cut(curie, ":")
	if !ok {
		return curie
	}
	if ns, ok := m.byPrefix[prefix]; ok {
		return ns + local
	}
	return curie
}

// Simplify returns the display form of a term: its CURIE when one exists.
// Typed literals are rendered as "lexical"^^datatype-curie.
func (m *Map) Simplify(term string, datatype ...string) string {
	if len(datatype) > 0 && datatype[0] != "" {
		return fmt.Sprintf("%q^^%s", term, m.Curie(datatype[0]))
	}
	return m.Curie(term)
}

// Prefixes renders the map as "PREFIX p: <ns>" lines in insertion order.
func (m *Map) Prefixes() string {
	lines := make([]string, 0, len(m.prefixes))
	for _, p := range m.prefixes {
		lines = append(lines, fmt.Sprintf("PREFIX %s: <%s>", p, m.byPrefix[p]))
	}
	return strings.Join(lines, "\n")
}

// Pairs returns the bindings in insertion order.
func (m *Map) Pairs() [][2]string {
	out := make([][2]string, 0, len(m.prefixes))
	for _, p := range m.prefixes {
		out = append(out, [2]string{p, m.byPrefix[p]})
	}
	return out
}

// LocalName returns the fragment of uri after the last '#' or '/'.
func LocalName(uri string) string {
	if i := strings.LastIndexAny(uri, "#/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// Base returns uri up to and including its last '#' or '/', or uri+"#" when
// it has neither.
func Base(uri string) string {
	if i := strings.LastIndexAny(uri, "#/"); i >= 0 {
		return uri[:i+1]
	}
	return uri + "#"
}
