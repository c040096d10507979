package units

import (
	"fmt"
	"sort"
	"sync"
)

// Dimension holds exponents over the seven SI base quantities, in the order
// length, mass, time, current, temperature, amount, luminous intensity.
type Dimension [7]int

// Indexes into Dimension.
const (
	Length = iota
	Mass
	Time
	Current
	Temperature
	Amount
	Luminosity
)

type atom struct {
	symbol string
	name   string
	dim    Dimension
	scale  float64 // factor relative to the coherent SI unit
	metric bool    // accepts SI prefixes
}

type prefix struct {
	symbol string
	name   string
	factor float64
}

// Registry is a unit vocabulary. It is constructed explicitly and passed by
// reference so callers can substitute a reduced vocabulary.
//
// A Registry is safe for concurrent use once populated.
type Registry struct {
	mu            sync.RWMutex
	atoms         map[string]atom
	prefixes      map[string]prefix
	prefixOrder   []string
	substitutions [][2]string
	preferred     map[string][]BaseItem
}

// NewEmptyRegistry creates a registry with no units, prefixes or substitutions.
func NewEmptyRegistry() *Registry {
	return &Registry{
		atoms:     make(map[string]atom),
		prefixes:  make(map[string]prefix),
		preferred: make(map[string][]BaseItem),
	}
}

// NewRegistry creates a registry populated with the default UCUM subset used
// by bondgraph templates.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()

	r.DefineBase("m", "metre", Length)
	r.DefineBase("s", "second", Time)
	r.DefineBase("A", "ampere", Current)
	r.DefineBase("K", "kelvin", Temperature)
	r.DefineBase("mol", "mole", Amount)
	r.DefineBase("cd", "candela", Luminosity)
	// The gram is the UCUM base; the coherent SI unit is the kilogram.
	r.mustDefine(atom{symbol: "g", name: "gram", dim: dim(Mass, 1), scale: 1e-3, metric: true})

	r.mustDefine(atom{symbol: "L", name: "litre", dim: dim(Length, 3), scale: 1e-3, metric: true})
	r.mustDefine(atom{symbol: "l", name: "litre", dim: dim(Length, 3), scale: 1e-3, metric: true})
	r.mustDefine(atom{symbol: "N", name: "newton", dim: Dimension{1, 1, -2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "Pa", name: "pascal", dim: Dimension{-1, 1, -2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "J", name: "joule", dim: Dimension{2, 1, -2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "W", name: "watt", dim: Dimension{2, 1, -3}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "Hz", name: "hertz", dim: dim(Time, -1), scale: 1, metric: true})
	r.mustDefine(atom{symbol: "C", name: "coulomb", dim: Dimension{0, 0, 1, 1}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "V", name: "volt", dim: Dimension{2, 1, -3, -1}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "Ohm", name: "ohm", dim: Dimension{2, 1, -3, -2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "F", name: "farad", dim: Dimension{-2, -1, 4, 2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "S", name: "siemens", dim: Dimension{-2, -1, 3, 2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "H", name: "henry", dim: Dimension{2, 1, -2, -2}, scale: 1, metric: true})
	r.mustDefine(atom{symbol: "bar", name: "bar", dim: Dimension{-1, 1, -2}, scale: 1e5, metric: true})

	r.mustDefine(atom{symbol: "min", name: "minute", dim: dim(Time, 1), scale: 60})
	r.mustDefine(atom{symbol: "h", name: "hour", dim: dim(Time, 1), scale: 3600})
	r.mustDefine(atom{symbol: "d", name: "day", dim: dim(Time, 1), scale: 86400})
	r.mustDefine(atom{symbol: "mm[Hg]", name: "millimetre_mercury", dim: Dimension{-1, 1, -2}, scale: 133.322387415})
	r.mustDefine(atom{symbol: "%", name: "percent", scale: 0.01})

	for _, p := range []prefix{
		{"Y", "yotta", 1e24}, {"Z", "zetta", 1e21}, {"E", "exa", 1e18},
		{"P", "peta", 1e15}, {"T", "tera", 1e12}, {"G", "giga", 1e9},
		{"M", "mega", 1e6}, {"k", "kilo", 1e3}, {"h", "hecto", 1e2},
		{"da", "deka", 1e1}, {"d", "deci", 1e-1}, {"c", "centi", 1e-2},
		{"m", "milli", 1e-3}, {"u", "micro", 1e-6}, {"µ", "micro", 1e-6},
		{"n", "nano", 1e-9}, {"p", "pico", 1e-12}, {"f", "femto", 1e-15},
		{"a", "atto", 1e-18}, {"z", "zepto", 1e-21}, {"y", "yocto", 1e-24},
	} {
		r.DefinePrefix(p.symbol, p.name, p.factor)
	}

	r.AddSubstitution("kilopascal", "kPa")
	r.AddSubstitution("liter", "litre")
	r.AddSubstitution("meter", "metre")

	r.SetPreferredBaseItems("kPa", []BaseItem{{Unit: "joule", Exponent: 1}, {Unit: "litre", Exponent: -1}})

	return r
}

func dim(index, exponent int) Dimension {
	var d Dimension
	d[index] = exponent
	return d
}

// DefineBase registers a prefixable base unit for one dimension.
func (r *Registry) DefineBase(symbol, name string, dimension int) {
	r.mustDefine(atom{symbol: symbol, name: name, dim: dim(dimension, 1), scale: 1, metric: true})
}

// DefineUnit registers a unit as a scaled combination of base dimensions.
func (r *Registry) DefineUnit(symbol, name string, d Dimension, scale float64, metric bool) error {
	if symbol == "" {
		return fmt.Errorf("unit symbol cannot be empty")
	}
	if scale <= 0 {
		return fmt.Errorf("unit %s: scale must be positive, got %g", symbol, scale)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atoms[symbol] = atom{symbol: symbol, name: name, dim: d, scale: scale, metric: metric}
	return nil
}

func (r *Registry) mustDefine(a atom) {
	if err := r.DefineUnit(a.symbol, a.name, a.dim, a.scale, a.metric); err != nil {
		panic(fmt.Sprintf("internal error: invalid builtin unit: %v", err))
	}
}

// DefinePrefix registers an SI prefix.
func (r *Registry) DefinePrefix(symbol, name string, factor float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[symbol] = prefix{symbol: symbol, name: name, factor: factor}

	r.prefixOrder = r.prefixOrder[:0]
	for s := range r.prefixes {
		r.prefixOrder = append(r.prefixOrder, s)
	}
	// Longest symbols first so "da" wins over "d".
	sort.Slice(r.prefixOrder, func(i, j int) bool {
		if len(r.prefixOrder[i]) != len(r.prefixOrder[j]) {
			return len(r.prefixOrder[i]) > len(r.prefixOrder[j])
		}
		return r.prefixOrder[i] < r.prefixOrder[j]
	})
}

// AddSubstitution registers a textual replacement applied to unit names.
func (r *Registry) AddSubstitution(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.substitutions = append(r.substitutions, [2]string{from, to})
}

// SetPreferredBaseItems overrides the base-item decomposition reported for
// units whose normalized expression equals expr.
func (r *Registry) SetPreferredBaseItems(expr string, items []BaseItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferred[expr] = append([]BaseItem(nil), items...)
}

// lookup resolves a single (possibly prefixed) unit symbol.
func (r *Registry) lookup(symbol string) (product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.atoms[symbol]; ok {
		return atomProduct(a.symbol, a.name, a.dim, a.scale), true
	}
	for _, ps := range r.prefixOrder {
		if len(ps) >= len(symbol) || symbol[:len(ps)] != ps {
			continue
		}
		a, ok := r.atoms[symbol[len(ps):]]
		if !ok || !a.metric {
			continue
		}
		p := r.prefixes[ps]
		return atomProduct(symbol, p.name+a.name, a.dim, a.scale*p.factor), true
	}
	return product{}, false
}
