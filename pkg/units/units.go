package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// scaleTolerance is the relative tolerance used when comparing scale factors.
const scaleTolerance = 1e-9

// BaseItem is one (unit name, exponent) pair of a decomposition.
type BaseItem struct {
	Unit     string
	Exponent int
}

// Units is an immutable unit of measure. Two Units are equal when they have
// the same base-dimension exponents and the same scale relative to the
// coherent SI unit; their textual spelling is irrelevant.
//
// The zero value is dimensionless.
type Units struct {
	dim   Dimension
	scale float64
	expr  string
	name  string
	base  []BaseItem
}

// Dimensionless returns the unit "1".
func Dimensionless() Units {
	return Units{scale: 1, expr: "1", name: "dimensionless"}
}

func (u Units) factor() float64 {
	if u.scale == 0 {
		return 1
	}
	return u.scale
}

// Equal reports whether u and other denote the same unit.
func (u Units) Equal(other Units) bool {
	if u.dim != other.dim {
		return false
	}
	a, b := u.factor(), other.factor()
	return math.Abs(a-b) <= scaleTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// Dimension returns the base-dimension exponents.
func (u Units) Dimension() Dimension {
	return u.dim
}

// Scale returns the factor relative to the coherent SI unit.
func (u Units) Scale() float64 {
	return u.factor()
}

// IsDimensionless reports whether u equals "1".
func (u Units) IsDimensionless() bool {
	return u.Equal(Dimensionless())
}

// String returns the normalized UCUM expression.
func (u Units) String() string {
	if u.expr == "" {
		return "1"
	}
	return u.expr
}

// Name returns an identifier form of the unit, e.g. "kPa_second_per_litre".
func (u Units) Name() string {
	if u.name == "" {
		return "dimensionless"
	}
	return u.name
}

// BaseItems returns the decomposition into named units with exponents.
func (u Units) BaseItems() []BaseItem {
	return append([]BaseItem(nil), u.base...)
}

// item is one named factor of a product, in the spelling it was written.
type item struct {
	symbol string
	name   string
	exp    int
}

// product accumulates a unit term while parsing.
type product struct {
	dim   Dimension
	scale float64
	items []item
}

func unitProduct() product {
	return product{scale: 1}
}

func atomProduct(symbol, name string, d Dimension, scale float64) product {
	return product{dim: d, scale: scale, items: []item{{symbol: symbol, name: name, exp: 1}}}
}

func (p *product) mul(other product, sign int) {
	for i := range p.dim {
		p.dim[i] += other.dim[i] * sign
	}
	p.scale *= math.Pow(other.scale, float64(sign))
	for _, it := range other.items {
		p.addItem(it.symbol, it.name, it.exp*sign)
	}
}

func (p *product) addItem(symbol, name string, exp int) {
	for i := range p.items {
		if p.items[i].symbol == symbol {
			p.items[i].exp += exp
			return
		}
	}
	p.items = append(p.items, item{symbol: symbol, name: name, exp: exp})
}

func (p product) pow(n int) product {
	out := product{scale: math.Pow(p.scale, float64(n))}
	for i := range p.dim {
		out.dim[i] = p.dim[i] * n
	}
	for _, it := range p.items {
		out.items = append(out.items, item{symbol: it.symbol, name: it.name, exp: it.exp * n})
	}
	return out
}

// ParseUnits resolves a UCUM-style unit expression.
func (r *Registry) ParseUnits(expr string) (Units, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return Dimensionless(), nil
	}

	p := &parser{reg: r, input: s}
	prod, err := p.term()
	if err != nil {
		return Units{}, unitParseError(expr, err.Error())
	}
	if p.pos < len(p.input) {
		return Units{}, unitParseError(expr, fmt.Sprintf("unexpected %q at offset %d", p.input[p.pos], p.pos))
	}
	return r.build(prod), nil
}

// MustParseUnits is like ParseUnits but panics on error. Intended for
// constants in tests and static tables.
func (r *Registry) MustParseUnits(expr string) Units {
	u, err := r.ParseUnits(expr)
	if err != nil {
		panic(err)
	}
	return u
}

func (r *Registry) build(p product) Units {
	var items []item
	for _, it := range p.items {
		if it.exp != 0 {
			items = append(items, it)
		}
	}

	u := Units{dim: p.dim, scale: p.scale}
	if len(items) == 0 {
		d := Dimensionless()
		u.expr, u.name = d.expr, d.name
		if p.scale != 1 {
			u.expr = strconv.FormatFloat(p.scale, 'g', -1, 64)
			u.name = "dimensionless_" + u.expr
		}
		return u
	}

	var num, den []string
	var numNames, denNames []string
	for _, it := range items {
		if it.exp > 0 {
			num = append(num, symbolWithExp(it.symbol, it.exp))
			numNames = append(numNames, nameWithExp(it.name, it.exp))
		} else {
			den = append(den, symbolWithExp(it.symbol, -it.exp))
			denNames = append(denNames, nameWithExp(it.name, -it.exp))
		}
		u.base = append(u.base, BaseItem{Unit: it.name, Exponent: it.exp})
	}

	u.expr = strings.Join(num, ".")
	for _, d := range den {
		u.expr += "/" + d
	}

	name := strings.Join(numNames, "_")
	if name == "" {
		name = "1"
	}
	for _, d := range denNames {
		name += "_per_" + d
	}

	r.mu.RLock()
	for _, sub := range r.substitutions {
		name = strings.ReplaceAll(name, sub[0], sub[1])
	}
	if pref, ok := r.preferred[u.expr]; ok {
		u.base = append([]BaseItem(nil), pref...)
	}
	r.mu.RUnlock()
	u.name = name

	return u
}

func symbolWithExp(symbol string, exp int) string {
	if exp == 1 {
		return symbol
	}
	return symbol + strconv.Itoa(exp)
}

func nameWithExp(name string, exp int) string {
	switch exp {
	case 1:
		return name
	case 2:
		return name + "_squared"
	case 3:
		return name + "_cubed"
	default:
		return name + "_pow_" + strconv.Itoa(exp)
	}
}

// parser is a recursive-descent reader for UCUM-style expressions:
//
//	term      = ["/"] component { ("." | "/") component }
//	component = "(" term ")" [exponent] | digits | symbol [exponent] [annotation]
//	exponent  = ["+" | "-"] digits
type parser struct {
	reg   *Registry
	input string
	pos   int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) term() (product, error) {
	acc := unitProduct()
	sign := 1
	if p.peek() == '/' {
		p.pos++
		sign = -1
	}
	for {
		c, err := p.component()
		if err != nil {
			return product{}, err
		}
		acc.mul(c, sign)

		switch p.peek() {
		case '.':
			p.pos++
			sign = 1
		case '/':
			p.pos++
			sign = -1
		default:
			return acc, nil
		}
	}
}

func (p *parser) component() (product, error) {
	switch c := p.peek(); {
	case c == 0:
		return product{}, fmt.Errorf("unexpected end of expression")
	case c == '(':
		p.pos++
		inner, err := p.term()
		if err != nil {
			return product{}, err
		}
		if p.peek() != ')' {
			return product{}, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		exp, err := p.exponent()
		if err != nil {
			return product{}, err
		}
		return inner.pow(exp), nil
	case isDigit(c):
		start := p.pos
		for isDigit(p.peek()) {
			p.pos++
		}
		n, err := strconv.Atoi(p.input[start:p.pos])
		if err != nil {
			return product{}, err
		}
		if n == 0 {
			return product{}, fmt.Errorf("zero factor")
		}
		p.skipAnnotation()
		f := unitProduct()
		f.scale = float64(n)
		return f, nil
	case c == '{':
		p.skipAnnotation()
		return unitProduct(), nil
	}

	sym := p.symbol()
	if sym == "" {
		return product{}, fmt.Errorf("expected unit symbol at offset %d", p.pos)
	}
	exp, err := p.exponent()
	if err != nil {
		return product{}, err
	}
	p.skipAnnotation()

	u, ok := p.reg.lookup(sym)
	if !ok {
		return product{}, fmt.Errorf("unknown unit %q", sym)
	}
	return u.pow(exp), nil
}

func (p *parser) symbol() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '[' {
			end := strings.IndexByte(p.input[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.input)
				break
			}
			p.pos += end + 1
			continue
		}
		if strings.IndexByte("./(){}+- \t", c) >= 0 || isDigit(c) {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) exponent() (int, error) {
	start := p.pos
	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	digits := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	if p.pos == digits {
		if digits != start {
			return 0, fmt.Errorf("sign without exponent at offset %d", start)
		}
		return 1, nil
	}
	return strconv.Atoi(p.input[start:p.pos])
}

func (p *parser) skipAnnotation() {
	if p.peek() != '{' {
		return
	}
	if end := strings.IndexByte(p.input[p.pos:], '}'); end >= 0 {
		p.pos += end + 1
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
