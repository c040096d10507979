package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Datatype tags recognised on typed literals.
const (
	DatatypeUCUM     = "https://w3id.org/cdt/ucum"
	DatatypeUCUMUnit = "https://w3id.org/cdt/ucumunit"
	XSDNamespace     = "http://www.w3.org/2001/XMLSchema#"
)

var xsdNumeric = map[string]bool{
	XSDNamespace + "decimal": true,
	XSDNamespace + "double":  true,
	XSDNamespace + "float":   true,
	XSDNamespace + "integer": true,
	XSDNamespace + "int":     true,
	XSDNamespace + "long":    true,
}

// Value is a scalar paired with its Units. The Units of a Value never change
// after construction.
type Value struct {
	scalar float64
	units  Units
}

// NewValue creates a value.
func NewValue(scalar float64, u Units) *Value {
	return &Value{scalar: scalar, units: u}
}

// Scalar returns the magnitude.
func (v *Value) Scalar() float64 {
	return v.scalar
}

// Units returns the unit of measure.
func (v *Value) Units() Units {
	return v.units
}

// Update overwrites the scalar only.
func (v *Value) Update(scalar float64) {
	v.scalar = scalar
}

// String formats the value as a compound literal.
func (v *Value) String() string {
	s := strconv.FormatFloat(v.scalar, 'g', -1, 64)
	if v.units.IsDimensionless() {
		return s
	}
	return s + " " + v.units.String()
}

// parseNumber reads a finite decimal number. Hexadecimal mantissas, NaN and
// infinities are refused.
func parseNumber(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("hexadecimal number %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return f, nil
}

// ParseValue accepts either a bare number, which is dimensionless, or a
// compound literal "<number> <unit-expr>".
func (r *Registry) ParseValue(literal string) (*Value, error) {
	fields := strings.Fields(literal)
	switch len(fields) {
	case 1:
		f, err := parseNumber(fields[0])
		if err != nil {
			return nil, valueParseError(literal, "invalid number", err)
		}
		return NewValue(f, Dimensionless()), nil
	case 2:
		f, err := parseNumber(fields[0])
		if err != nil {
			return nil, valueParseError(literal, "invalid number", err)
		}
		u, err := r.ParseUnits(fields[1])
		if err != nil {
			return nil, valueParseError(literal, "invalid units", err)
		}
		return NewValue(f, u), nil
	case 0:
		return nil, valueParseError(literal, "empty literal", nil)
	default:
		return nil, valueParseError(literal, fmt.Sprintf("expected \"<number> <units>\", got %d fields", len(fields)), nil)
	}
}

// ParseTypedValue parses a literal carrying a datatype tag. An empty tag or an
// XSD numeric tag denotes a bare number; the UCUM tag denotes a compound
// literal.
func (r *Registry) ParseTypedValue(lexical, datatype string) (*Value, error) {
	switch {
	case datatype == "" || xsdNumeric[datatype]:
		f, err := parseNumber(strings.TrimSpace(lexical))
		if err != nil {
			return nil, valueParseError(lexical, "invalid number", err)
		}
		return NewValue(f, Dimensionless()), nil
	case datatype == DatatypeUCUM:
		if len(strings.Fields(lexical)) != 2 {
			return nil, valueParseError(lexical, "expected \"<number> <units>\"", nil)
		}
		return r.ParseValue(lexical)
	default:
		return nil, valueParseError(lexical, "unrecognized datatype tag "+datatype, nil)
	}
}

// ParseUnitsLiteral parses a unit expression carrying a datatype tag, which
// must be empty or the UCUM unit tag.
func (r *Registry) ParseUnitsLiteral(lexical, datatype string) (Units, error) {
	if datatype != "" && datatype != DatatypeUCUMUnit {
		return Units{}, unitParseError(lexical, "unexpected datatype tag "+datatype)
	}
	return r.ParseUnits(lexical)
}
