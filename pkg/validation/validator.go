package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxPropertyKey = 100
	MaxTermLength  = 2048

	// Regular expressions
	propKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.-]*$`)
	prefixPattern  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.-]*)?$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(yamlName)
	if err := validate.RegisterValidation("term", func(fl validator.FieldLevel) bool {
		return ValidateTerm(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
}

// yamlName reports fields by their YAML key so errors match the source file.
func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// QuantityDecl declares a quantity in a template library.
type QuantityDecl struct {
	URI      string `yaml:"uri" validate:"required,term"`
	Units    string `yaml:"units"`
	Label    string `yaml:"label"`
	Variable string `yaml:"variable"`
}

// NodeDecl declares a node of a template's backing model. States, parameters
// and quantities all name quantity declarations.
type NodeDecl struct {
	URI        string            `yaml:"uri" validate:"required,term"`
	Type       string            `yaml:"type" validate:"required,term"`
	Units      string            `yaml:"units"`
	Label      string            `yaml:"label"`
	Properties map[string]string `yaml:"properties"`
	States     []string          `yaml:"states" validate:"dive,term"`
	Parameters []string          `yaml:"parameters" validate:"dive,term"`
	Quantities []string          `yaml:"quantities" validate:"dive,term"`
}

// BondDecl declares a bond of a template's backing model.
type BondDecl struct {
	URI    string `yaml:"uri" validate:"omitempty,term"`
	Source string `yaml:"source" validate:"required,term"`
	Target string `yaml:"target" validate:"required,term"`
}

// TemplateDecl declares a template with its backing model.
type TemplateDecl struct {
	URI   string     `yaml:"uri" validate:"required,term"`
	Label string     `yaml:"label"`
	Model string     `yaml:"model" validate:"omitempty,term"`
	Nodes []NodeDecl `yaml:"nodes" validate:"required,min=1,dive"`
	Bonds []BondDecl `yaml:"bonds" validate:"dive"`
	Ports []string   `yaml:"ports" validate:"dive,term"`
}

// LibraryDecl is a template library document.
type LibraryDecl struct {
	Namespaces map[string]string `yaml:"namespaces"`
	Quantities []QuantityDecl    `yaml:"quantities" validate:"dive"`
	Templates  []TemplateDecl    `yaml:"templates" validate:"dive"`
}

// ConnectionDecl binds a template port to a host node.
type ConnectionDecl struct {
	Port string `yaml:"port" validate:"required,term"`
	Node string `yaml:"node" validate:"required,term"`
}

// ComponentDecl instantiates one template. Model overrides the document's
// model URI.
type ComponentDecl struct {
	ID          string           `yaml:"id"`
	Model       string           `yaml:"model" validate:"omitempty,term"`
	Template    string           `yaml:"template" validate:"required,term"`
	Connections []ConnectionDecl `yaml:"connections" validate:"dive"`
}

// ValueDecl sets a node's direct value.
type ValueDecl struct {
	Node  string `yaml:"node" validate:"required,term"`
	Value string `yaml:"value" validate:"required"`
}

// QuantityValueDecl sets one of a node's quantity values.
type QuantityValueDecl struct {
	Node     string `yaml:"node" validate:"required,term"`
	Quantity string `yaml:"quantity" validate:"required,term"`
	Name     string `yaml:"name"`
	Value    string `yaml:"value" validate:"required"`
}

// SpecificationDecl is a model specification document.
type SpecificationDecl struct {
	Model      string              `yaml:"model" validate:"required,term"`
	Name       string              `yaml:"name"`
	Namespaces map[string]string   `yaml:"namespaces"`
	Components []ComponentDecl     `yaml:"components" validate:"dive"`
	Values     []ValueDecl         `yaml:"values" validate:"dive"`
	Quantities []QuantityValueDecl `yaml:"quantities" validate:"dive"`
}

// ValidateLibrary validates a template library document
func ValidateLibrary(decl *LibraryDecl) error {
	if decl == nil {
		return errors.New("library cannot be nil")
	}
	if err := validate.Struct(decl); err != nil {
		return formatValidationError(err)
	}
	if err := ValidateNamespaces(decl.Namespaces); err != nil {
		return err
	}

	for _, t := range decl.Templates {
		for _, n := range t.Nodes {
			for key := range n.Properties {
				if err := ValidatePropertyKey(key); err != nil {
					return fmt.Errorf("%s: properties: %w", n.URI, err)
				}
			}
		}
	}
	return nil
}

// ValidateSpecification validates a model specification document
func ValidateSpecification(decl *SpecificationDecl) error {
	if decl == nil {
		return errors.New("specification cannot be nil")
	}
	if err := validate.Struct(decl); err != nil {
		return formatValidationError(err)
	}
	return ValidateNamespaces(decl.Namespaces)
}

// ValidateNamespaces checks prefix declarations. The empty prefix is allowed.
func ValidateNamespaces(namespaces map[string]string) error {
	for prefix, ns := range namespaces {
		if !prefixPattern.MatchString(prefix) {
			return fmt.Errorf("namespaces: prefix '%s' is invalid", prefix)
		}
		if err := ValidateTerm(ns); err != nil {
			return fmt.Errorf("namespaces: %s: %w", prefix, err)
		}
		if !strings.HasSuffix(ns, "#") && !strings.HasSuffix(ns, "/") {
			return fmt.Errorf("namespaces: %s: namespace '%s' must end with '#' or '/'", prefix, ns)
		}
	}
	return nil
}

// ValidateTerm checks that s looks like a URI or a CURIE.
func ValidateTerm(s string) error {
	if s == "" {
		return errors.New("term cannot be empty")
	}
	if len(s) > MaxTermLength {
		return fmt.Errorf("term exceeds maximum length of %d characters", MaxTermLength)
	}
	if strings.ContainsAny(s, " \t\r\n<>\"{}|\\^`") {
		return fmt.Errorf("term '%s' contains invalid characters", s)
	}
	if !strings.Contains(s, ":") {
		return fmt.Errorf("term '%s' is neither a URI nor a CURIE", s)
	}
	return nil
}

// ValidatePropertyKey validates a property key
func ValidatePropertyKey(key string) error {
	if key == "" {
		return errors.New("property key cannot be empty")
	}
	if len(key) > MaxPropertyKey {
		return fmt.Errorf("property key '%s' exceeds maximum length of %d characters", key, MaxPropertyKey)
	}
	if !propKeyPattern.MatchString(key) {
		return fmt.Errorf("property key '%s' is invalid (must start with letter or underscore)", key)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := fieldPath(e.Namespace())
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must have at least %s entries", field, param)
		case "term":
			return fmt.Errorf("%s: '%v' is not a URI or CURIE", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
