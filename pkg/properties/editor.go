// Package properties applies submitted properties forms to element instances:
// decode per the element's property list, validate against its JSON Schema,
// strip markup, then write the whole object into the design.
package properties

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formdesigner/pkg/designer"
	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/validation"
)

// Target is the design state the editor reads from and writes into.
// *designer.Designer satisfies it.
type Target interface {
	Element(id string) (model.ElementInstance, bool)
	UpdateElement(id string, instance model.ElementInstance) error
}

var _ Target = (*designer.Designer)(nil)

// Result describes the outcome of one submission. When Applied is false,
// Errors holds messages keyed by property name ("" for form-level messages)
// and Values holds the rejected payload so the panel can show it again.
type Result struct {
	Instance model.ElementInstance
	Values   model.Attributes
	Errors   map[string][]string
	Applied  bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithValidator shares a validator (and its compiled schema cache).
func WithValidator(v *validation.Validator) Option {
	return func(e *Editor) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithPolicy overrides the sanitiser applied to string properties.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(e *Editor) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// Editor is safe for concurrent use.
type Editor struct {
	registry  *elements.Registry
	validator *validation.Validator
	policy    *bluemonday.Policy
}

// NewEditor builds an editor over registry. Every registered properties
// schema is compiled up front so a broken plugin fails at start-up.
func NewEditor(registry *elements.Registry, opts ...Option) (*Editor, error) {
	if registry == nil {
		return nil, fmt.Errorf("properties: registry is required")
	}
	e := &Editor{
		registry:  registry,
		validator: validation.NewValidator(),
		policy:    bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	for _, descriptor := range registry.Descriptors() {
		if _, err := e.validator.Compile(schemaName(descriptor.Type), descriptor.PropertiesSchema); err != nil {
			return nil, fmt.Errorf("properties: %w", err)
		}
	}
	return e, nil
}

// Apply validates values for element id and, when they pass, replaces the
// element's attributes with them through target.UpdateElement. Validation
// failures are reported in the Result, never as an error.
func (e *Editor) Apply(ctx context.Context, target Target, id string, values url.Values) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	instance, ok := target.Element(id)
	if !ok {
		return Result{}, fmt.Errorf("properties: %w: %q", designer.ErrElementNotFound, id)
	}
	descriptor, err := e.registry.Lookup(instance.Type)
	if err != nil {
		return Result{}, fmt.Errorf("properties: %w", err)
	}

	decoded := descriptor.DecodeProperties(values)
	outcome, err := e.validator.Validate(schemaName(descriptor.Type), descriptor.PropertiesSchema, decoded)
	if err != nil {
		return Result{}, fmt.Errorf("properties: %w", err)
	}
	if !outcome.Valid {
		return Result{Instance: instance, Values: decoded, Errors: outcome.FieldErrors()}, nil
	}

	clean, changed := e.sanitise(decoded)
	if changed {
		// stripping markup can take a value below its minimum length
		outcome, err = e.validator.Validate(schemaName(descriptor.Type), descriptor.PropertiesSchema, clean)
		if err != nil {
			return Result{}, fmt.Errorf("properties: %w", err)
		}
		if !outcome.Valid {
			return Result{Instance: instance, Values: decoded, Errors: outcome.FieldErrors()}, nil
		}
	}

	updated := model.ElementInstance{
		ID:              instance.ID,
		Type:            instance.Type,
		ExtraAttributes: clean,
	}
	if err := target.UpdateElement(id, updated); err != nil {
		return Result{}, fmt.Errorf("properties: %w", err)
	}
	return Result{Instance: updated, Values: updated.ExtraAttributes.Clone(), Applied: true}, nil
}

// maxSanitisePasses bounds sanitiseText on inputs that keep changing.
const maxSanitisePasses = 8

// sanitise strips markup from string values. The second result reports
// whether any value changed.
func (e *Editor) sanitise(attrs model.Attributes) (model.Attributes, bool) {
	out := make(model.Attributes, len(attrs))
	changed := false
	for key, value := range attrs {
		if text, ok := value.(string); ok {
			clean := e.sanitiseText(text)
			changed = changed || clean != text
			out[key] = clean
			continue
		}
		out[key] = value
	}
	return out, changed
}

// sanitiseText returns plain text with no markup left in it, also once
// entities are decoded. Templates escape the result on output.
func (e *Editor) sanitiseText(text string) string {
	for range maxSanitisePasses {
		next := html.UnescapeString(e.policy.Sanitize(text))
		if next == text {
			return text
		}
		text = next
	}
	return e.policy.Sanitize(text)
}

func schemaName(elementType model.ElementType) string {
	return "properties/" + string(elementType)
}
