package elements

import (
	"bytes"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-formdesigner/pkg/model"
	rendertemplate "github.com/goliatone/go-formdesigner/pkg/render/template"
)

// Renderer writes one view of an element instance into buf.
type Renderer func(buf *bytes.Buffer, instance model.ElementInstance, data ComponentData) error

// ComponentData carries per-render inputs for element views. Fields irrelevant
// to a view are left zero.
type ComponentData struct {
	// Template and Partials let a theme override a view: when Partials holds
	// the view's partial key, Template renders that template instead of the
	// plugin's bundled one.
	Template rendertemplate.TemplateRenderer
	Partials map[string]string
	// Value pre-fills the form view.
	Value any
	// Errors are messages for the form view.
	Errors []string
	// Properties is the current (possibly invalid) properties payload shown by
	// the properties view; defaults to the instance attributes.
	Properties model.Attributes
	// PropertyErrors are field-level messages keyed by property name.
	PropertyErrors map[string][]string
	// Action is the URL the properties form posts to.
	Action string
	// Hidden inputs emitted inside the properties form.
	Hidden map[string]string
}

// Button describes the palette entry used to drop a new element on the
// designer canvas. Icon holds inline SVG markup.
type Button struct {
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label"`
}

// PropertyKind tells the properties decoder how to read a submitted value.
type PropertyKind string

const (
	PropertyString  PropertyKind = "string"
	PropertyBoolean PropertyKind = "boolean"
)

// Property names one configurable attribute of an element type.
type Property struct {
	Name        string       `json:"name"`
	Kind        PropertyKind `json:"kind"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
}

// Descriptor is the static plugin contract of one field type.
type Descriptor struct {
	Type           model.ElementType
	Construct      func(id string) model.ElementInstance
	DesignerButton Button
	Designer       Renderer
	Form           Renderer
	Properties     Renderer
	// PropertiesSchema is the JSON Schema the properties editor validates
	// against before writing into the design.
	PropertiesSchema []byte
	PropertyList     []Property
	// Field derives the form model field for an instance.
	Field func(instance model.ElementInstance) model.Field
}

func (d Descriptor) validate() error {
	switch {
	case strings.TrimSpace(string(d.Type)) == "":
		return fmt.Errorf("%w: type is required", ErrInvalidDescriptor)
	case d.Construct == nil:
		return fmt.Errorf("%w: %s has no constructor", ErrInvalidDescriptor, d.Type)
	case d.Designer == nil || d.Form == nil || d.Properties == nil:
		return fmt.Errorf("%w: %s must provide designer, form and properties views", ErrInvalidDescriptor, d.Type)
	case d.Field == nil:
		return fmt.Errorf("%w: %s has no field builder", ErrInvalidDescriptor, d.Type)
	case len(d.PropertiesSchema) == 0:
		return fmt.Errorf("%w: %s has no properties schema", ErrInvalidDescriptor, d.Type)
	}
	return nil
}

// View returns the renderer for a mode.
func (d Descriptor) View(mode model.Mode) Renderer {
	switch mode {
	case model.ModePreview:
		return d.Form
	case model.ModeProperties:
		return d.Properties
	default:
		return d.Designer
	}
}

// DecodeProperties reads the descriptor's properties from a submitted form.
// Strings are taken verbatim; booleans are true for "on", "true" or "1" and
// false when absent, matching how browsers submit checkboxes.
func (d Descriptor) DecodeProperties(values url.Values) model.Attributes {
	out := make(model.Attributes, len(d.PropertyList))
	for _, prop := range d.PropertyList {
		switch prop.Kind {
		case PropertyBoolean:
			raw := strings.ToLower(strings.TrimSpace(lastValue(values[prop.Name])))
			out[prop.Name] = raw == "on" || raw == "true" || raw == "1"
		default:
			out[prop.Name] = lastValue(values[prop.Name])
		}
	}
	return out
}

// lastValue picks the last submitted value: a hidden "false" input followed by
// a checked checkbox yields the checkbox value.
func lastValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func cloneDescriptor(src Descriptor) Descriptor {
	clone := src
	clone.PropertiesSchema = slices.Clone(src.PropertiesSchema)
	clone.PropertyList = slices.Clone(src.PropertyList)
	return clone
}
