package model

import (
	"maps"
	"strings"
)

// ElementType tags an element instance with the plugin that owns it.
type ElementType string

// Attributes holds the type-specific configuration of an element instance
// (label, placeHolder, helperText, required, ...).
type Attributes map[string]any

// ElementInstance is a placed field in a design. ID is unique within the
// design it belongs to.
type ElementInstance struct {
	ID              string      `json:"id" yaml:"id" toml:"id"`
	Type            ElementType `json:"type" yaml:"type" toml:"type"`
	ExtraAttributes Attributes  `json:"extraAttributes,omitempty" yaml:"extraAttributes,omitempty" toml:"extraAttributes,omitempty"`
}

// Design is the document form of the design context: the ordered elements
// composing a form.
type Design struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Elements    []ElementInstance `json:"elements" yaml:"elements" toml:"elements"`
}

// Mode selects which view of a design a renderer produces.
type Mode string

const (
	ModeDesigner   Mode = "designer"
	ModePreview    Mode = "preview"
	ModeProperties Mode = "properties"
)

// ParseMode normalises a user supplied mode, falling back to ModeDesigner.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModePreview:
		return ModePreview
	case ModeProperties:
		return ModeProperties
	default:
		return ModeDesigner
	}
}

// Clone returns a copy of the instance whose attribute map can be mutated
// without affecting the original.
func (e ElementInstance) Clone() ElementInstance {
	e.ExtraAttributes = e.ExtraAttributes.Clone()
	return e
}

// Clone copies the attribute map. Values are copied shallowly; attributes are
// expected to hold scalars.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// String returns the attribute as a string, or "" when absent or not a string.
func (a Attributes) String(key string) string {
	if value, ok := a[key].(string); ok {
		return value
	}
	return ""
}

// Bool returns the attribute as a bool. Strings "true"/"on"/"1" count as true
// so documents decoded from loose formats behave the same.
func (a Attributes) Bool(key string) bool {
	switch value := a[key].(type) {
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}

// Clone deep copies the design.
func (d Design) Clone() Design {
	out := d
	if d.Elements != nil {
		out.Elements = make([]ElementInstance, len(d.Elements))
		for idx, element := range d.Elements {
			out.Elements[idx] = element.Clone()
		}
	}
	return out
}

// Element finds an element by ID.
func (d Design) Element(id string) (ElementInstance, bool) {
	for _, element := range d.Elements {
		if element.ID == id {
			return element, true
		}
	}
	return ElementInstance{}, false
}
