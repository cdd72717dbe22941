// Package builtin registers the element types shipped with formdesigner.
package builtin

import (
	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/elements/checkboxfield"
	"github.com/goliatone/go-formdesigner/pkg/elements/numberfield"
	"github.com/goliatone/go-formdesigner/pkg/elements/textfield"
)

// Descriptors returns the built-in descriptors in palette order.
func Descriptors() []elements.Descriptor {
	return []elements.Descriptor{
		textfield.Descriptor(),
		numberfield.Descriptor(),
		checkboxfield.Descriptor(),
	}
}

// Register adds every built-in descriptor to registry.
func Register(registry *elements.Registry) error {
	for _, descriptor := range Descriptors() {
		if err := registry.Register(descriptor); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns a new registry holding the built-in types.
func Registry() *elements.Registry {
	registry := elements.NewRegistry()
	if err := Register(registry); err != nil {
		panic(err)
	}
	return registry
}
