package elements

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// Registry tracks element descriptors keyed by type. Types keeps registration
// order so the designer palette is stable.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[model.ElementType]Descriptor
	order       []model.ElementType
}

var _ model.Builder = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[model.ElementType]Descriptor),
	}
}

// Register adds a descriptor. Registering the same type twice is an error;
// descriptors are static for the life of the process.
func (r *Registry) Register(descriptor Descriptor) error {
	descriptor.Type = model.ElementType(strings.TrimSpace(string(descriptor.Type)))
	if err := descriptor.validate(); err != nil {
		return err
	}
	descriptor.DesignerButton.Icon = SanitizeIcon(descriptor.DesignerButton.Icon)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[descriptor.Type]; exists {
		return fmt.Errorf("elements: type %q already registered", descriptor.Type)
	}
	r.descriptors[descriptor.Type] = cloneDescriptor(descriptor)
	r.order = append(r.order, descriptor.Type)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying init-time
// wiring.
func (r *Registry) MustRegister(descriptor Descriptor) {
	if err := r.Register(descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by type.
func (r *Registry) Descriptor(elementType model.ElementType) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.descriptors[elementType]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Lookup is Descriptor with an ErrUnknownType error for missing types.
func (r *Registry) Lookup(elementType model.ElementType) (Descriptor, error) {
	descriptor, ok := r.Descriptor(elementType)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownType, elementType)
	}
	return descriptor, nil
}

// Known reports whether a type is registered.
func (r *Registry) Known(elementType model.ElementType) bool {
	_, ok := r.Descriptor(elementType)
	return ok
}

// CheckType returns ErrUnknownType for unregistered types. It satisfies the
// designer's type checker hook.
func (r *Registry) CheckType(elementType model.ElementType) error {
	_, err := r.Lookup(elementType)
	return err
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []model.ElementType {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ElementType(nil), r.order...)
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []Descriptor {
	types := r.Types()
	out := make([]Descriptor, 0, len(types))
	for _, elementType := range types {
		if descriptor, ok := r.Descriptor(elementType); ok {
			out = append(out, descriptor)
		}
	}
	return out
}

// Construct builds a new instance of the given type.
func (r *Registry) Construct(elementType model.ElementType, id string) (model.ElementInstance, error) {
	descriptor, err := r.Lookup(elementType)
	if err != nil {
		return model.ElementInstance{}, err
	}
	if strings.TrimSpace(id) == "" {
		return model.ElementInstance{}, fmt.Errorf("elements: construct %s: id is required", elementType)
	}
	return descriptor.Construct(id), nil
}

// Render writes the view of instance matching mode.
func (r *Registry) Render(buf *bytes.Buffer, mode model.Mode, instance model.ElementInstance, data ComponentData) error {
	descriptor, err := r.Lookup(instance.Type)
	if err != nil {
		return err
	}
	if err := descriptor.View(mode)(buf, instance, data); err != nil {
		return fmt.Errorf("elements: render %s %s view of %q: %w", instance.Type, mode, instance.ID, err)
	}
	return nil
}

// Build derives a form model from a design, one field per element. Every
// element type must be registered.
func (r *Registry) Build(design model.Design) (model.FormModel, error) {
	form := model.FormModel{
		ID:          design.ID,
		Name:        design.Name,
		Description: design.Description,
		Fields:      make([]model.Field, 0, len(design.Elements)),
	}
	for _, instance := range design.Elements {
		descriptor, err := r.Lookup(instance.Type)
		if err != nil {
			return model.FormModel{}, fmt.Errorf("elements: build field %q: %w", instance.ID, err)
		}
		field := descriptor.Field(instance.Clone())
		field.Name = instance.ID
		field.Element = instance.Type
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}
