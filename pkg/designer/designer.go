// Package designer holds the design context: the ordered element instances of
// the form under construction plus the element selected for editing.
package designer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// TypeChecker rejects element types that have no registered descriptor.
// *elements.Registry satisfies it.
type TypeChecker interface {
	CheckType(model.ElementType) error
}

// Option configures a Designer.
type Option func(*Designer)

// WithTypeChecker validates element types on add and update.
func WithTypeChecker(checker TypeChecker) Option {
	return func(d *Designer) {
		d.types = checker
	}
}

// WithDesign seeds the designer with a design document.
func WithDesign(design model.Design) Option {
	return func(d *Designer) {
		d.seed = &design
	}
}

// Designer is safe for concurrent use.
type Designer struct {
	mu       sync.RWMutex
	id       string
	name     string
	desc     string
	elements []model.ElementInstance
	selected string
	types    TypeChecker
	seed     *model.Design
}

// New builds a designer. A seed design that fails the type check or carries
// duplicate IDs is an error.
func New(opts ...Option) (*Designer, error) {
	d := &Designer{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	if d.seed != nil {
		seed := d.seed.Clone()
		d.seed = nil
		d.id, d.name, d.desc = seed.ID, seed.Name, seed.Description
		for _, instance := range seed.Elements {
			if err := d.AddElement(len(d.elements), instance); err != nil {
				return nil, fmt.Errorf("designer: seed: %w", err)
			}
		}
	}
	return d, nil
}

// NewElementID returns a fresh identifier for an element instance.
func NewElementID() string {
	return uuid.NewString()
}

// AddElement inserts instance at index, clamped to [0, len].
func (d *Designer) AddElement(index int, instance model.ElementInstance) error {
	if strings.TrimSpace(instance.ID) == "" {
		return fmt.Errorf("designer: add element: id is required")
	}
	if err := d.checkType(instance.Type); err != nil {
		return fmt.Errorf("designer: add element %q: %w", instance.ID, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOf(instance.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateElement, instance.ID)
	}
	index = min(max(index, 0), len(d.elements))
	d.elements = append(d.elements, model.ElementInstance{})
	copy(d.elements[index+1:], d.elements[index:])
	d.elements[index] = instance.Clone()
	return nil
}

// RemoveElement drops the element with id. The selection is cleared when it
// pointed at the removed element.
func (d *Designer) RemoveElement(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	d.elements = append(d.elements[:idx], d.elements[idx+1:]...)
	if d.selected == id {
		d.selected = ""
	}
	return nil
}

// UpdateElement replaces the element with id in place. instance.ID must equal
// id; the type may not change to an unregistered one.
func (d *Designer) UpdateElement(id string, instance model.ElementInstance) error {
	if instance.ID != id {
		return fmt.Errorf("designer: update element %q: instance id %q does not match", id, instance.ID)
	}
	if err := d.checkType(instance.Type); err != nil {
		return fmt.Errorf("designer: update element %q: %w", id, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	d.elements[idx] = instance.Clone()
	return nil
}

// MoveElement repositions the element with id to index, clamped to the list.
func (d *Designer) MoveElement(id string, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	instance := d.elements[idx]
	d.elements = append(d.elements[:idx], d.elements[idx+1:]...)
	index = min(max(index, 0), len(d.elements))
	d.elements = append(d.elements, model.ElementInstance{})
	copy(d.elements[index+1:], d.elements[index:])
	d.elements[index] = instance
	return nil
}

// SetSelectedElement selects the element with id. An empty id clears the
// selection.
func (d *Designer) SetSelectedElement(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id == "" {
		d.selected = ""
		return nil
	}
	if d.indexOf(id) < 0 {
		return fmt.Errorf("%w: %q", ErrElementNotFound, id)
	}
	d.selected = id
	return nil
}

// SelectedElement returns the current state of the selected element, so an
// update is visible through it immediately.
func (d *Designer) SelectedElement() (model.ElementInstance, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.selected == "" {
		return model.ElementInstance{}, false
	}
	idx := d.indexOf(d.selected)
	if idx < 0 {
		return model.ElementInstance{}, false
	}
	return d.elements[idx].Clone(), true
}

// Element returns a copy of the element with id.
func (d *Designer) Element(id string) (model.ElementInstance, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.indexOf(id)
	if idx < 0 {
		return model.ElementInstance{}, false
	}
	return d.elements[idx].Clone(), true
}

// Elements returns a deep copy of the ordered element list.
func (d *Designer) Elements() []model.ElementInstance {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.copyElements()
}

// Len reports how many elements the design holds.
func (d *Designer) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.elements)
}

// Snapshot returns the design document for the current state.
func (d *Designer) Snapshot() model.Design {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return model.Design{
		ID:          d.id,
		Name:        d.name,
		Description: d.desc,
		Elements:    d.copyElements(),
	}
}

// Reset replaces the whole element list and clears the selection.
func (d *Designer) Reset(design model.Design) error {
	fresh, err := New(WithTypeChecker(d.types), WithDesign(design))
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.id, d.name, d.desc = fresh.id, fresh.name, fresh.desc
	d.elements = fresh.elements
	d.selected = ""
	return nil
}

func (d *Designer) checkType(elementType model.ElementType) error {
	if d.types == nil {
		return nil
	}
	return d.types.CheckType(elementType)
}

func (d *Designer) copyElements() []model.ElementInstance {
	out := make([]model.ElementInstance, len(d.elements))
	for idx, element := range d.elements {
		out[idx] = element.Clone()
	}
	return out
}

func (d *Designer) indexOf(id string) int {
	for idx, element := range d.elements {
		if element.ID == id {
			return idx
		}
	}
	return -1
}
