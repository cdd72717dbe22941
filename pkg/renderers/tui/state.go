package tui

import "maps"

// State tracks answers and server-provided errors keyed by element ID.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	state := &State{
		values: make(map[string]any, len(prefill)),
		errors: make(map[string][]string, len(errs)),
	}
	maps.Copy(state.values, prefill)
	for key, messages := range errs {
		state.errors[key] = append([]string(nil), messages...)
	}
	return state
}

// Values returns the collected answers.
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to an element.
func (s *State) ErrorsFor(id string) []string {
	if s == nil {
		return nil
	}
	return s.errors[id]
}

// Value returns the prefilled or answered value of an element.
func (s *State) Value(id string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[id]
	return value, ok
}

// Set records an answer.
func (s *State) Set(id string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[id] = value
}

// Clear drops an answer, used for optional fields left blank.
func (s *State) Clear(id string) {
	delete(s.values, id)
}
