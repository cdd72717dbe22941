package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// RenderOptions describe per-request data that renderers use to customise
// their output without mutating the design.
type RenderOptions struct {
	// Mode selects the designer surface, the runtime preview, or the
	// properties panel of the selected element.
	Mode model.Mode
	// SelectedID names the element whose properties panel is shown.
	SelectedID string
	// BasePath prefixes the designer routes that forms post to.
	BasePath string
	// Values pre-populates preview controls keyed by element ID.
	Values map[string]any
	// Errors surfaces messages keyed by element ID (preview) or by
	// "<id>.<property>" (properties panel). Use MapErrorPayload to build it
	// from arbitrary payload paths.
	Errors map[string][]string
	// FormErrors are shown above the form.
	FormErrors []string
	// Properties replaces the selected element's attributes in the properties
	// panel, used to redisplay a rejected submission.
	Properties model.Attributes
	// Hidden inputs emitted inside rendered forms.
	Hidden map[string]string
	// Theme carries the resolved go-theme configuration: partial overrides,
	// tokens and asset URLs.
	Theme *theme.RendererConfig
}

// PropertyErrors extracts the "<id>.<property>" entries of Errors for one
// element, keyed by property name.
func (o RenderOptions) PropertyErrors(id string) map[string][]string {
	prefix := id + "."
	var out map[string][]string
	for key, messages := range o.Errors {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[key[len(prefix):]] = append(out[key[len(prefix):]], messages...)
	}
	return out
}
