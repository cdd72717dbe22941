// Package formdesigner is the top-level entry point for embedding the form
// designer. It re-exports the constructors most callers need so a quick start
// only imports this package.
package formdesigner

import (
	"context"
	"io/fs"
	"net/http"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdesigner/components/designer"
	"github.com/goliatone/go-formdesigner/pkg/designdoc"
	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/elements/builtin"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/orchestrator"
	"github.com/goliatone/go-formdesigner/pkg/render"
	"github.com/goliatone/go-formdesigner/pkg/renderers/vanilla"
)

// Design is the document form of a designed form.
type Design = model.Design

// RenderOptions describes per-request overrides such as the view mode,
// prefilled values and server-side errors.
type RenderOptions = render.RenderOptions

// Elements returns a registry holding the built-in field types.
func Elements() *elements.Registry {
	return builtin.Registry()
}

// NewOrchestrator exposes the orchestrator constructor.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader returns a design document loader that rejects element types
// missing from the built-in registry.
func NewLoader(options ...designdoc.Option) *designdoc.Loader {
	options = append([]designdoc.Option{designdoc.WithTypeChecker(Elements())}, options...)
	return designdoc.New(options...)
}

// RenderFile loads the design at path and renders it in mode with the default
// HTML renderer.
func RenderFile(ctx context.Context, path string, mode model.Mode, options ...orchestrator.Option) ([]byte, error) {
	design, err := NewLoader().Load(ctx, designdoc.SourceFromFile(path))
	if err != nil {
		return nil, err
	}
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Design:        design,
		RenderOptions: render.RenderOptions{Mode: mode},
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// Handler builds the designer HTTP handler. It must be served behind a shell
// (see pkg/shell) so requests carry a design context.
func Handler(options ...designer.OptionFn) (http.Handler, error) {
	return designer.Handler(options...)
}

// EmbeddedTemplates exposes the built-in designer, preview and properties
// templates so callers can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and browser script referenced by the
// layout.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formdesigner.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
