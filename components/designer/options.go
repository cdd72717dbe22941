package designer

import (
	"context"
	"net/http"

	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/orchestrator"
	"github.com/goliatone/go-formdesigner/pkg/properties"
	"github.com/goliatone/go-formdesigner/pkg/shell"
)

// DefaultRoutePath is where the component mounts under the base path.
const DefaultRoutePath = "/designer"

// FetchHeader marks requests issued by the designer script. They are answered
// with fragments or empty bodies instead of redirects.
const FetchHeader = "X-Requested-With"

type GuardFunc func(r *http.Request) error

// Layout wraps rendered fragments into a full page. *shell.Shell satisfies it.
type Layout interface {
	RenderPage(ctx context.Context, page shell.Page) (string, error)
}

type Options struct {
	RoutePath string
	Title     string
	Guard     GuardFunc

	Orchestrator *orchestrator.Orchestrator
	Editor       *properties.Editor
	Layout       Layout
	Export       export.Options
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath: DefaultRoutePath,
		Title:     shell.DefaultTitle,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.Title == "" {
		opts.Title = shell.DefaultTitle
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithTitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Title = title
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithOrchestrator sets the orchestrator rendering pages and deriving form
// models. Its element registry also drives the palette and the editor.
func WithOrchestrator(orch *orchestrator.Orchestrator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Orchestrator = orch
	}
}

func WithEditor(editor *properties.Editor) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Editor = editor
	}
}

// WithLayout sets the page layout. Without one, pages are served as bare
// fragments.
func WithLayout(layout Layout) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Layout = layout
	}
}

func WithExportOptions(export export.Options) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Export = export
	}
}
