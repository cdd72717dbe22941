package elements

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/render/template/gotemplate"
)

//go:embed templates/chrome/*.tmpl
var chromeFiles embed.FS

// ChromeFS exposes the shared field chrome (label, helper text, messages,
// property controls) under "chrome/".
func ChromeFS() fs.FS {
	sub, err := fs.Sub(chromeFiles, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Views renders a plugin's designer, form and properties templates. Plugin
// templates live at the root of the supplied FS and may include the shared
// chrome templates as "chrome/<name>.tmpl".
type Views struct {
	elementType model.ElementType
	files       fs.FS

	once   sync.Once
	engine *gotemplate.Engine
	err    error
}

// NewViews prepares the template views for a plugin. The engine is built on
// first render.
func NewViews(elementType model.ElementType, files fs.FS) *Views {
	return &Views{elementType: elementType, files: files}
}

// PartialKey names the theme partial that overrides one view of a type, e.g.
// "TextField.designer".
func PartialKey(elementType model.ElementType, view string) string {
	return string(elementType) + "." + view
}

// Designer, Form and Properties return the renderers for the three views.
func (v *Views) Designer() Renderer { return v.view("designer") }
func (v *Views) Form() Renderer { return v.view("form") }
func (v *Views) Properties() Renderer { return v.view("properties") }

func (v *Views) view(name string) Renderer {
	partialKey := PartialKey(v.elementType, name)
	return func(buf *bytes.Buffer, instance model.ElementInstance, data ComponentData) error {
		if buf == nil {
			return errors.New("elements: nil buffer")
		}
		payload := viewData(instance, data)

		if override := strings.TrimSpace(data.Partials[partialKey]); override != "" && data.Template != nil {
			if _, err := data.Template.RenderTemplate(override, payload, buf); err != nil {
				return fmt.Errorf("elements: partial %q: %w", override, err)
			}
			return nil
		}

		engine, err := v.load()
		if err != nil {
			return err
		}
		if _, err := engine.RenderTemplate(name, payload, buf); err != nil {
			return fmt.Errorf("elements: %s %s view: %w", v.elementType, name, err)
		}
		return nil
	}
}

func (v *Views) load() (*gotemplate.Engine, error) {
	v.once.Do(func() {
		v.engine, v.err = gotemplate.New(
			gotemplate.WithFS(overlayFS{plugin: v.files, chrome: ChromeFS()}),
			gotemplate.WithSetName("elements-"+strings.ToLower(string(v.elementType))),
		)
	})
	return v.engine, v.err
}

func viewData(instance model.ElementInstance, data ComponentData) map[string]any {
	attrs := instance.ExtraAttributes
	if attrs == nil {
		attrs = model.Attributes{}
	}
	props := data.Properties
	if props == nil {
		props = attrs
	}
	propErrors := data.PropertyErrors
	if propErrors == nil {
		propErrors = map[string][]string{}
	}
	hidden := data.Hidden
	if hidden == nil {
		hidden = map[string]string{}
	}
	return map[string]any{
		"id":             instance.ID,
		"type":           string(instance.Type),
		"attrs":          map[string]any(attrs.Clone()),
		"props":          map[string]any(props.Clone()),
		"prop_errors":    propErrors,
		"value":          data.Value,
		"checked":        model.Attributes{"value": data.Value}.Bool("value"),
		"errors":         data.Errors,
		"action":         data.Action,
		"hidden":         hidden,
		"required":       attrs.Bool("required"),
		"props_required": props.Bool("required"),
	}
}

// overlayFS serves "chrome/..." from the shared chrome and everything else
// from the plugin.
type overlayFS struct {
	plugin fs.FS
	chrome fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if strings.HasPrefix(name, "chrome/") {
		return o.chrome.Open(name)
	}
	if o.plugin == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return o.plugin.Open(name)
}
