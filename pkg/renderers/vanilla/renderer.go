package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/elements/builtin"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/render"
	rendertemplate "github.com/goliatone/go-formdesigner/pkg/render/template"
	gotemplate "github.com/goliatone/go-formdesigner/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	elements         *elements.Registry
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation. It
// also renders theme partials that override element views.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithElements sets the element registry used to render element views and
// the palette. Defaults to the built-in field types.
func WithElements(registry *elements.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.elements = registry
		}
	}
}

// Renderer produces the HTML fragments of the designer: the designer surface
// (palette, canvas, properties panel), the preview form and the properties
// panel on its own.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	elements  *elements.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.elements == nil {
		cfg.elements = builtin.Registry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithSetName("vanilla"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, elements: cfg.elements}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the fragment for options.Mode. Elements whose type is not
// registered fail the render with elements.ErrUnknownType.
func (r *Renderer) Render(ctx context.Context, design model.Design, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		name string
		data map[string]any
		err  error
	)
	switch options.Mode {
	case model.ModePreview:
		name = "preview"
		data, err = r.previewData(design, options)
	case model.ModeProperties:
		name = "properties"
		data, err = r.propertiesData(design, options)
	default:
		name = "designer"
		data, err = r.designerData(design, options)
	}
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) designerData(design model.Design, options render.RenderOptions) (map[string]any, error) {
	descriptors := r.elements.Descriptors()
	palette := make([]map[string]any, 0, len(descriptors))
	for _, descriptor := range descriptors {
		palette = append(palette, map[string]any{
			"type":  string(descriptor.Type),
			"label": descriptor.DesignerButton.Label,
			"icon":  descriptor.DesignerButton.Icon,
		})
	}

	last := len(design.Elements) - 1
	items := make([]map[string]any, 0, len(design.Elements))
	for idx, instance := range design.Elements {
		markup, err := r.element(model.ModeDesigner, instance, r.componentData(options))
		if err != nil {
			return nil, err
		}
		items = append(items, map[string]any{
			"id":       instance.ID,
			"type":     string(instance.Type),
			"index":    idx,
			"html":     markup,
			"selected": instance.ID == options.SelectedID,
			"select":   routePath(options.BasePath, "elements", instance.ID, "select"),
			"delete":   routePath(options.BasePath, "elements", instance.ID, "delete"),
			"move":     routePath(options.BasePath, "elements", instance.ID, "move"),
			"up":       moveTarget(idx, -1, last),
			"down":     moveTarget(idx, 1, last),
		})
	}

	panel, err := r.panel(design, options)
	if err != nil {
		return nil, err
	}

	data := r.baseData(design, options)
	data["palette"] = palette
	data["add_action"] = routePath(options.BasePath, "elements")
	data["items"] = items
	data["panel"] = panel
	return data, nil
}

func (r *Renderer) previewData(design model.Design, options render.RenderOptions) (map[string]any, error) {
	fields := make([]string, 0, len(design.Elements))
	for _, instance := range design.Elements {
		data := r.componentData(options)
		data.Value = options.Values[instance.ID]
		data.Errors = options.Errors[instance.ID]
		markup, err := r.element(model.ModePreview, instance, data)
		if err != nil {
			return nil, err
		}
		fields = append(fields, markup)
	}

	data := r.baseData(design, options)
	data["fields"] = fields
	if options.BasePath != "" {
		data["submit_action"] = routePath(options.BasePath, "preview")
	}
	return data, nil
}

func (r *Renderer) propertiesData(design model.Design, options render.RenderOptions) (map[string]any, error) {
	panel, err := r.panel(design, options)
	if err != nil {
		return nil, err
	}
	data := r.baseData(design, options)
	data["panel"] = panel
	return data, nil
}

// panel renders the properties view of the selected element, or "" when no
// element of the design is selected.
func (r *Renderer) panel(design model.Design, options render.RenderOptions) (string, error) {
	instance, ok := design.Element(options.SelectedID)
	if options.SelectedID == "" || !ok {
		return "", nil
	}
	data := r.componentData(options)
	data.Properties = options.Properties
	data.PropertyErrors = options.PropertyErrors(instance.ID)
	data.Action = PropertiesAction(options.BasePath, instance.ID)
	data.Hidden = options.Hidden
	return r.element(model.ModeProperties, instance, data)
}

func (r *Renderer) element(mode model.Mode, instance model.ElementInstance, data elements.ComponentData) (string, error) {
	var buf bytes.Buffer
	if err := r.elements.Render(&buf, mode, instance, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) componentData(options render.RenderOptions) elements.ComponentData {
	data := elements.ComponentData{Template: r.templates}
	if options.Theme != nil {
		data.Partials = options.Theme.Partials
	}
	return data
}

func (r *Renderer) baseData(design model.Design, options render.RenderOptions) map[string]any {
	themeName, variant := "", ""
	if options.Theme != nil {
		themeName, variant = options.Theme.Theme, options.Theme.Variant
	}
	hidden := options.Hidden
	if hidden == nil {
		hidden = map[string]string{}
	}
	return map[string]any{
		"design": map[string]any{
			"id":   design.ID,
			"name": design.Name,
		},
		"empty":       len(design.Elements) == 0,
		"selected_id": options.SelectedID,
		"form_errors": options.FormErrors,
		"hidden":      render.SortedHiddenFields(hidden),
		"classes":     chromeClasses(),
		"theme":       themeName,
		"variant":     variant,
	}
}

// moveTarget returns the index an element moves to, or "" when the move would
// leave the canvas.
func moveTarget(idx, delta, last int) string {
	target := idx + delta
	if target < 0 || target > last {
		return ""
	}
	return strconv.Itoa(target)
}
