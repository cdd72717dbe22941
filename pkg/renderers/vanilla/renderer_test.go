package vanilla_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/render"
	"github.com/goliatone/go-formdesigner/pkg/renderers/vanilla"
	"github.com/goliatone/go-formdesigner/pkg/testsupport"
)

func sampleDesign(t *testing.T) model.Design {
	t.Helper()
	return testsupport.MustLoadDesign(t, "testdata/contact.json")
}

func newRenderer(t *testing.T, opts ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderHTML(t *testing.T, renderer *vanilla.Renderer, design model.Design, options render.RenderOptions) (string, testsupport.Node) {
	t.Helper()
	out, err := renderer.Render(context.Background(), design, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out), testsupport.MustParseHTML(t, out)
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_DesignerMode(t *testing.T) {
	renderer := newRenderer(t)
	_, doc := renderHTML(t, renderer, sampleDesign(t), render.RenderOptions{
		Mode:       model.ModeDesigner,
		SelectedID: "age",
		BasePath:   "/designer",
	})

	var palette []string
	for _, button := range doc.WithAttr("name", "type") {
		value, _ := button.Attr("value")
		palette = append(palette, value)
	}
	if diff := cmp.Diff([]string{"TextField", "NumberField", "CheckboxField"}, palette); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}
	if forms := doc.WithAttr("action", "/designer/elements"); len(forms) != 1 {
		t.Fatalf("expected one add form, got %d", len(forms))
	}

	var canvas []string
	for _, item := range doc.WithAttr("class", "fd-canvas-item") {
		id, _ := item.Attr("data-fd-element")
		canvas = append(canvas, id)
	}
	selected := doc.WithAttr("class", "fd-canvas-item fd-canvas-item--selected")
	if len(selected) != 1 {
		t.Fatalf("expected one selected item, got %d", len(selected))
	}
	if id, _ := selected[0].Attr("data-fd-element"); id != "age" {
		t.Fatalf("expected age to be selected, got %q", id)
	}
	if diff := cmp.Diff([]string{"name", "terms"}, canvas); diff != "" {
		t.Fatalf("unselected canvas items mismatch (-want +got):\n%s", diff)
	}

	for _, action := range []string{
		"/designer/elements/name/select",
		"/designer/elements/name/delete",
		"/designer/elements/terms/delete",
	} {
		if len(doc.WithAttr("action", action)) != 1 {
			t.Fatalf("expected a form posting to %s", action)
		}
	}

	panel, ok := doc.ByID("fd-panel")
	if !ok {
		t.Fatalf("expected properties panel")
	}
	if got, _ := panel.Attr("data-fd-selected"); got != "age" {
		t.Fatalf("panel selected = %q, want age", got)
	}
	form, ok := panel.ByID("fd-age-properties")
	if !ok {
		t.Fatalf("expected the selected element's properties form")
	}
	if action, _ := form.Attr("action"); action != "/designer/elements/age/properties" {
		t.Fatalf("properties action = %q", action)
	}
}

func TestRenderer_DesignerMoveControls(t *testing.T) {
	renderer := newRenderer(t)
	_, doc := renderHTML(t, renderer, sampleDesign(t), render.RenderOptions{Mode: model.ModeDesigner})

	moves := doc.WithAttr("action", "/elements/name/move")
	if len(moves) != 1 {
		t.Fatalf("first element should only move down, got %d move forms", len(moves))
	}
	if len(doc.WithAttr("action", "/elements/age/move")) != 2 {
		t.Fatalf("middle element should move both ways")
	}
	if len(doc.WithAttr("action", "/elements/terms/move")) != 1 {
		t.Fatalf("last element should only move up")
	}
}

func TestRenderer_DesignerWithoutSelection(t *testing.T) {
	renderer := newRenderer(t)
	out, doc := renderHTML(t, renderer, model.Design{}, render.RenderOptions{Mode: model.ModeDesigner, SelectedID: "missing"})

	if !strings.Contains(out, "Drop fields here") {
		t.Fatalf("expected empty canvas hint")
	}
	panel, ok := doc.ByID("fd-panel")
	if !ok {
		t.Fatalf("expected properties panel")
	}
	if !strings.Contains(panel.Text(), "Select a field to edit its properties") {
		t.Fatalf("expected empty panel hint, got %q", panel.Text())
	}
}

func TestRenderer_PreviewMode(t *testing.T) {
	renderer := newRenderer(t)
	_, doc := renderHTML(t, renderer, sampleDesign(t), render.RenderOptions{
		Mode:       model.ModePreview,
		Values:     map[string]any{"name": "Ada <Lovelace>", "terms": true},
		Errors:     map[string][]string{"age": {"must be a number"}},
		FormErrors: []string{"Please fix the errors below"},
		Hidden:     map[string]string{"_design": "contact"},
	})

	form, ok := doc.ByID("fd-preview")
	if !ok {
		t.Fatalf("expected preview form")
	}
	if id, _ := form.Attr("data-fd-design"); id != "contact" {
		t.Fatalf("unexpected design id %q", id)
	}

	name := doc.WithAttr("name", "name")
	if len(name) != 1 {
		t.Fatalf("expected one name input, got %d", len(name))
	}
	if value, _ := name[0].Attr("value"); value != "Ada <Lovelace>" {
		t.Fatalf("name value = %q", value)
	}
	if _, required := name[0].Attr("required"); !required {
		t.Fatalf("expected name to be required")
	}

	age := doc.WithAttr("name", "age")
	if len(age) != 1 {
		t.Fatalf("expected one age input, got %d", len(age))
	}
	if kind, _ := age[0].Attr("type"); kind != "number" {
		t.Fatalf("age input type = %q", kind)
	}

	checkbox := doc.WithAttr("type", "checkbox")
	if len(checkbox) != 1 {
		t.Fatalf("expected one checkbox, got %d", len(checkbox))
	}
	if _, checked := checkbox[0].Attr("checked"); !checked {
		t.Fatalf("expected terms to be checked")
	}

	alerts := doc.WithAttr("role", "alert")
	var messages []string
	for _, alert := range alerts {
		messages = append(messages, alert.Text())
	}
	if diff := cmp.Diff([]string{"Please fix the errors below", "must be a number"}, messages); diff != "" {
		t.Fatalf("alert messages mismatch (-want +got):\n%s", diff)
	}

	hidden := doc.WithAttr("name", "_design")
	if len(hidden) != 1 {
		t.Fatalf("expected hidden design input")
	}
}

func TestRenderer_PropertiesMode(t *testing.T) {
	renderer := newRenderer(t)
	_, doc := renderHTML(t, renderer, sampleDesign(t), render.RenderOptions{
		Mode:       model.ModeProperties,
		SelectedID: "name",
		BasePath:   "/designer/",
		Properties: model.Attributes{"label": "A", "placeHolder": "", "helperText": "", "required": false},
		Errors:     map[string][]string{"name.label": {"must be at least 2 characters"}},
		Hidden:     map[string]string{"_mode": "designer"},
	})

	if _, ok := doc.ByID("fd-canvas"); ok {
		t.Fatalf("properties mode must not render the canvas")
	}
	form, ok := doc.ByID("fd-name-properties")
	if !ok {
		t.Fatalf("expected properties form")
	}
	if action, _ := form.Attr("action"); action != "/designer/elements/name/properties" {
		t.Fatalf("properties action = %q", action)
	}
	label, ok := form.ByID("fd-name-label")
	if !ok {
		t.Fatalf("expected label property input")
	}
	if value, _ := label.Attr("value"); value != "A" {
		t.Fatalf("rejected label should be redisplayed, got %q", value)
	}
	if invalid, _ := label.Attr("aria-invalid"); invalid != "true" {
		t.Fatalf("expected label input to be marked invalid")
	}
	if !strings.Contains(form.Text(), "must be at least 2 characters") {
		t.Fatalf("expected label error in panel: %q", form.Text())
	}
	if len(form.WithAttr("name", "_mode")) != 1 {
		t.Fatalf("expected hidden mode input inside the properties form")
	}
}

func TestRenderer_UnknownTypeFails(t *testing.T) {
	renderer := newRenderer(t)
	design := model.Design{Elements: []model.ElementInstance{{ID: "x", Type: "Signature"}}}

	for _, mode := range []model.Mode{model.ModeDesigner, model.ModePreview} {
		_, err := renderer.Render(context.Background(), design, render.RenderOptions{Mode: mode})
		if !errors.Is(err, elements.ErrUnknownType) {
			t.Fatalf("mode %s: expected ErrUnknownType, got %v", mode, err)
		}
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	renderer := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := renderer.Render(ctx, sampleDesign(t), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_ThemePartialOverride(t *testing.T) {
	files := fstest.MapFS{
		"preview.tmpl":          {Data: []byte(`{% for field in fields %}{{ field|safe }}{% endfor %}`)},
		"themes/text_form.tmpl": {Data: []byte(`<span class="themed">{{ attrs.label }}</span>`)},
	}
	renderer := newRenderer(t, vanilla.WithTemplatesFS(files))

	out, err := renderer.Render(context.Background(), sampleDesign(t), render.RenderOptions{
		Mode: model.ModePreview,
		Theme: &theme.RendererConfig{
			Theme:    "custom",
			Partials: map[string]string{elements.PartialKey("TextField", "form"): "themes/text_form.tmpl"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `<span class="themed">Full name</span>`) {
		t.Fatalf("expected themed TextField partial, got:\n%s", out)
	}
	if !strings.Contains(string(out), `name="age"`) {
		t.Fatalf("expected bundled NumberField view alongside the override")
	}
}

func TestRenderer_ThemeAttributes(t *testing.T) {
	renderer := newRenderer(t)
	_, doc := renderHTML(t, renderer, sampleDesign(t), render.RenderOptions{
		Theme: &theme.RendererConfig{Theme: "formdesigner", Variant: "dark"},
	})
	root, ok := doc.ByID("fd-designer")
	if !ok {
		t.Fatalf("expected designer root")
	}
	if got, _ := root.Attr("data-fd-variant"); got != "dark" {
		t.Fatalf("variant attribute = %q", got)
	}
}

func TestPropertiesAction(t *testing.T) {
	cases := []struct {
		base, id, want string
	}{
		{"", "f1", "/elements/f1/properties"},
		{"/", "f1", "/elements/f1/properties"},
		{"designer/", "f1", "/designer/elements/f1/properties"},
		{"/designer", "a b/c", "/designer/elements/a%20b%2Fc/properties"},
	}
	for _, tc := range cases {
		if got := vanilla.PropertiesAction(tc.base, tc.id); got != tc.want {
			t.Fatalf("PropertiesAction(%q, %q) = %q, want %q", tc.base, tc.id, got, tc.want)
		}
	}
}

func TestAssetsFS(t *testing.T) {
	for _, name := range []string{vanilla.StylesheetName, vanilla.ScriptName} {
		data, err := fs.ReadFile(vanilla.AssetsFS(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
	script, _ := fs.ReadFile(vanilla.AssetsFS(), vanilla.ScriptName)
	if !strings.Contains(string(script), "data-fd-autosubmit") {
		t.Fatalf("script should bind auto-submitting properties forms")
	}
}
