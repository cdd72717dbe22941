package designer

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdesigner/pkg/auth"
	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/shell"
	"github.com/goliatone/go-formdesigner/pkg/testsupport"
)

// client replays the session cookie across requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, fns ...OptionFn) *client {
	t.Helper()
	sh, err := shell.New()
	if err != nil {
		t.Fatalf("new shell: %v", err)
	}
	mux := http.NewServeMux()
	fns = append([]OptionFn{WithLayout(sh)}, fns...)
	if _, err := RegisterRoutes(mux, "", fns...); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return &client{t: t, handler: sh.Wrap(mux), cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values, fetch bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if fetch {
		req.Header.Set(FetchHeader, "fetch")
	}
	return c.do(req)
}

func (c *client) design() model.Design {
	c.t.Helper()
	rec := c.get("/designer/design.json")
	if rec.Code != http.StatusOK {
		c.t.Fatalf("design.json: status %d", rec.Code)
	}
	var design model.Design
	if err := json.NewDecoder(rec.Body).Decode(&design); err != nil {
		c.t.Fatalf("decode design: %v", err)
	}
	return design
}

func (c *client) add(elementType string) string {
	c.t.Helper()
	rec := c.post("/designer/elements", url.Values{"type": {elementType}}, true)
	if rec.Code != http.StatusNoContent {
		c.t.Fatalf("add %s: status %d", elementType, rec.Code)
	}
	elements := c.design().Elements
	return elements[len(elements)-1].ID
}

func TestDesignerPage_RendersPaletteAndEmptyCanvas(t *testing.T) {
	c := newClient(t)
	rec := c.get("/designer/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}

	doc := testsupport.MustParseHTML(t, rec.Body.Bytes())
	if _, ok := doc.ByID("fd-main"); !ok {
		t.Fatalf("expected the shell layout")
	}
	if _, ok := doc.ByID("fd-designer"); !ok {
		t.Fatalf("designer surface missing")
	}
	for _, elementType := range []string{"TextField", "NumberField", "CheckboxField"} {
		if got := doc.WithAttr("data-fd-type", elementType); len(got) != 1 {
			t.Fatalf("palette button %s missing", elementType)
		}
	}
	canvas, _ := doc.ByID("fd-canvas")
	if !strings.Contains(canvas.Text(), "Drop fields here") {
		t.Fatalf("expected empty canvas hint, got %q", canvas.Text())
	}
}

func TestDesignerPage_RedirectsBareRoute(t *testing.T) {
	c := newClient(t)
	rec := c.get("/designer")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}

func TestAddElement_PlainPostRedirectsAndSelects(t *testing.T) {
	c := newClient(t)
	rec := c.post("/designer/elements", url.Values{"type": {"TextField"}}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/designer/" {
		t.Fatalf("unexpected location %q", loc)
	}

	design := c.design()
	if len(design.Elements) != 1 || design.Elements[0].Type != "TextField" {
		t.Fatalf("unexpected elements %+v", design.Elements)
	}
	if label := design.Elements[0].ExtraAttributes.String("label"); label != "Text field" {
		t.Fatalf("expected default label, got %q", label)
	}

	doc := testsupport.MustParseHTML(t, c.get("/designer/").Body.Bytes())
	panel, ok := doc.ByID("fd-panel")
	if !ok {
		t.Fatalf("panel missing")
	}
	if selected, _ := panel.Attr("data-fd-selected"); selected != design.Elements[0].ID {
		t.Fatalf("new element should be selected, got %q", selected)
	}
	host, _ := doc.ByID("fd-toasts")
	if !strings.Contains(host.Text(), "Field added") {
		t.Fatalf("expected toast, got %q", host.Text())
	}
}

func TestAddElement_HonoursIndex(t *testing.T) {
	c := newClient(t)
	c.add("TextField")
	c.add("NumberField")
	rec := c.post("/designer/elements", url.Values{"type": {"CheckboxField"}, "index": {"0"}}, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	var types []model.ElementType
	for _, instance := range c.design().Elements {
		types = append(types, instance.Type)
	}
	want := []model.ElementType{"CheckboxField", "TextField", "NumberField"}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddElement_Rejects(t *testing.T) {
	c := newClient(t)
	cases := map[string]url.Values{
		"unknown type": {"type": {"DateField"}},
		"bad index":    {"type": {"TextField"}, "index": {"first"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			if rec := c.post("/designer/elements", form, false); rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
	if n := len(c.design().Elements); n != 0 {
		t.Fatalf("rejected adds must not change the design, got %d elements", n)
	}
}

func TestElementActions_UnknownIDIsNotFound(t *testing.T) {
	c := newClient(t)
	for _, action := range []string{"select", "delete", "properties"} {
		rec := c.post("/designer/elements/missing/"+action, url.Values{"label": {"Name"}}, false)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", action, rec.Code)
		}
	}
	if rec := c.post("/designer/elements/missing/move", url.Values{"index": {"0"}}, false); rec.Code != http.StatusNotFound {
		t.Fatalf("move: expected 404, got %d", rec.Code)
	}
}

func TestSelectElement_FetchReturnsPanel(t *testing.T) {
	c := newClient(t)
	first := c.add("TextField")
	c.add("NumberField")

	rec := c.post("/designer/elements/"+first+"/select", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := testsupport.MustParseHTML(t, rec.Body.Bytes())
	if _, ok := doc.ByID("fd-main"); ok {
		t.Fatalf("fetch responses must not include the layout")
	}
	panel, ok := doc.ByID("fd-panel")
	if !ok {
		t.Fatalf("panel missing")
	}
	if selected, _ := panel.Attr("data-fd-selected"); selected != first {
		t.Fatalf("expected %s selected, got %q", first, selected)
	}
}

func TestDeleteElement(t *testing.T) {
	c := newClient(t)
	id := c.add("TextField")
	if rec := c.post("/designer/elements/"+id+"/delete", nil, false); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if n := len(c.design().Elements); n != 0 {
		t.Fatalf("expected empty design, got %d elements", n)
	}
}

func TestMoveElement(t *testing.T) {
	c := newClient(t)
	first := c.add("TextField")
	second := c.add("NumberField")

	if rec := c.post("/designer/elements/"+second+"/move", url.Values{"index": {"0"}}, true); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	var ids []string
	for _, instance := range c.design().Elements {
		ids = append(ids, instance.ID)
	}
	if diff := cmp.Diff([]string{second, first}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if rec := c.post("/designer/elements/"+first+"/move", nil, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing index: expected 400, got %d", rec.Code)
	}
}

func TestSaveProperties_FetchRejectsShortLabel(t *testing.T) {
	c := newClient(t)
	id := c.add("TextField")

	rec := c.post("/designer/elements/"+id+"/properties", url.Values{
		"label":       {"A"},
		"placeHolder": {"Value here..."},
		"helperText":  {"Helper text"},
	}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	doc := testsupport.MustParseHTML(t, rec.Body.Bytes())
	if _, ok := doc.ByID("fd-panel"); !ok {
		t.Fatalf("expected the properties panel")
	}
	if invalid := doc.WithAttr("aria-invalid", "true"); len(invalid) != 1 {
		t.Fatalf("expected the label input flagged, got %d", len(invalid))
	}
	if !strings.Contains(doc.Text(), "must be at least 2 characters") {
		t.Fatalf("expected length message, got %q", doc.Text())
	}
	if values := doc.WithAttr("value", "A"); len(values) != 1 {
		t.Fatalf("rejected value should be redisplayed")
	}

	if label := c.design().Elements[0].ExtraAttributes.String("label"); label != "Text field" {
		t.Fatalf("rejected submission must not update the element, got %q", label)
	}
}

func TestSaveProperties_PlainPostSaves(t *testing.T) {
	c := newClient(t)
	id := c.add("TextField")

	rec := c.post("/designer/elements/"+id+"/properties", url.Values{
		"label":       {"Email <b>address</b>"},
		"placeHolder": {"you@example.com"},
		"helperText":  {""},
		"required":    {"on"},
	}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	attrs := c.design().Elements[0].ExtraAttributes
	want := model.Attributes{
		"label":       "Email address",
		"placeHolder": "you@example.com",
		"helperText":  "",
		"required":    true,
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}

	host, _ := testsupport.MustParseHTML(t, c.get("/designer/").Body.Bytes()).ByID("fd-toasts")
	if !strings.Contains(host.Text(), "Properties saved") {
		t.Fatalf("expected save toast, got %q", host.Text())
	}
}

func TestSaveProperties_PlainPostRedisplaysPage(t *testing.T) {
	c := newClient(t)
	id := c.add("TextField")

	rec := c.post("/designer/elements/"+id+"/properties", url.Values{"label": {""}}, false)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	doc := testsupport.MustParseHTML(t, rec.Body.Bytes())
	if _, ok := doc.ByID("fd-designer"); !ok {
		t.Fatalf("expected the full designer page")
	}
	if invalid := doc.WithAttr("aria-invalid", "true"); len(invalid) == 0 {
		t.Fatalf("expected invalid inputs")
	}
}

func TestPreview_SubmitChecksAnswers(t *testing.T) {
	c := newClient(t)
	id := c.add("TextField")
	c.post("/designer/elements/"+id+"/properties", url.Values{
		"label":       {"Name"},
		"placeHolder": {""},
		"helperText":  {""},
		"required":    {"on"},
	}, false)

	rec := c.get("/designer/preview")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	form, ok := testsupport.MustParseHTML(t, rec.Body.Bytes()).ByID("fd-preview")
	if !ok {
		t.Fatalf("preview form missing")
	}
	if action, _ := form.Attr("action"); action != "/designer/preview" {
		t.Fatalf("unexpected preview action %q", action)
	}

	rec = c.post("/designer/preview", url.Values{id: {""}}, false)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	doc := testsupport.MustParseHTML(t, rec.Body.Bytes())
	if !strings.Contains(doc.Text(), "is required") {
		t.Fatalf("expected required message, got %q", doc.Text())
	}
	if alerts := doc.WithAttr("role", "alert"); len(alerts) == 0 {
		t.Fatalf("expected an alert")
	}

	rec = c.post("/designer/preview", url.Values{id: {"Ada"}}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc = testsupport.MustParseHTML(t, rec.Body.Bytes())
	if values := doc.WithAttr("value", "Ada"); len(values) != 1 {
		t.Fatalf("answer should be redisplayed")
	}
	host, _ := doc.ByID("fd-toasts")
	if !strings.Contains(host.Text(), "Submission valid") {
		t.Fatalf("expected success toast, got %q", host.Text())
	}
}

func TestExportJSON(t *testing.T) {
	c := newClient(t, WithExportOptions(export.Options{Path: "/contact"}))
	c.add("TextField")

	rec := c.get("/designer/export.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Fatalf("unexpected openapi version %q", doc.OpenAPI)
	}
	if _, ok := doc.Paths["/contact"]["post"]; !ok {
		t.Fatalf("expected POST /contact, got %v", doc.Paths)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	c := newClient(t)
	rec := c.do(httptest.NewRequest(http.MethodPut, "/designer/elements", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected Allow to list POST, got %q", allow)
	}
}

func TestGuard(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: errors.New("nope"), want: http.StatusForbidden},
		{name: "unauthenticated", err: auth.ErrUnauthenticated, want: http.StatusUnauthorized},
		{name: "status error", err: auth.StatusError{Code: http.StatusTeapot}, want: http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, WithGuard(func(*http.Request) error { return tc.err }))
			if rec := c.get("/designer/"); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestHandlerWithoutDesignContext(t *testing.T) {
	h, err := NewHandler()
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/designer/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
