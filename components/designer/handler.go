package designer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdesigner/pkg/auth"
	state "github.com/goliatone/go-formdesigner/pkg/designer"
	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/orchestrator"
	"github.com/goliatone/go-formdesigner/pkg/properties"
	"github.com/goliatone/go-formdesigner/pkg/render"
	"github.com/goliatone/go-formdesigner/pkg/session"
	"github.com/goliatone/go-formdesigner/pkg/shell"
	"github.com/goliatone/go-formdesigner/pkg/theming"
)

var (
	// ErrNoDesignContext means the request did not pass through the shell's
	// design context provider.
	ErrNoDesignContext = errors.New("designer: no design context in request")
	errBadIndex        = errors.New("designer: invalid index")
)

// Handler builds the designer handler mounted at the default route path.
func Handler(fns ...OptionFn) (http.Handler, error) {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) (http.Handler, error) {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds the handler from a pre-constructed Options value.
// Routes are served under opts.RoutePath.
func HandlerWithOptions(opts Options) (http.Handler, error) {
	opts = NewOptions(func(o *Options) { *o = opts })
	h, err := newHandler(mountPath("", opts.RoutePath), opts)
	if err != nil {
		return nil, err
	}
	return h, nil
}

type handler struct {
	base   string
	opts   Options
	orch   *orchestrator.Orchestrator
	editor *properties.Editor
	mux    *http.ServeMux
}

func newHandler(prefix string, opts Options) (*handler, error) {
	h := &handler{
		base:   strings.TrimRight(prefix, "/"),
		opts:   opts,
		orch:   opts.Orchestrator,
		editor: opts.Editor,
		mux:    http.NewServeMux(),
	}
	if h.orch == nil {
		h.orch = orchestrator.New()
	}
	if h.editor == nil {
		editor, err := properties.NewEditor(h.orch.Elements())
		if err != nil {
			return nil, fmt.Errorf("designer: %w", err)
		}
		h.editor = editor
	}

	h.route("GET {base}/{$}", h.designerPage)
	h.route("GET {base}/preview", h.previewPage)
	h.route("POST {base}/preview", h.submitPreview)
	h.route("POST {base}/elements", h.addElement)
	h.route("POST {base}/elements/{id}/select", h.selectElement)
	h.route("POST {base}/elements/{id}/delete", h.deleteElement)
	h.route("POST {base}/elements/{id}/move", h.moveElement)
	h.route("POST {base}/elements/{id}/properties", h.saveProperties)
	h.route("GET {base}/design.json", h.designJSON)
	h.route("GET {base}/export.json", h.exportJSON)
	if h.base != "" {
		h.mux.HandleFunc("GET "+h.base, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, h.base+"/", http.StatusMovedPermanently)
		})
	}
	return h, nil
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session) error

func (h *handler) route(pattern string, fn sessionHandler) {
	pattern = strings.Replace(pattern, "{base}", h.base, 1)
	h.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			writeError(w, ErrNoDesignContext)
			return
		}
		if err := fn(w, r, sess); err != nil {
			writeError(w, err)
		}
	})
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}
	h.mux.ServeHTTP(w, r)
}

func (h *handler) designerPage(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	return h.page(w, r, sess, http.StatusOK, render.RenderOptions{Mode: model.ModeDesigner})
}

func (h *handler) previewPage(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	return h.page(w, r, sess, http.StatusOK, render.RenderOptions{Mode: model.ModePreview})
}

// submitPreview checks a preview submission against the exported schema and
// redisplays the form with the answers and per-field messages.
func (h *handler) submitPreview(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := r.ParseForm(); err != nil {
		return auth.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	design := sess.Designer.Snapshot()
	form, err := h.orch.Form(design)
	if err != nil {
		return err
	}

	sub := export.Check(form, r.PostForm)
	values := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		if value, ok := sub.Values[field.Name]; ok {
			values[field.Name] = value
		} else if raw := r.PostForm.Get(field.Name); raw != "" {
			values[field.Name] = raw
		}
	}

	opts := render.RenderOptions{Mode: model.ModePreview, Values: values}
	status := http.StatusOK
	if sub.Valid() {
		sess.Toasts.Success("Submission valid", "")
	} else {
		mapping := render.MapErrorPayload(design, sub.Errors)
		opts.Errors = mapping.Fields
		opts.FormErrors = render.MergeFormErrors(mapping.Form, "Please correct the highlighted fields")
		status = http.StatusUnprocessableEntity
	}
	return h.page(w, r, sess, status, opts)
}

func (h *handler) addElement(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := r.ParseForm(); err != nil {
		return auth.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	elementType := model.ElementType(strings.TrimSpace(r.PostForm.Get("type")))
	descriptor, err := h.orch.Elements().Lookup(elementType)
	if err != nil {
		return err
	}
	index, err := formIndex(r, sess.Designer.Len())
	if err != nil {
		return err
	}

	instance := descriptor.Construct(state.NewElementID())
	if err := sess.Designer.AddElement(index, instance); err != nil {
		return err
	}
	if err := sess.Designer.SetSelectedElement(instance.ID); err != nil {
		return err
	}
	sess.Toasts.Success("Field added", descriptor.DesignerButton.Label)
	h.done(w, r)
	return nil
}

func (h *handler) selectElement(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	id := r.PathValue("id")
	if err := sess.Designer.SetSelectedElement(id); err != nil {
		return err
	}
	if isFetch(r) {
		return h.fragment(w, r, sess, http.StatusOK, render.RenderOptions{Mode: model.ModeProperties})
	}
	h.done(w, r)
	return nil
}

func (h *handler) deleteElement(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := sess.Designer.RemoveElement(r.PathValue("id")); err != nil {
		return err
	}
	sess.Toasts.Info("Field removed", "")
	h.done(w, r)
	return nil
}

func (h *handler) moveElement(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := r.ParseForm(); err != nil {
		return auth.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	index, err := formIndex(r, -1)
	if err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("%w: index is required", errBadIndex)
	}
	if err := sess.Designer.MoveElement(r.PathValue("id"), index); err != nil {
		return err
	}
	h.done(w, r)
	return nil
}

// saveProperties applies a properties form. Fetch posts get the re-rendered
// panel (422 when rejected); plain posts are redirected on success and get
// the full designer page with the rejected values otherwise.
func (h *handler) saveProperties(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	if err := r.ParseForm(); err != nil {
		return auth.StatusError{Code: http.StatusBadRequest, Err: err}
	}
	id := r.PathValue("id")
	result, err := h.editor.Apply(r.Context(), sess.Designer, id, r.PostForm)
	if err != nil {
		return err
	}
	if err := sess.Designer.SetSelectedElement(id); err != nil {
		return err
	}

	if !result.Applied {
		opts := render.RenderOptions{
			Mode:       model.ModeProperties,
			Properties: result.Values,
			Errors:     propertyErrors(id, result.Errors),
		}
		if isFetch(r) {
			return h.fragment(w, r, sess, http.StatusUnprocessableEntity, opts)
		}
		opts.Mode = model.ModeDesigner
		return h.page(w, r, sess, http.StatusUnprocessableEntity, opts)
	}

	if isFetch(r) {
		return h.fragment(w, r, sess, http.StatusOK, render.RenderOptions{Mode: model.ModeProperties})
	}
	sess.Toasts.Success("Properties saved", result.Instance.ExtraAttributes.String("label"))
	h.done(w, r)
	return nil
}

func (h *handler) designJSON(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	writeJSON(w, r, sess.Designer.Snapshot())
	return nil
}

func (h *handler) exportJSON(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	form, err := h.orch.Form(sess.Designer.Snapshot())
	if err != nil {
		return err
	}
	doc, err := export.Document(r.Context(), form, h.opts.Export)
	if err != nil {
		return err
	}
	writeJSON(w, r, doc)
	return nil
}

// page renders mode inside the layout.
func (h *handler) page(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, opts render.RenderOptions) error {
	body, err := h.render(r, sess, opts)
	if err != nil {
		return err
	}
	markup := string(body)
	if h.opts.Layout != nil {
		title := h.opts.Title
		if opts.Mode == model.ModePreview {
			title += " - Preview"
		}
		markup, err = h.opts.Layout.RenderPage(r.Context(), shell.Page{Title: title, Body: markup})
		if err != nil {
			return err
		}
	}
	writeHTML(w, status, markup)
	return nil
}

// fragment renders mode without the layout.
func (h *handler) fragment(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, opts render.RenderOptions) error {
	body, err := h.render(r, sess, opts)
	if err != nil {
		return err
	}
	writeHTML(w, status, string(body))
	return nil
}

func (h *handler) render(r *http.Request, sess *session.Session, opts render.RenderOptions) ([]byte, error) {
	opts.BasePath = h.base
	if opts.SelectedID == "" {
		if selected, ok := sess.Designer.SelectedElement(); ok {
			opts.SelectedID = selected.ID
		}
	}
	req := orchestrator.Request{Design: sess.Designer.Snapshot(), RenderOptions: opts}
	if res, ok := theming.FromContext(r.Context()); ok && res.Config != nil {
		req.RenderOptions.Theme = res.Config
	}
	return h.orch.Generate(r.Context(), req)
}

// done answers a successful action: an empty body for fetch requests, a
// redirect to the designer page otherwise.
func (h *handler) done(w http.ResponseWriter, r *http.Request) {
	if isFetch(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, h.base+"/", http.StatusSeeOther)
}

func isFetch(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(FetchHeader), "fetch")
}

// formIndex reads the "index" form value; def is returned when it is absent.
func formIndex(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get("index"))
	if raw == "" {
		return def, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadIndex, raw)
	}
	return index, nil
}

func propertyErrors(id string, errs map[string][]string) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string][]string, len(errs))
	for property, messages := range errs {
		out[id+"."+property] = messages
	}
	return out
}

func writeHTML(w http.ResponseWriter, status int, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(markup))
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// statusCode maps handler errors onto HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, state.ErrElementNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, elements.ErrUnknownType), errors.Is(err, errBadIndex):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrDuplicateElement):
		return http.StatusConflict
	}
	return auth.StatusCode(err)
}

func writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	http.Error(w, http.StatusText(code), code)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr auth.HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	} else if errors.Is(err, auth.ErrUnauthenticated) {
		code = http.StatusUnauthorized
	}
	http.Error(w, http.StatusText(code), code)
}
