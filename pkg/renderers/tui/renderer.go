package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/model"
	"github.com/goliatone/go-formdesigner/pkg/render"
)

// Renderer implements render.Renderer for terminal sessions: it walks the
// fields derived from a design, prompts for each one and returns the answers
// serialized in the configured format.
type Renderer struct {
	driver            PromptDriver
	builder           model.Builder
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
// A builder is required; pass WithBuilder with the element registry.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.builder == nil {
		return nil, ErrNoBuilder
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every field of the design in order. opts.Values seed
// defaults and opts.Errors are printed before the matching prompt. Each
// answer is checked against the field's exported schema before it is kept.
func (r *Renderer) Render(ctx context.Context, design model.Design, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	form, err := r.builder.Build(design)
	if err != nil {
		return nil, fmt.Errorf("tui: build form: %w", err)
	}

	state := NewState(opts.Values, opts.Errors)
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(form, values)
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, state *State) error {
	for _, message := range state.ErrorsFor(field.Name) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+displayLabel(field)+": "+message); err != nil {
			return err
		}
	}

	switch field.Type {
	case model.FieldTypeBoolean:
		return r.promptBoolean(ctx, field, state)
	case model.FieldTypeInteger, model.FieldTypeNumber:
		return r.promptNumber(ctx, field, state)
	default:
		return r.promptString(ctx, field, state)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, state *State) error {
	answer, err := r.driver.Input(ctx, InputConfig{
		Message:   promptMessage(field),
		Default:   defaultString(state, field),
		Help:      displayHelp(field),
		Validator: stringCheck(field),
	})
	if err != nil {
		return err
	}
	if err := stringCheck(field)(answer); err != nil {
		return fmt.Errorf("tui: %s: %w", field.Name, err)
	}
	if answer == "" && !field.Required {
		state.Clear(field.Name)
		return nil
	}
	state.Set(field.Name, answer)
	return nil
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field, state *State) error {
	answer, err := r.driver.Input(ctx, InputConfig{
		Message:   promptMessage(field),
		Default:   defaultString(state, field),
		Help:      displayHelp(field),
		Validator: numberCheck(field),
	})
	if err != nil {
		return err
	}
	if err := numberCheck(field)(answer); err != nil {
		return fmt.Errorf("tui: %s: %w", field.Name, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		state.Clear(field.Name)
		return nil
	}
	number, _ := strconv.ParseFloat(answer, 64)
	state.Set(field.Name, number)
	return nil
}

// promptBoolean asks until a required checkbox is accepted.
func (r *Renderer) promptBoolean(ctx context.Context, field model.Field, state *State) error {
	def := false
	if value, ok := state.Value(field.Name); ok {
		def = model.Attributes{"value": value}.Bool("value")
	} else if b, ok := field.Default.(bool); ok {
		def = b
	}

	for {
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: promptMessage(field),
			Default: def,
			Help:    displayHelp(field),
		})
		if err != nil {
			return err
		}
		if answer || !field.Required {
			state.Set(field.Name, answer)
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+displayLabel(field)+" must be accepted"); err != nil {
			return err
		}
	}
}

func stringCheck(field model.Field) func(string) error {
	return func(value string) error {
		if value == "" {
			if field.Required {
				return errors.New("a value is required")
			}
			return nil
		}
		return export.CheckValue(field, value)
	}
}

func numberCheck(field model.Field) func(string) error {
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			if field.Required {
				return errors.New("a value is required")
			}
			return nil
		}
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		return export.CheckValue(field, number)
	}
}

func (r *Renderer) serialize(form model.FormModel, values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(form, values)), nil
	default:
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode answers: %w", err)
		}
		return append(out, '\n'), nil
	}
}

func flattenForm(values map[string]any) string {
	form := url.Values{}
	for key, value := range values {
		form.Set(key, formatValue(value))
	}
	return form.Encode()
}

func prettyPrint(form model.FormModel, values map[string]any) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		seen[field.Name] = struct{}{}
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", displayLabel(field), formatValue(value))
	}

	var extra []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(&b, "%s: %s\n", key, formatValue(values[key]))
	}
	return b.String()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func defaultString(state *State, field model.Field) string {
	if value, ok := state.Value(field.Name); ok && value != nil {
		return formatValue(value)
	}
	if field.Default != nil {
		return formatValue(field.Default)
	}
	return ""
}

func promptMessage(field model.Field) string {
	label := displayLabel(field)
	if field.Required {
		return label + " *"
	}
	return label
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Placeholder
}
