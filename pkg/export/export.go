// Package export describes the payload a designed form produces as an
// OpenAPI 3 document. Each element becomes one property of the request body
// schema, keyed by the element ID.
package export

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

const (
	// OpenAPIVersion is the version string written into exported documents.
	OpenAPIVersion = "3.0.3"

	ExtensionElement     = "x-formdesigner-element"
	ExtensionPlaceholder = "x-formdesigner-placeholder"
)

// Options configure Document. Zero values fall back to DefaultOptions.
type Options struct {
	Title       string
	Version     string
	Description string
	// Path is the submission endpoint the operation is declared on.
	Path string
}

// DefaultOptions returns the options used for unset fields.
func DefaultOptions() Options {
	return Options{
		Title:   "Form submission",
		Version: "1.0.0",
		Path:    "/submissions",
	}
}

// FieldSchema converts a form field into its JSON value schema: strings for
// text fields, numbers for number fields, booleans for checkboxes. The label
// becomes the title and the helper text the description.
func FieldSchema(field model.Field) *openapi3.Schema {
	var schema *openapi3.Schema
	switch field.Type {
	case model.FieldTypeBoolean:
		schema = openapi3.NewBoolSchema()
	case model.FieldTypeNumber:
		schema = openapi3.NewFloat64Schema()
	case model.FieldTypeInteger:
		schema = openapi3.NewIntegerSchema()
	default:
		schema = openapi3.NewStringSchema()
	}

	schema.Title = field.Label
	schema.Description = field.Description
	if field.Default != nil {
		schema.Default = field.Default
	}

	extensions := map[string]any{}
	if field.Element != "" {
		extensions[ExtensionElement] = string(field.Element)
	}
	if field.Placeholder != "" {
		extensions[ExtensionPlaceholder] = field.Placeholder
	}
	if len(extensions) > 0 {
		schema.Extensions = extensions
	}

	for _, rule := range field.Validations {
		applyRule(schema, rule)
	}
	return schema
}

func applyRule(schema *openapi3.Schema, rule model.ValidationRule) {
	value := strings.TrimSpace(rule.Params["value"])
	switch rule.Kind {
	case model.ValidationRuleMin:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			schema.WithMin(n)
		}
	case model.ValidationRuleMax:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			schema.WithMax(n)
		}
	case model.ValidationRuleMinLength:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
			schema.WithMinLength(n)
		}
	case model.ValidationRuleMaxLength:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
			schema.WithMaxLength(n)
		}
	case model.ValidationRulePattern:
		if pattern := rule.Params["pattern"]; pattern != "" {
			schema.Pattern = pattern
		}
	}
}

// FormSchema converts a form model into an object schema with one property
// per field. Required fields are listed in field order.
func FormSchema(form model.FormModel) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = form.Name
	schema.Description = form.Description
	for _, field := range form.Fields {
		schema.WithProperty(field.Name, FieldSchema(field))
		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}
	return schema
}

// Document builds an OpenAPI document declaring a single POST operation whose
// JSON request body is the form schema. The result is validated before it is
// returned.
func Document(ctx context.Context, form model.FormModel, opts Options) (*openapi3.T, error) {
	defaults := DefaultOptions()
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = firstNonEmpty(form.Name, defaults.Title)
	}
	if strings.TrimSpace(opts.Version) == "" {
		opts.Version = defaults.Version
	}
	if strings.TrimSpace(opts.Description) == "" {
		opts.Description = form.Description
	}
	opts.Path = "/" + strings.Trim(strings.TrimSpace(opts.Path), "/")
	if opts.Path == "/" {
		opts.Path = defaults.Path
	}

	operation := openapi3.NewOperation()
	operation.OperationID = operationID(form)
	operation.Summary = "Submit " + opts.Title
	operation.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchema(FormSchema(form)),
	}
	operation.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission accepted"),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission rejected"),
		}),
	)

	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       opts.Title,
			Version:     opts.Version,
			Description: opts.Description,
		},
	}
	doc.AddOperation(opts.Path, http.MethodPost, operation)

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("export: invalid document: %w", err)
	}
	return doc, nil
}

func operationID(form model.FormModel) string {
	id := strings.TrimSpace(form.ID)
	if id == "" {
		return "submitForm"
	}
	return "submit_" + id
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
