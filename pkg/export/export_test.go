package export_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdesigner/pkg/elements/builtin"
	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/model"
)

func contactForm(t *testing.T) model.FormModel {
	t.Helper()
	design := model.Design{
		ID:   "contact",
		Name: "Contact",
		Elements: []model.ElementInstance{
			{ID: "name", Type: "TextField", ExtraAttributes: model.Attributes{
				"label": "Full name", "helperText": "As on your passport", "placeHolder": "Jane", "required": true,
			}},
			{ID: "age", Type: "NumberField", ExtraAttributes: model.Attributes{
				"label": "Age", "helperText": "", "placeHolder": "0", "required": false,
			}},
			{ID: "terms", Type: "CheckboxField", ExtraAttributes: model.Attributes{
				"label": "Accept terms", "helperText": "", "required": true,
			}},
		},
	}
	form, err := builtin.Registry().Build(design)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	return form
}

func TestFieldSchema(t *testing.T) {
	form := contactForm(t)

	name := export.FieldSchema(form.Fields[0])
	if !name.Type.Is(openapi3.TypeString) {
		t.Fatalf("name type = %v, want string", name.Type)
	}
	if name.Title != "Full name" || name.Description != "As on your passport" {
		t.Fatalf("unexpected title/description: %q / %q", name.Title, name.Description)
	}
	if diff := cmp.Diff(map[string]any{
		export.ExtensionElement:     "TextField",
		export.ExtensionPlaceholder: "Jane",
	}, name.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}

	if age := export.FieldSchema(form.Fields[1]); !age.Type.Is(openapi3.TypeNumber) {
		t.Fatalf("age type = %v, want number", age.Type)
	}
	if terms := export.FieldSchema(form.Fields[2]); !terms.Type.Is(openapi3.TypeBoolean) {
		t.Fatalf("terms type = %v, want boolean", terms.Type)
	}
}

func TestFieldSchema_ValidationRules(t *testing.T) {
	schema := export.FieldSchema(model.Field{
		Name: "code",
		Type: model.FieldTypeString,
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "2"}},
			{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "4"}},
			{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "^[A-Z]+$"}},
		},
	})
	if schema.MinLength != 2 || schema.MaxLength == nil || *schema.MaxLength != 4 {
		t.Fatalf("length bounds not applied: min=%d max=%v", schema.MinLength, schema.MaxLength)
	}
	if err := schema.VisitJSON("AB"); err != nil {
		t.Fatalf("expected AB to be valid: %v", err)
	}
	if err := schema.VisitJSON("abcde"); err == nil {
		t.Fatalf("expected abcde to be rejected")
	}
}

func TestFormSchema(t *testing.T) {
	schema := export.FormSchema(contactForm(t))

	if diff := cmp.Diff([]string{"name", "terms"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if len(schema.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(schema.Properties))
	}

	valid := map[string]any{"name": "Ada", "age": 36.0, "terms": true}
	if err := schema.VisitJSON(valid); err != nil {
		t.Fatalf("expected payload to be valid: %v", err)
	}
	if err := schema.VisitJSON(map[string]any{"name": "Ada"}); err == nil {
		t.Fatalf("expected missing terms to be rejected")
	}
	if err := schema.VisitJSON(map[string]any{"name": "Ada", "terms": "yes"}); err == nil {
		t.Fatalf("expected non-boolean terms to be rejected")
	}
}

func TestDocument(t *testing.T) {
	ctx := context.Background()
	doc, err := export.Document(ctx, contactForm(t), export.Options{Path: "forms/contact/"})
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if err := doc.Validate(ctx); err != nil {
		t.Fatalf("document should validate: %v", err)
	}
	if doc.Info.Title != "Contact" || doc.Info.Version != "1.0.0" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}

	item := doc.Paths.Value("/forms/contact")
	if item == nil || item.Post == nil {
		t.Fatalf("expected POST /forms/contact")
	}
	if item.Post.OperationID != "submit_contact" {
		t.Fatalf("operation id = %q", item.Post.OperationID)
	}
	media := item.Post.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		t.Fatalf("expected JSON request body schema")
	}
	if _, ok := media.Schema.Value.Properties["terms"]; !ok {
		t.Fatalf("expected terms property in request body")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["openapi"] != export.OpenAPIVersion {
		t.Fatalf("openapi version = %v", decoded["openapi"])
	}
}

func TestDocument_Defaults(t *testing.T) {
	doc, err := export.Document(context.Background(), model.FormModel{}, export.Options{})
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc.Info.Title != "Form submission" {
		t.Fatalf("title = %q", doc.Info.Title)
	}
	item := doc.Paths.Value("/submissions")
	if item == nil || item.Post == nil || item.Post.OperationID != "submitForm" {
		t.Fatalf("expected default submission operation")
	}
}
