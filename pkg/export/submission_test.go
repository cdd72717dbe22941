package export_test

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdesigner/pkg/export"
	"github.com/goliatone/go-formdesigner/pkg/model"
)

func TestCheck_AcceptsTypedAnswers(t *testing.T) {
	sub := export.Check(contactForm(t), url.Values{
		"name":  {"Ada"},
		"age":   {" 36 "},
		"terms": {"on"},
	})
	if !sub.Valid() {
		t.Fatalf("unexpected errors %v", sub.Errors)
	}
	want := map[string]any{"name": "Ada", "age": float64(36), "terms": true}
	if diff := cmp.Diff(want, sub.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck_OmitsEmptyOptionalAnswers(t *testing.T) {
	sub := export.Check(contactForm(t), url.Values{"name": {"Ada"}, "terms": {"true"}})
	if !sub.Valid() {
		t.Fatalf("unexpected errors %v", sub.Errors)
	}
	if _, ok := sub.Values["age"]; ok {
		t.Fatalf("empty optional number should be omitted")
	}
}

func TestCheck_ReportsPerField(t *testing.T) {
	sub := export.Check(contactForm(t), url.Values{"name": {"  "}, "age": {"abc"}})
	if sub.Valid() {
		t.Fatalf("expected errors")
	}
	want := map[string][]string{
		"name":  {"is required"},
		"age":   {"must be a number"},
		"terms": {"must be accepted"},
	}
	if diff := cmp.Diff(want, sub.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckValue(t *testing.T) {
	field := model.Field{
		Name: "code",
		Type: model.FieldTypeString,
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRuleMaxLength, Params: map[string]string{"value": "3"}},
		},
	}
	if err := export.CheckValue(field, "abc"); err != nil {
		t.Fatalf("expected abc to pass: %v", err)
	}
	err := export.CheckValue(field, "abcd")
	if err == nil || err.Error() == "" {
		t.Fatalf("expected a reason for abcd, got %v", err)
	}
}
