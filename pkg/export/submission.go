package export

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// Submission is a submitted form decoded against its form model.
type Submission struct {
	// Values holds the typed answers keyed by field name. Empty optional
	// answers are omitted.
	Values map[string]any
	// Errors holds messages keyed by field name.
	Errors map[string][]string
}

// Valid reports whether every answer passed its schema.
func (s Submission) Valid() bool {
	return len(s.Errors) == 0
}

// CheckValue validates one decoded answer against the field's schema and
// returns the schema's reason as the error message.
func CheckValue(field model.Field, value any) error {
	if err := FieldSchema(field).VisitJSON(value); err != nil {
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) && schemaErr.Reason != "" {
			return errors.New(schemaErr.Reason)
		}
		return err
	}
	return nil
}

// Check decodes form-encoded answers per field type (booleans from
// "on|true|1", numbers parsed as float64, strings verbatim) and validates
// each one with CheckValue.
func Check(form model.FormModel, values url.Values) Submission {
	sub := Submission{Values: make(map[string]any, len(form.Fields))}
	fail := func(name, message string) {
		if sub.Errors == nil {
			sub.Errors = make(map[string][]string)
		}
		sub.Errors[name] = append(sub.Errors[name], message)
	}

	for _, field := range form.Fields {
		raw := values.Get(field.Name)
		switch field.Type {
		case model.FieldTypeBoolean:
			checked := model.Attributes{"value": raw}.Bool("value")
			if field.Required && !checked {
				fail(field.Name, "must be accepted")
				continue
			}
			sub.Values[field.Name] = checked
		case model.FieldTypeInteger, model.FieldTypeNumber:
			raw = strings.TrimSpace(raw)
			if raw == "" {
				if field.Required {
					fail(field.Name, "is required")
				}
				continue
			}
			number, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fail(field.Name, "must be a number")
				continue
			}
			if err := CheckValue(field, number); err != nil {
				fail(field.Name, err.Error())
				continue
			}
			sub.Values[field.Name] = number
		default:
			if strings.TrimSpace(raw) == "" {
				if field.Required {
					fail(field.Name, "is required")
				}
				continue
			}
			if err := CheckValue(field, raw); err != nil {
				fail(field.Name, err.Error())
				continue
			}
			sub.Values[field.Name] = raw
		}
	}
	return sub
}
