// Package checkboxfield provides the single checkbox element.
package checkboxfield

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/model"
)

const Type model.ElementType = "CheckboxField"

const (
	DefaultLabel      = "Checkbox field"
	DefaultHelperText = "Helper text"
)

// Icon is the palette icon (Material "check_box").
const Icon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24" fill="currentColor" aria-hidden="true"><path d="M19 3H5c-1.11 0-2 .9-2 2v14c0 1.1.89 2 2 2h14c1.11 0 2-.9 2-2V5c0-1.1-.89-2-2-2zm-9 14l-5-5 1.41-1.41L10 14.17l7.59-7.59L19 8l-9 9z"></path></svg>`

//go:embed properties.schema.json
var propertiesSchema []byte

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Construct returns a new CheckboxField instance with default attributes.
// Checkboxes carry no placeholder.
func Construct(id string) model.ElementInstance {
	return model.ElementInstance{
		ID:   id,
		Type: Type,
		ExtraAttributes: model.Attributes{
			"label":      DefaultLabel,
			"helperText": DefaultHelperText,
			"required":   false,
		},
	}
}

func Descriptor() elements.Descriptor {
	files, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(err)
	}
	views := elements.NewViews(Type, files)
	return elements.Descriptor{
		Type:      Type,
		Construct: Construct,
		DesignerButton: elements.Button{
			Icon:  Icon,
			Label: "Checkbox Field",
		},
		Designer:         views.Designer(),
		Form:             views.Form(),
		Properties:       views.Properties(),
		PropertiesSchema: propertiesSchema,
		PropertyList: []elements.Property{
			{Name: "label", Kind: elements.PropertyString, Label: "Label", Description: "The label shown next to the checkbox."},
			{Name: "helperText", Kind: elements.PropertyString, Label: "Helper text", Description: "The helper text of the field. It will be displayed below the field."},
			{Name: "required", Kind: elements.PropertyBoolean, Label: "Required", Description: "Whether the box must be checked."},
		},
		Field: Field,
	}
}

// Field maps an instance onto a boolean form field.
func Field(instance model.ElementInstance) model.Field {
	attrs := instance.ExtraAttributes
	return model.Field{
		Name:        instance.ID,
		Type:        model.FieldTypeBoolean,
		Element:     Type,
		Required:    attrs.Bool("required"),
		Label:       attrs.String("label"),
		Description: attrs.String("helperText"),
		Default:     false,
	}
}
