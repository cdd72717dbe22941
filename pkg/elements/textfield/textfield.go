// Package textfield provides the single-line text input element.
package textfield

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/model"
)

// Type is the element type tag.
const Type model.ElementType = "TextField"

// Default attribute values of a freshly constructed instance.
const (
	DefaultLabel       = "Text field"
	DefaultHelperText  = "Helper text"
	DefaultPlaceHolder = "Value here..."
)

// Icon is the palette icon (Material "text_fields").
const Icon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24" fill="currentColor" aria-hidden="true"><path d="M2.5 4v3h5v12h3V7h5V4h-13zm19 5h-9v3h3v7h3v-7h3V9z"></path></svg>`

//go:embed properties.schema.json
var propertiesSchema []byte

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Construct returns a new TextField instance with default attributes.
func Construct(id string) model.ElementInstance {
	return model.ElementInstance{
		ID:   id,
		Type: Type,
		ExtraAttributes: model.Attributes{
			"label":       DefaultLabel,
			"helperText":  DefaultHelperText,
			"required":    false,
			"placeHolder": DefaultPlaceHolder,
		},
	}
}

// Descriptor returns the TextField plugin descriptor.
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
			Label: "Text Field",
		},
		Designer:         views.Designer(),
		Form:             views.Form(),
		Properties:       views.Properties(),
		PropertiesSchema: propertiesSchema,
		PropertyList: []elements.Property{
			{Name: "label", Kind: elements.PropertyString, Label: "Label", Description: "The label of the field. It will be displayed above the field."},
			{Name: "placeHolder", Kind: elements.PropertyString, Label: "Placeholder", Description: "The placeholder of the field."},
			{Name: "helperText", Kind: elements.PropertyString, Label: "Helper text", Description: "The helper text of the field. It will be displayed below the field."},
			{Name: "required", Kind: elements.PropertyBoolean, Label: "Required", Description: "Whether the field must be filled in."},
		},
		Field: Field,
	}
}

// Field maps an instance onto a string form field.
func Field(instance model.ElementInstance) model.Field {
	attrs := instance.ExtraAttributes
	return model.Field{
		Name:        instance.ID,
		Type:        model.FieldTypeString,
		Element:     Type,
		Required:    attrs.Bool("required"),
		Label:       attrs.String("label"),
		Placeholder: attrs.String("placeHolder"),
		Description: attrs.String("helperText"),
	}
}
