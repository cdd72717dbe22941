// Package numberfield provides the numeric input element.
package numberfield

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-formdesigner/pkg/elements"
	"github.com/goliatone/go-formdesigner/pkg/model"
)

const Type model.ElementType = "NumberField"

const (
	DefaultLabel       = "Number field"
	DefaultHelperText  = "Helper text"
	DefaultPlaceHolder = "0"
)

// Icon is the palette icon (Material "pin").
const Icon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24" fill="currentColor" aria-hidden="true"><path d="M20 4H4c-1.1 0-2 .9-2 2v12c0 1.1.9 2 2 2h16c1.1 0 2-.9 2-2V6c0-1.1-.9-2-2-2zm0 14H4V6h16v12zM6.5 15H8V9H5v1.5h1.5zm3.5-3v3h4v-1.5h-2.5v-.75H14V9h-4v1.5h2.5v.75zm5 3h3V9h-3v1.5h1.5v.75H16v1.5h1.5v.75H15z"></path></svg>`

//go:embed properties.schema.json
var propertiesSchema []byte

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Construct returns a new NumberField instance with default attributes.
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
			Label: "Number Field",
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

// Field maps an instance onto a number form field.
func Field(instance model.ElementInstance) model.Field {
	attrs := instance.ExtraAttributes
	return model.Field{
		Name:        instance.ID,
		Type:        model.FieldTypeNumber,
		Element:     Type,
		Required:    attrs.Bool("required"),
		Label:       attrs.String("label"),
		Placeholder: attrs.String("placeHolder"),
		Description: attrs.String("helperText"),
	}
}
