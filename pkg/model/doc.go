// Package model defines the design documents edited by the designer and the
// typed form model derived from them. A Design is an ordered list of element
// instances, each tagged with the element type that knows how to construct,
// preview and configure it. Builders turn a Design into a FormModel so
// renderers and exporters can work with plain fields (label, placeholder,
// required flag, validations) without knowing about element plugins.
package model
