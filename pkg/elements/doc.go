// Package elements defines the form element plugin contract. Every field type
// registers a Descriptor that knows how to construct a new instance, render a
// read-only designer preview, render the interactive form control, render the
// properties editor, and validate its properties against a JSON Schema. The
// Registry lets the designer surface, renderers and exporters treat every field
// type polymorphically.
package elements
