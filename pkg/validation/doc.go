// Package validation checks element property payloads against JSON Schema
// (draft 2020-12) documents and turns failures into per-field messages
// suitable for showing next to form controls.
package validation
