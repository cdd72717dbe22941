// Package template defines the renderer-agnostic template contract used by the
// vanilla renderer, element plugins and the application shell. The gotemplate
// subpackage provides the pongo2-backed implementation.
package template
