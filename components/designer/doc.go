// Package designer provides the net/http component serving the form designer:
// the designer and preview pages, the element actions posted by the palette,
// canvas and properties panel, and JSON views of the current design and its
// OpenAPI export.
//
// The handler expects the design context of the application shell (see
// pkg/shell) in the request context. Routes accept GET or POST only; other
// methods are answered with 405 and an Allow header.
package designer
