// Package render defines the renderer contract shared by the HTML and terminal
// front ends, the renderer registry, and helpers for mapping server-side
// error payloads and hidden inputs onto a design.
package render

import (
	"context"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// Renderer converts a design into a byte representation (HTML, JSON, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, design model.Design, options RenderOptions) ([]byte, error)
}
