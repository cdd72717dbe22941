// Package orchestrator ties the element registry, theme selection and the
// renderer registry together: given a design it derives the form model,
// resolves the theme and renders the requested mode with the chosen renderer.
package orchestrator
