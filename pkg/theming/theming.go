// Package theming resolves go-theme manifests into renderer configuration and
// carries the request's theme choice through the context.
package theming

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

const (
	// DefaultTheme names the built-in manifest.
	DefaultTheme = "formdesigner"
	// VariantSystem follows the browser's colour-scheme preference: light
	// tokens by default, dark tokens under prefers-color-scheme: dark.
	VariantSystem = "system"
	VariantLight  = "light"
	VariantDark   = "dark"
)

// ErrUnknownTheme is returned when a selection names an unregistered theme.
var ErrUnknownTheme = errors.New("theming: unknown theme")

// DefaultManifest returns the built-in manifest with light and dark variants.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"background":       "#ffffff",
			"foreground":       "#0a0a0a",
			"surface":          "#f5f5f5",
			"muted-foreground": "#737373",
			"border":           "#e5e5e5",
			"primary":          "#171717",
			"primary-fg":       "#fafafa",
			"destructive":      "#dc2626",
			"success":          "#16a34a",
			"radius":           "0.5rem",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "formdesigner.css",
				"script":     "formdesigner.js",
			},
		},
		Variants: map[string]theme.Variant{
			VariantLight: {},
			VariantDark: {
				Tokens: map[string]string{
					"background":       "#0a0a0a",
					"foreground":       "#fafafa",
					"surface":          "#171717",
					"muted-foreground": "#a3a3a3",
					"border":           "#262626",
					"primary":          "#fafafa",
					"primary-fg":       "#171717",
					"destructive":      "#f87171",
					"success":          "#4ade80",
				},
			},
		},
	}
}

// manifestRegistry is the part of the go-theme registry the catalog feeds.
type manifestRegistry interface {
	theme.ThemeProvider
	Register(*theme.Manifest) error
}

// Catalog holds the known manifests and resolves selections against them. It
// implements theme.ThemeSelector.
type Catalog struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	registry       manifestRegistry
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Catalog)(nil)

// NewCatalog registers manifests (DefaultManifest when none are given).
// Empty defaults fall back to DefaultTheme and VariantSystem.
func NewCatalog(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Catalog, error) {
	if strings.TrimSpace(defaultTheme) == "" {
		defaultTheme = DefaultTheme
	}
	if strings.TrimSpace(defaultVariant) == "" {
		defaultVariant = VariantSystem
	}
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	c := &Catalog{
		manifests:      make(map[string]*theme.Manifest),
		registry:       theme.NewRegistry(),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if err := c.Register(manifest); err != nil {
			return nil, err
		}
	}
	if _, ok := c.manifests[defaultTheme]; !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownTheme, defaultTheme)
	}
	return c, nil
}

// Register adds a manifest.
func (c *Catalog) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("theming: manifest name is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.manifests[manifest.Name]; exists {
		return fmt.Errorf("theming: theme %q already registered", manifest.Name)
	}
	if err := c.registry.Register(manifest); err != nil {
		return fmt.Errorf("theming: register %q: %w", manifest.Name, err)
	}
	c.manifests[manifest.Name] = manifest
	return nil
}

// Provider exposes the underlying go-theme registry.
func (c *Catalog) Provider() theme.ThemeProvider {
	return c.registry
}

// Defaults returns the default theme and variant.
func (c *Catalog) Defaults() (string, string) {
	return c.defaultTheme, c.defaultVariant
}

// Names lists the registered themes in name order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves name and variant, applying defaults for empty values. A
// variant the manifest does not define falls back to the default variant.
func (c *Catalog) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.defaultTheme
	}
	c.mu.RLock()
	manifest, ok := c.manifests[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	variant = strings.ToLower(strings.TrimSpace(variant))
	if !hasVariant(manifest, variant) {
		variant = c.defaultVariant
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

func hasVariant(manifest *theme.Manifest, variant string) bool {
	if variant == "" {
		return false
	}
	if variant == VariantSystem {
		return true
	}
	_, ok := manifest.Variants[variant]
	return ok
}

// RendererConfig flattens a selection into the configuration renderers read.
// Variant tokens, templates and assets override the base manifest; fallbacks
// fill partial keys neither defines.
func RendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	partials := merge(fallbacks, manifest.Templates, variant.Templates)
	tokens := merge(manifest.Tokens, variant.Tokens)

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := merge(manifest.Assets.Files, variant.Assets.Files)

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  CSSVars(tokens),
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}
}

// VariantCSSVars returns the CSS variables of a named variant merged over the
// manifest base tokens.
func VariantCSSVars(manifest *theme.Manifest, variant string) map[string]string {
	if manifest == nil {
		return nil
	}
	return CSSVars(merge(manifest.Tokens, manifest.Variants[variant].Tokens))
}

// CSSVars prefixes token names with "--".
func CSSVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		out["--"+strings.TrimPrefix(key, "--")] = value
	}
	return out
}

// CSSVarsStyle renders vars as a sorted declaration list.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for key, value := range m {
			if strings.TrimSpace(value) != "" {
				out[key] = value
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
