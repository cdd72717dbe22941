package gotemplate

import (
	"strings"

	"github.com/flosch/pongo2/v6"
)

// registerBuiltinFilters installs the filters every formdesigner template can
// rely on.
func registerBuiltinFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("domid") {
		_ = pongo2.RegisterFilter("domid", filterDOMID)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterDOMID turns an element ID (optionally suffixed by the filter argument)
// into a DOM-safe identifier prefixed with "fd-".
func filterDOMID(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(DOMID(in.String(), param.String())), nil
}

// DOMID builds the identifier used for element containers and controls:
// "fd-<id>" or "fd-<id>-<suffix>". Characters outside [A-Za-z0-9_-] become "-".
func DOMID(id string, suffix string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("fd-")
	writeSafe(&b, id)
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		b.WriteByte('-')
		writeSafe(&b, suffix)
	}
	return b.String()
}

func writeSafe(b *strings.Builder, value string) {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
}
