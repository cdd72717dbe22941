package vanilla

import (
	"net/url"
	"strings"
)

// routePath joins the designer base path with route segments, escaping each
// segment so element IDs survive as a single path component.
func routePath(base string, segments ...string) string {
	base = "/" + strings.Trim(strings.TrimSpace(base), "/")
	if base == "/" {
		base = ""
	}
	var b strings.Builder
	b.WriteString(base)
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// PropertiesAction is the URL an element's properties form posts to.
func PropertiesAction(base, id string) string {
	return routePath(base, "elements", id, "properties")
}
