package vanilla

// ChromeClass is a typed identifier for the semantic CSS classes the vanilla
// templates emit around element views.
type ChromeClass string

const (
	ClassDesigner   ChromeClass = "fd-designer"
	ClassPalette    ChromeClass = "fd-palette"
	ClassCanvas     ChromeClass = "fd-canvas"
	ClassCanvasItem ChromeClass = "fd-canvas-item"
	ClassSelected   ChromeClass = "fd-canvas-item--selected"
	ClassPanel      ChromeClass = "fd-panel"
	ClassForm       ChromeClass = "fd-form"
	ClassErrors     ChromeClass = "fd-errors"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"designer":    string(ClassDesigner),
		"palette":     string(ClassPalette),
		"canvas":      string(ClassCanvas),
		"canvas_item": string(ClassCanvasItem),
		"selected":    string(ClassSelected),
		"panel":       string(ClassPanel),
		"form":        string(ClassForm),
		"errors":      string(ClassErrors),
	}
}
