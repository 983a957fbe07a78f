package topics

import (
	"github.com/charmbracelet/glamour"
)

// Built-in glamour style names
const (
	StyleAuto  = "auto"
	StyleNoTTY = "notty"
	StyleASCII = "ascii"
	StyleDark  = "dark"
	StyleLight = "light"
)

// GlamourRenderer renders markdown topics for the terminal
type GlamourRenderer struct {
	Style string // A built-in style name or the path of a JSON style file
	Width int    // Word wrap column; 0 keeps glamour's default
}

// NewGlamourRenderer creates a renderer that picks its style from the terminal
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: StyleAuto}
}

// Render converts markdown for terminal display. Other formats, and any
// rendering failure, return the content unchanged.
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	switch r.Style {
	case "", StyleAuto:
		options = append(options, glamour.WithAutoStyle())
	case StyleNoTTY, StyleASCII, StyleDark, StyleLight:
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
