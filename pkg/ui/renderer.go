// Package ui renders command output as styled terminal text, plain text, or
// JSON, and detects which of those the output stream can take.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Line is one row of human-readable output
type Line struct {
	Indent int
	Text   string
	// Style names a style from the registry; empty means unstyled
	Style string
	// Note is appended after the text in the Muted style
	Note string
}

// Renderer writes command results in one output format. data is what JSON
// output encodes; lines are what humans read.
type Renderer interface {
	Render(title string, lines []Line, data any) error
	RenderMessage(msg string) error
	RenderError(err error) error
}

// NewRenderer creates a renderer for w. FormatAuto is resolved against w.
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	switch Resolve(format, w) {
	case FormatTerminal:
		return &styled{w: w}, nil
	case FormatText:
		return &plain{w: w}, nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return &jsonRenderer{enc: enc}, nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}

type styled struct{ w io.Writer }

func (r *styled) Render(title string, lines []Line, _ any) error {
	if title != "" {
		if _, err := fmt.Fprintln(r.w, GetStyle("Header").Render(title)); err != nil {
			return err
		}
	}
	for _, l := range lines {
		text := GetStyle(l.Style).Render(l.Text)
		if l.Note != "" {
			text += " " + GetStyle("Muted").Render(l.Note)
		}
		if _, err := fmt.Fprintln(r.w, strings.Repeat("  ", l.Indent)+text); err != nil {
			return err
		}
	}
	return nil
}

func (r *styled) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *styled) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.w, GetStyle("Error").Render("error:")+" "+err.Error())
	return werr
}

type plain struct{ w io.Writer }

func (r *plain) Render(title string, lines []Line, _ any) error {
	if title != "" {
		if _, err := fmt.Fprintf(r.w, "%s\n\n", title); err != nil {
			return err
		}
	}
	for _, l := range lines {
		text := l.Text
		if l.Note != "" {
			text += " " + l.Note
		}
		if _, err := fmt.Fprintln(r.w, strings.Repeat("  ", l.Indent)+text); err != nil {
			return err
		}
	}
	return nil
}

func (r *plain) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *plain) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.w, "error: %s\n", err)
	return werr
}

type jsonRenderer struct{ enc *json.Encoder }

func (r *jsonRenderer) Render(_ string, _ []Line, data any) error {
	return r.enc.Encode(data)
}

func (r *jsonRenderer) RenderMessage(msg string) error {
	return r.enc.Encode(map[string]string{"message": msg})
}

func (r *jsonRenderer) RenderError(err error) error {
	return r.enc.Encode(map[string]string{"error": err.Error()})
}
