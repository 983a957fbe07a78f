package ui_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererText(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	lines := []ui.Line{
		{Text: "/"},
		{Indent: 1, Text: "notes", Style: "Visible"},
		{Indent: 1, Text: "archive", Style: "Hidden", Note: "(rule 1)"},
	}
	require.NoError(t, r.Render("Folders", lines, nil))

	assert.Equal(t, "Folders\n\n/\n  notes\n  archive (rule 1)\n", buf.String())
}

func TestRendererJSON(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	data := map[string]int{"hidden": 2}
	require.NoError(t, r.Render("ignored", []ui.Line{{Text: "ignored"}}, data))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, data, got)
}

func TestRendererMessages(t *testing.T) {
	tests := []struct {
		name   string
		format ui.Format
		want   string
	}{
		{name: "text", format: ui.FormatText, want: "error: boom\n"},
		{name: "json", format: ui.FormatJSON, want: "{\n  \"error\": \"boom\"\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r, err := ui.NewRenderer(tt.format, &buf)
			require.NoError(t, err)
			require.NoError(t, r.RenderError(errors.New("boom")))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRendererTerminalContainsText(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatTerminal, &buf)
	require.NoError(t, err)

	require.NoError(t, r.Render("", []ui.Line{{Text: "projects", Style: "Visible", Note: "visible"}}, nil))
	assert.Contains(t, buf.String(), "projects")
	assert.Contains(t, buf.String(), "visible")
}

func TestStyles(t *testing.T) {
	for _, name := range []string{"Header", "Visible", "Hidden", "Rule", "Error", "Muted", "Bold", "Indent"} {
		assert.True(t, ui.HasStyle(name), "style %s should be defined", name)
	}
	assert.False(t, ui.HasStyle("Nope"))

	require.Error(t, ui.LoadStylesFromData([]byte("colors: [")))
	assert.True(t, ui.HasStyle("Header"), "failed load keeps the previous registry")
}
