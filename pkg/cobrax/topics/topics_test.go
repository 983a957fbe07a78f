package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"syntax.md":           {Data: []byte("# Syntax\n\nOne regular expression per line.")},
		"watching.txt":        {Data: []byte("Watching a directory")},
		"option-format.txt":   {Data: []byte("Output formats")},
		"notes/backends.txxt": {Data: []byte("Backends")},
		"ignore.json":         {Data: []byte("{}")},
	}
}

func TestScanTopics(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(testFS())
		require.NoError(t, tm.scanTopics())

		assert.Equal(t, []string{"option-format", "syntax", "watching"}, tm.ListTopics())
		topic, ok := tm.GetTopic("watching")
		require.True(t, ok)
		assert.Equal(t, "Watching a directory", topic.Content)
		assert.Equal(t, "watching.txt", topic.FilePath)
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(testFS(), Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.scanTopics())

		assert.Equal(t, []string{"backends"}, tm.ListTopics())
	})
}

func TestGetTopicFlagStyle(t *testing.T) {
	tm := New(testFS())
	require.NoError(t, tm.scanTopics())

	for _, name := range []string{"--format", "-format", "format", "option-format"} {
		topic, ok := tm.GetTopic(name)
		require.True(t, ok, name)
		assert.Equal(t, "Output formats", topic.Content)
	}

	_, ok := tm.GetTopic("missing")
	assert.False(t, ok)
}

type upperRenderer struct{}

func (upperRenderer) Render(content, format string) string {
	if format == ".md" {
		return strings.ToUpper(content)
	}
	return content
}

func newRoot(t *testing.T, opts Options) (*cobra.Command, *TopicManager, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "app", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(&cobra.Command{Use: "list", Short: "List things", Run: func(*cobra.Command, []string) {}})

	tm, err := InitializeWithOptions(root, testFS(), opts)
	require.NoError(t, err)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, tm, &out
}

func TestHelpCommand(t *testing.T) {
	t.Run("topic list", func(t *testing.T) {
		root, _, out := newRoot(t, Options{})
		root.SetArgs([]string{"help", "topics"})
		require.NoError(t, root.Execute())

		assert.Contains(t, out.String(), "General topics:")
		assert.Contains(t, out.String(), "  syntax\n")
		assert.Contains(t, out.String(), "Option topics:")
		assert.Contains(t, out.String(), "  --format\n")
		assert.Contains(t, out.String(), "app help <topic>")
	})

	t.Run("topic is rendered", func(t *testing.T) {
		root, _, out := newRoot(t, Options{Renderer: upperRenderer{}})
		root.SetArgs([]string{"help", "syntax"})
		require.NoError(t, root.Execute())

		assert.Equal(t, "# SYNTAX\n\nONE REGULAR EXPRESSION PER LINE.", out.String())
	})

	t.Run("command help", func(t *testing.T) {
		root, _, out := newRoot(t, Options{})
		root.SetArgs([]string{"help", "list"})
		require.NoError(t, root.Execute())

		assert.Contains(t, out.String(), "List things")
	})
}

func TestTopicCommand(t *testing.T) {
	root, tm, out := newRoot(t, Options{})
	root.AddCommand(tm.Command("syntax", "syntax", "Show the syntax"))
	root.AddCommand(tm.Command("gone", "gone", "Missing topic"))

	root.SetArgs([]string{"syntax"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "One regular expression per line.")

	root.SetArgs([]string{"gone"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone")
}

func TestEmptyTopics(t *testing.T) {
	root := &cobra.Command{Use: "app", Run: func(*cobra.Command, []string) {}}
	tm, err := Initialize(root, fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, tm.ListTopics())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "No help topics available.")
}

func TestGlamourRenderer(t *testing.T) {
	r := &GlamourRenderer{Style: StyleNoTTY, Width: 60}

	plain := r.Render("# Title", ".txt")
	assert.Equal(t, "# Title", plain, "non-markdown passes through")

	rendered := r.Render("# Title\n\nSome text.", ".md")
	assert.Contains(t, rendered, "Title")
	assert.Contains(t, rendered, "Some text.")

	bad := &GlamourRenderer{Style: "/does/not/exist.json"}
	assert.Equal(t, "# Title", bad.Render("# Title", ".md"), "style errors fall back to the content")
}
