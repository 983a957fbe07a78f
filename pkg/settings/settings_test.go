package settings_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = settings.Settings{
	Patterns: "^archive$\n\\.bak$\nprivate/.*",
	Enabled:  true,
}

func TestLines(t *testing.T) {
	s := settings.Settings{Patterns: "a\r\n\n   \nb\nc\r"}
	assert.Equal(t, []string{"a", "b", "c"}, s.Lines())
	assert.Empty(t, settings.Defaults().Lines())
}

func TestWithPattern(t *testing.T) {
	s := settings.Defaults().WithPattern("^tmp$")
	assert.Equal(t, "^tmp$", s.Patterns)

	s = s.WithPattern("drafts")
	assert.Equal(t, "^tmp$\ndrafts", s.Patterns)

	// Duplicates are not added twice
	assert.Equal(t, s, s.WithPattern("drafts"))
}

func TestWithoutPattern(t *testing.T) {
	s := settings.Settings{Patterns: "a\nb\na\nc"}

	out, removed := s.WithoutPattern("a")
	assert.True(t, removed)
	assert.Equal(t, "b\nc", out.Patterns)

	same, removed := out.WithoutPattern("zzz")
	assert.False(t, removed)
	assert.Equal(t, out, same)
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) settings.Store{
		"toml": func(t *testing.T) settings.Store {
			s, err := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.toml"))
			require.NoError(t, err)
			return s
		},
		"yaml": func(t *testing.T) settings.Store {
			s, err := settings.NewFileStore(filepath.Join(t.TempDir(), "nested", "settings.yaml"))
			require.NoError(t, err)
			return s
		},
		"json": func(t *testing.T) settings.Store {
			s, err := settings.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) settings.Store {
			s, err := settings.OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"memory": func(t *testing.T) settings.Store {
			return settings.NewMemoryStore(settings.Defaults())
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, settings.Defaults(), got, "nothing saved yet")

			require.NoError(t, store.Save(ctx, sample))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sample, got)

			updated := settings.Settings{Patterns: "", Enabled: false}
			require.NoError(t, store.Save(ctx, updated))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, updated, got)
		})
	}
}

func TestFileStoreReadsPluginData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	content := `{
  // written by the editor plugin
  "folders": "^attachments$\narchive",
  "enable": true
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	store, err := settings.NewFileStore(path)
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Settings{Patterns: "^attachments$\narchive", Enabled: true}, got)
}

func TestFileStorePartialAndEmpty(t *testing.T) {
	dir := t.TempDir()

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("enable: true\n"), 0644))
	store, err := settings.NewFileStore(partial)
	require.NoError(t, err)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Settings{Enabled: true}, got)

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0644))
	store, err = settings.NewFileStore(empty)
	require.NoError(t, err)
	got, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), got)
}

func TestFileStoreTOMLIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := settings.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sample))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "folders")
	assert.Contains(t, string(data), "enable = true")
	assert.Contains(t, string(data), `"""`, "patterns are written as a multi-line string")

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreErrors(t *testing.T) {
	_, err := settings.NewFileStore("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = settings.NewFileStore("settings.ini")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"folders": `), 0644))
	store, err := settings.NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsLoad))

	// Parent is a file, so the save cannot create its directory
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0644))
	store, err = settings.NewFileStore(filepath.Join(parent, "settings.toml"))
	require.NoError(t, err)
	err = store.Save(context.Background(), sample)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsSave))
}

func TestFileStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := settings.NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan settings.Settings, 8)
	require.NoError(t, store.Watch(ctx, func(s settings.Settings, err error) {
		if err == nil {
			changes <- s
		}
	}))
	assert.FileExists(t, path, "watching creates the file")

	other, err := settings.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, other.Save(context.Background(), sample))

	require.Eventually(t, func() bool {
		select {
		case s := <-changes:
			return s == sample
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSQLiteStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := settings.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	store.PollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan settings.Settings, 8)
	require.NoError(t, store.Watch(ctx, func(s settings.Settings, err error) {
		if err == nil {
			changes <- s
		}
	}))

	other, err := settings.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = other.Close() }()
	require.NoError(t, other.Save(context.Background(), sample))

	select {
	case s := <-changes:
		assert.Equal(t, sample, s)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestSQLiteStoreRejectsBadEnable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := settings.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Save(context.Background(), sample))
	_, err = store.DB().Exec("UPDATE settings SET value = 'maybe' WHERE key = 'enable'")
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsLoad))
}

func TestMemoryStoreErrors(t *testing.T) {
	m := settings.NewMemoryStore(sample)
	boom := stderrors.New("boom")

	m.SaveErr = boom
	assert.ErrorIs(t, m.Save(context.Background(), settings.Defaults()), boom)
	assert.Equal(t, 0, m.Saves())

	m.LoadErr = boom
	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{"", settings.BackendFile, settings.BackendSQLite, settings.BackendMemory} {
		path := filepath.Join(dir, "settings.toml")
		if backend == settings.BackendSQLite {
			path = filepath.Join(dir, "settings.db")
		}
		store, err := settings.Open(backend, path)
		require.NoError(t, err, backend)
		assert.NoError(t, settings.Close(store))
	}

	_, err := settings.Open("redis", "x")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "redis"))
}
