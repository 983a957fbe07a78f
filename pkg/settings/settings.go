// Package settings holds the user's folder rules and the enable switch, and
// persists them. Three backends are provided: a single file (TOML, YAML or
// JSON with comments), a SQLite key-value table, and memory.
//
// The persisted keys are "folders" and "enable", the same keys the Hidden
// Folder editor plugin writes to its data.json.
package settings

import (
	"context"
	"io"
	"strings"

	"github.com/arthur-debert/hidefolder/pkg/errors"
)

// Settings is the user's configuration
type Settings struct {
	// Patterns is the raw rule text, one regular expression per line
	Patterns string `json:"folders" yaml:"folders" toml:"folders,multiline" comment:"One regular expression per line. Matching folders are hidden."`
	// Enabled turns suppression on
	Enabled bool `json:"enable" yaml:"enable" toml:"enable" comment:"Hide matching folders when true."`
}

// Defaults returns the settings used when nothing was saved
func Defaults() Settings {
	return Settings{Patterns: "", Enabled: false}
}

// Lines returns the non-blank pattern lines in order
func (s Settings) Lines() []string {
	var out []string
	for _, line := range strings.Split(s.Patterns, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// WithPattern returns a copy with line appended, unless it is already present
func (s Settings) WithPattern(line string) Settings {
	for _, l := range s.Lines() {
		if l == line {
			return s
		}
	}
	s.Patterns = strings.Join(append(s.Lines(), line), "\n")
	return s
}

// WithoutPattern returns a copy with every occurrence of line removed, and
// whether anything was removed
func (s Settings) WithoutPattern(line string) (Settings, bool) {
	var kept []string
	removed := false
	for _, l := range s.Lines() {
		if l == line {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	if removed {
		s.Patterns = strings.Join(kept, "\n")
	}
	return s, removed
}

// Store loads and saves Settings. Load returns Defaults when nothing was
// saved yet.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Watcher is implemented by stores that can report edits made by another
// process. fn receives the freshly loaded settings, or an error.
type Watcher interface {
	Watch(ctx context.Context, fn func(Settings, error)) error
}

// Backend names
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the store for a backend. Callers should Close the result.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendMemory:
		return NewMemoryStore(Defaults()), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown settings backend %q", backend).
			WithDetail("backend", backend)
	}
}

// Close releases the store's resources, if it holds any
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
