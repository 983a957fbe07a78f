// Package paths resolves where hidefolder keeps its files. It follows the
// XDG Base Directory specification, with environment overrides for each
// directory.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/hidefolder/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for hidefolder
	EnvConfigDir = "HIDEFOLDER_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for hidefolder
	EnvDataDir = "HIDEFOLDER_DATA_DIR"

	// EnvStateDir overrides the XDG state directory for hidefolder
	EnvStateDir = "HIDEFOLDER_STATE_DIR"
)

// Directory and file names. These are not user-configurable; config file
// contents are.
const (
	// AppDirName is the per-application directory under each XDG base
	AppDirName = "hidefolder"

	// ConfigFileTOML and ConfigFileYAML are the runtime config candidates
	ConfigFileTOML = "config.toml"
	ConfigFileYAML = "config.yaml"

	// SettingsFile is the default file-backend settings location
	SettingsFile = "settings.toml"

	// SettingsDB is the default sqlite-backend settings location
	SettingsDB = "settings.db"

	// LogFileName is the name of the log file
	LogFileName = "hidefolder.log"
)

// Paths holds the resolved directories
type Paths struct {
	configDir string
	dataDir   string
	stateDir  string
}

// New resolves every directory from the environment
func New() *Paths {
	return &Paths{
		configDir: resolve(EnvConfigDir, xdg.ConfigHome, "XDG_CONFIG_HOME"),
		dataDir:   resolve(EnvDataDir, xdg.DataHome, "XDG_DATA_HOME"),
		stateDir:  resolve(EnvStateDir, xdg.StateHome, "XDG_STATE_HOME"),
	}
}

// resolve prefers the app override, then the live XDG variable (xdg caches
// its values at init), then the xdg default.
func resolve(override, base, xdgVar string) string {
	if dir := os.Getenv(override); dir != "" {
		return ExpandHome(dir)
	}
	if dir := os.Getenv(xdgVar); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(base, AppDirName)
}

// ConfigDir is where config.toml and settings.toml live
func (p *Paths) ConfigDir() string { return p.configDir }

// DataDir is where the sqlite settings database lives
func (p *Paths) DataDir() string { return p.dataDir }

// StateDir is where the log file lives
func (p *Paths) StateDir() string { return p.stateDir }

// LogFilePath returns the log file location
func (p *Paths) LogFilePath() string { return filepath.Join(p.stateDir, LogFileName) }

// ConfigFile returns the first existing runtime config file, or "" when
// there is none.
func (p *Paths) ConfigFile() string {
	for _, name := range []string{ConfigFileTOML, ConfigFileYAML} {
		path := filepath.Join(p.configDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// SettingsPath returns the default settings location for a backend
func (p *Paths) SettingsPath(backend string) string {
	if backend == "sqlite" {
		return filepath.Join(p.dataDir, SettingsDB)
	}
	return filepath.Join(p.configDir, SettingsFile)
}

// EnsureDir creates dir and its parents
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to create directory %s", dir).
			WithDetail("path", dir)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
