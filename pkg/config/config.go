package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/acquire"
	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/paths"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "HIDEFOLDER_"

// Settings backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the merged runtime configuration
type Config struct {
	Selectors tree.Selectors `koanf:"selectors"`
	Acquire   acquire.Policy `koanf:"acquire"`
	Watch     Watch          `koanf:"watch"`
	Settings  Settings       `koanf:"settings"`
	Output    Output         `koanf:"output"`
}

// Watch tunes the filesystem host
type Watch struct {
	Debounce time.Duration `koanf:"debounce"`
	Ignore   []string      `koanf:"ignore"` // Directory name globs the filesystem host skips
}

// Settings says where the user's folder rules are persisted
type Settings struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// Output selects how commands print results
type Output struct {
	Format string `koanf:"format"`
}

// OutputFormat parses Output.Format. Load has already validated it.
func (c *Config) OutputFormat() ui.Format {
	f, _ := ui.ParseFormat(c.Output.Format)
	return f
}

// LoadOptions controls Load
type LoadOptions struct {
	// File is an explicit config file; empty means look in the XDG config dir
	File string
	// Overrides are applied last, keyed by dotted path ("output.format")
	Overrides map[string]interface{}
	// Paths resolves default locations; nil means paths.New()
	Paths *paths.Paths
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Default returns the embedded defaults with no user file or environment
func Default() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	return finish(k, paths.New())
}

// Load merges defaults, the user config file, the environment and
// overrides into a Config
func Load(opts LoadOptions) (*Config, error) {
	p := opts.Paths
	if p == nil {
		p = paths.New()
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	path := opts.File
	if path == "" {
		path = p.ConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", path).
			WithDetail("path", path)
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Caller overrides (command-line flags)
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	return finish(k, p)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config file type %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

func finish(k *koanf.Koanf, p *paths.Paths) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcess(&cfg, p); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func postProcess(cfg *Config, p *paths.Paths) error {
	cfg.Selectors = cfg.Selectors.WithDefaults()

	if cfg.Acquire.MaxAttempts < 1 {
		return errors.Newf(errors.ErrConfigParse, "acquire.max_attempts must be at least 1, got %d", cfg.Acquire.MaxAttempts)
	}
	if cfg.Acquire.Delay < 0 {
		return errors.Newf(errors.ErrConfigParse, "acquire.delay must not be negative, got %s", cfg.Acquire.Delay)
	}
	if cfg.Watch.Debounce < 0 {
		return errors.Newf(errors.ErrConfigParse, "watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}

	cfg.Settings.Backend = strings.ToLower(strings.TrimSpace(cfg.Settings.Backend))
	switch cfg.Settings.Backend {
	case "":
		cfg.Settings.Backend = BackendFile
	case BackendFile, BackendSQLite:
	default:
		return errors.Newf(errors.ErrConfigParse, "unknown settings backend %q", cfg.Settings.Backend).
			WithDetail("backend", cfg.Settings.Backend)
	}
	if cfg.Settings.Path == "" {
		cfg.Settings.Path = p.SettingsPath(cfg.Settings.Backend)
	} else {
		cfg.Settings.Path = paths.ExpandHome(cfg.Settings.Path)
	}

	if _, err := ui.ParseFormat(cfg.Output.Format); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "invalid output.format")
	}

	return nil
}
