package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/knadh/koanf/providers/file"
	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// codec encodes Settings in one file format
type codec struct {
	name   string
	decode func(data []byte, s *Settings) error
	encode func(s Settings) ([]byte, error)
}

var (
	tomlCodec = codec{
		name:   "toml",
		decode: func(data []byte, s *Settings) error { return toml.Unmarshal(data, s) },
		encode: func(s Settings) ([]byte, error) { return toml.Marshal(s) },
	}
	yamlCodec = codec{
		name:   "yaml",
		decode: func(data []byte, s *Settings) error { return yaml.Unmarshal(data, s) },
		encode: func(s Settings) ([]byte, error) { return yaml.Marshal(s) },
	}
	jsonCodec = codec{
		name: "json",
		decode: func(data []byte, s *Settings) error {
			return json.Unmarshal(jsonc.ToJSON(data), s)
		},
		encode: func(s Settings) ([]byte, error) {
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return nil, err
			}
			return append(data, '\n'), nil
		},
	}
)

func codecFor(path string) (codec, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return tomlCodec, true
	case ".yaml", ".yml":
		return yamlCodec, true
	case ".json", ".jsonc":
		return jsonCodec, true
	default:
		return codec{}, false
	}
}

// FileStore keeps Settings in one file whose format follows its extension
type FileStore struct {
	path  string
	codec codec
	mu    sync.Mutex
}

// NewFileStore creates a store for path. The file need not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "settings file path is empty")
	}
	c, ok := codecFor(path)
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported settings file type %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
	return &FileStore{path: path, codec: c}, nil
}

// Path returns the settings file location
func (f *FileStore) Path() string { return f.path }

// Load implements Store. Keys missing from the file keep their defaults.
func (f *FileStore) Load(_ context.Context) (Settings, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, errors.Wrapf(err, errors.ErrSettingsLoad, "failed to read %s", f.path).
			WithDetail("path", f.path)
	}

	s := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := f.codec.decode(data, &s); err != nil {
		return Settings{}, errors.Wrapf(err, errors.ErrSettingsLoad, "failed to parse %s as %s", f.path, f.codec.name).
			WithDetail("path", f.path)
	}
	return s, nil
}

// Save implements Store. The file is replaced atomically.
func (f *FileStore) Save(_ context.Context, s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.codec.encode(s)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSettingsSave, "failed to encode settings as %s", f.codec.name)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrSettingsSave, "failed to create %s", dir).WithDetail("path", f.path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrSettingsSave, "failed to create temp file in %s", dir).WithDetail("path", f.path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.ErrSettingsSave, "failed to write settings").WithDetail("path", f.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrSettingsSave, "failed to write settings").WithDetail("path", f.path)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrapf(err, errors.ErrSettingsSave, "failed to replace %s", f.path).WithDetail("path", f.path)
	}

	logger := logging.GetLogger("settings")
	logger.Debug().Str("path", f.path).Msg("Settings saved")
	return nil
}

// Watch implements Watcher. It reports every write to the file until ctx
// is done; a missing file is first created with the current settings.
func (f *FileStore) Watch(ctx context.Context, fn func(Settings, error)) error {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		current, err := f.Load(ctx)
		if err != nil {
			return err
		}
		if err := f.Save(ctx, current); err != nil {
			return err
		}
	}

	logger := logging.GetLogger("settings")
	provider := file.Provider(f.path)
	err := provider.Watch(func(_ interface{}, err error) {
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			fn(Settings{}, errors.Wrap(err, errors.ErrHostWatch, "settings file watch failed").WithDetail("path", f.path))
			return
		}
		logger.Debug().Str("path", f.path).Msg("Settings file changed")
		fn(f.Load(ctx))
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrHostWatch, "failed to watch %s", f.path).WithDetail("path", f.path)
	}

	go func() {
		<-ctx.Done()
		_ = provider.Unwatch()
	}()
	return nil
}
