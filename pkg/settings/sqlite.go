package settings

import (
	"context"
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Keys of the settings table
const (
	keyFolders = "folders"
	keyEnable  = "enable"
)

// DefaultPollInterval is how often SQLiteStore.Watch checks for commits
// from other connections
const DefaultPollInterval = 500 * time.Millisecond

// SQLiteStore keeps Settings as rows of a key-value table
type SQLiteStore struct {
	db   *sql.DB
	path string

	// PollInterval overrides DefaultPollInterval for Watch
	PollInterval time.Duration
}

// OpenSQLite creates or opens the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "settings database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSettingsLoad, "failed to create %s", filepath.Dir(path)).
			WithDetail("path", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to open database").WithDetail("path", path)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to connect to database").WithDetail("path", path)
	}

	// One connection: SQLite has a single writer, and data_version is
	// per connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, errors.ErrSettingsLoad, "failed to execute %q", pragma).WithDetail("path", path)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to apply schema").WithDetail("path", path)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database location
func (s *SQLiteStore) Path() string { return s.path }

// DB returns the underlying sql.DB for direct queries
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load implements Store. Missing keys keep their defaults.
func (s *SQLiteStore) Load(ctx context.Context) (Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings WHERE key IN (?, ?)", keyFolders, keyEnable)
	if err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrSettingsLoad, "failed to query settings").WithDetail("path", s.path)
	}
	defer func() { _ = rows.Close() }()

	out := Defaults()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, errors.Wrap(err, errors.ErrSettingsLoad, "failed to read settings row").WithDetail("path", s.path)
		}
		switch key {
		case keyFolders:
			out.Patterns = value
		case keyEnable:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, errors.Wrapf(err, errors.ErrSettingsLoad, "invalid %s value %q", keyEnable, value).
					WithDetail("path", s.path)
			}
			out.Enabled = enabled
		}
	}
	if err := rows.Err(); err != nil {
		return Settings{}, errors.Wrap(err, errors.ErrSettingsLoad, "failed to read settings").WithDetail("path", s.path)
	}
	return out, nil
}

// Save implements Store. Both keys are written in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrSettingsSave, "failed to begin transaction").WithDetail("path", s.path)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	for _, kv := range [][2]string{
		{keyFolders, st.Patterns},
		{keyEnable, strconv.FormatBool(st.Enabled)},
	} {
		if _, err := tx.ExecContext(ctx, upsert, kv[0], kv[1]); err != nil {
			return errors.Wrapf(err, errors.ErrSettingsSave, "failed to write %s", kv[0]).WithDetail("path", s.path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrSettingsSave, "failed to commit settings").WithDetail("path", s.path)
	}

	logger := logging.GetLogger("settings")
	logger.Debug().Str("path", s.path).Msg("Settings saved")
	return nil
}

// Watch implements Watcher by polling PRAGMA data_version, which changes
// only when another connection commits. Writes through this store are not
// reported.
func (s *SQLiteStore) Watch(ctx context.Context, fn func(Settings, error)) error {
	version, err := s.dataVersion(ctx)
	if err != nil {
		return err
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			v, err := s.dataVersion(ctx)
			if err != nil {
				if ctx.Err() == nil {
					fn(Settings{}, err)
				}
				return
			}
			if v == version {
				continue
			}
			version = v
			fn(s.Load(ctx))
		}
	}()
	return nil
}

func (s *SQLiteStore) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, errors.Wrapf(err, errors.ErrHostWatch, "failed to read data_version of %s", s.path)
	}
	return v, nil
}
