// Package engine keeps the host tree's folder visibility in sync with the
// user's rules for as long as it runs.
//
// Start loads the settings and looks for the container in the background.
// Once found, the container is observed and every change batch triggers a
// classification pass built from a freshly compiled rule set. Layout changes
// re-resolve the container. Toggling, saving settings and Stop restore every
// suppressed folder.
//
// Every operation runs under one mutex, so passes never interleave. Host
// callbacks (change batches, layout signals) take the same mutex; hosts must
// deliver them outside their own locks.
package engine

import (
	"context"
	"sync"

	"github.com/arthur-debert/hidefolder/pkg/acquire"
	"github.com/arthur-debert/hidefolder/pkg/classifier"
	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/notify"
	"github.com/arthur-debert/hidefolder/pkg/observer"
	"github.com/arthur-debert/hidefolder/pkg/rules"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures an Engine. Host and Store are required.
type Options struct {
	Host      tree.Host
	Store     settings.Store
	Notifier  notify.Notifier // Defaults to notify.Discard
	Selectors tree.Selectors  // Empty fields take tree.DefaultSelectors
	Policy    acquire.Policy  // Zero value means acquire.DefaultPolicy
	Logger    *zerolog.Logger // Defaults to the "engine" component logger
}

// Engine is the lifecycle controller
type Engine struct {
	id         string
	host       tree.Host
	store      settings.Store
	notifier   notify.Notifier
	sel        tree.Selectors
	policy     acquire.Policy
	logger     zerolog.Logger
	classifier *classifier.Classifier
	observer   *observer.Observer

	mu           sync.Mutex
	settings     settings.Settings
	started      bool
	stopped      bool
	acquiring    bool
	acqCancel    context.CancelFunc
	acqDone      chan struct{}
	ready        chan struct{}
	acqErr       error
	layoutCancel func()
	passes       int
}

// New creates a stopped engine
func New(opts Options) (*Engine, error) {
	if opts.Host == nil {
		return nil, errors.New(errors.ErrInvalidInput, "engine needs a host")
	}
	if opts.Store == nil {
		return nil, errors.New(errors.ErrInvalidInput, "engine needs a settings store")
	}

	e := &Engine{
		id:       uuid.NewString(),
		host:     opts.Host,
		store:    opts.Store,
		notifier: opts.Notifier,
		sel:      opts.Selectors.WithDefaults(),
		policy:   opts.Policy,
		settings: settings.Defaults(),
	}
	if e.notifier == nil {
		e.notifier = notify.Discard
	}
	if e.policy == (acquire.Policy{}) {
		e.policy = acquire.DefaultPolicy()
	}
	if opts.Logger != nil {
		e.logger = opts.Logger.With().Str("engine", e.id).Logger()
	} else {
		e.logger = logging.GetLogger("engine").With().Str("engine", e.id).Logger()
	}
	e.classifier = classifier.NewWithLogger(e.logger)
	e.observer = observer.NewWithLogger(e.onChange, e.logger)

	// Stays open until the first Start finishes acquiring
	e.ready = make(chan struct{})
	return e, nil
}

// Start loads the settings and begins looking for the container. It returns
// once acquisition is under way; Ready is closed when it ends. Calling Start
// while acquiring or attached does nothing; calling it after a failed
// acquisition tries again.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return errors.New(errors.ErrInvalidInput, "engine is stopped")
	}
	if e.acquiring || e.observer.State() == observer.Attached {
		return nil
	}

	done := logging.LogOperationStart(e.logger, "start")
	defer done()

	s, err := e.store.Load(ctx)
	if err != nil {
		return wrapStore(err, errors.ErrSettingsLoad, "failed to load settings")
	}
	e.settings = s
	e.reportInvalidLocked()
	e.logger.Info().
		Bool("enabled", s.Enabled).
		Int("patterns", len(s.Lines())).
		Msg("Settings loaded")

	if e.started {
		// Ready of the previous attempt is already closed
		e.ready = make(chan struct{})
	}
	e.started = true
	e.acqErr = nil
	e.acquiring = true

	acqCtx, cancel := context.WithCancel(ctx)
	e.acqCancel = cancel
	e.acqDone = make(chan struct{})
	go e.runAcquire(acqCtx, e.acqDone, e.ready)
	return nil
}

func (e *Engine) runAcquire(ctx context.Context, done, ready chan struct{}) {
	defer close(done)

	c, err := acquire.AcquireWithLogger(ctx, e.policy, acquire.HostQuery(e.host, e.sel.Container), e.logger)

	e.mu.Lock()
	defer e.mu.Unlock()
	defer close(ready)

	e.acquiring = false
	e.acqCancel = nil

	switch {
	case err != nil && ctx.Err() != nil:
		e.acqErr = err
		e.logger.Debug().Msg("Acquisition cancelled")
	case err != nil:
		e.acqErr = err
		e.logger.Warn().Err(err).Msg("Container not found")
		e.notifier.Notify(notify.Notice{Kind: notify.KindAcquireFailed, Err: err})
	case e.stopped:
	default:
		e.observer.Attach(c)
		if e.layoutCancel == nil {
			e.layoutCancel = e.host.OnLayoutChange(e.onLayoutChange)
		}
		e.logger.Info().Str("container", c.Key()).Msg("Container acquired")
		e.classifyLocked()
	}
}

// Ready is closed when the current acquisition attempt ends
func (e *Engine) Ready() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// AcquireErr returns why the last acquisition failed, or nil
func (e *Engine) AcquireErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acqErr
}

// onChange runs once per change batch of the observed container
func (e *Engine) onChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.classifyLocked()
}

// onLayoutChange re-resolves the container and follows it when it changed
func (e *Engine) onLayoutChange() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}

	c, ok := e.host.Container(e.sel.Container)
	current := e.observer.Current()

	if !ok {
		if current != nil {
			e.logger.Info().Str("container", current.Key()).Msg("Container vanished")
			e.observer.Detach()
		}
		return
	}
	if current != nil && tree.Same(current, c) {
		return
	}

	e.logger.Info().Str("container", c.Key()).Msg("Container replaced")
	e.observer.Attach(c)
	e.classifyLocked()
}

// classifyLocked runs one pass with rules compiled from the current settings
func (e *Engine) classifyLocked() int {
	c := e.observer.Current()
	if c == nil {
		return 0
	}
	e.passes++
	set := rules.Compile(e.settings.Patterns)
	n := e.classifier.Classify(c.Folders(), set, e.settings.Enabled)
	if n > 0 {
		e.notifier.Notify(notify.Notice{Kind: notify.KindSuppressed, Count: n})
	}
	return n
}

func (e *Engine) restoreLocked() int {
	c := e.observer.Current()
	if c == nil {
		return 0
	}
	n := e.classifier.RestoreAll(c.Folders())
	if n > 0 {
		e.notifier.Notify(notify.Notice{Kind: notify.KindRestored, Count: n})
	}
	return n
}

func (e *Engine) reportInvalidLocked() {
	set := rules.Compile(e.settings.Patterns)
	bad := set.Errors()
	if len(bad) == 0 {
		return
	}
	for _, le := range bad {
		e.logger.Warn().
			Int("line", le.Line).
			Str("pattern", le.Pattern).
			Err(le.Err).
			Msg("Invalid pattern skipped")
	}
	e.notifier.Notify(notify.Notice{Kind: notify.KindInvalidRules, Count: len(bad), Err: set.Err()})
}

// Refresh runs one classification pass now and returns how many folders it
// newly suppressed
func (e *Engine) Refresh() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return 0
	}
	return e.classifyLocked()
}

// SetEnabled persists the switch. Enabling classifies once; disabling
// restores every suppressed folder.
func (e *Engine) SetEnabled(ctx context.Context, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setEnabledLocked(ctx, enabled)
}

// Toggle flips the switch and returns the new state
func (e *Engine) Toggle(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := !e.settings.Enabled
	if err := e.setEnabledLocked(ctx, next); err != nil {
		return e.settings.Enabled, err
	}
	return next, nil
}

func (e *Engine) setEnabledLocked(ctx context.Context, enabled bool) error {
	if e.stopped {
		return errors.New(errors.ErrInvalidInput, "engine is stopped")
	}
	next := e.settings
	next.Enabled = enabled
	if err := e.store.Save(ctx, next); err != nil {
		return wrapStore(err, errors.ErrSettingsSave, "failed to save settings")
	}
	e.settings = next
	e.logger.Info().Bool("enabled", enabled).Msg("Suppression toggled")

	if enabled {
		e.classifyLocked()
	} else {
		e.restoreLocked()
	}
	return nil
}

// SaveSettings persists s as the settings editor does on save, then
// restores everything and classifies again with the new rules
func (e *Engine) SaveSettings(ctx context.Context, s settings.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New(errors.ErrInvalidInput, "engine is stopped")
	}
	if err := e.store.Save(ctx, s); err != nil {
		return wrapStore(err, errors.ErrSettingsSave, "failed to save settings")
	}
	e.settings = s
	e.notifier.Notify(notify.Notice{Kind: notify.KindSettingsSaved})
	e.reportInvalidLocked()
	e.resyncLocked()
	return nil
}

// ReloadSettings re-reads the store, for edits made outside this process,
// and resyncs when anything changed
func (e *Engine) ReloadSettings(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	s, err := e.store.Load(ctx)
	if err != nil {
		return wrapStore(err, errors.ErrSettingsLoad, "failed to reload settings")
	}
	if s == e.settings {
		return nil
	}
	e.settings = s
	e.logger.Info().Bool("enabled", s.Enabled).Msg("Settings reloaded")
	e.reportInvalidLocked()
	e.resyncLocked()
	return nil
}

func (e *Engine) resyncLocked() {
	e.restoreLocked()
	e.classifyLocked()
}

// Stop cancels any acquisition in flight, restores every suppressed folder,
// and stops observing. Nothing is classified afterwards. Stop is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	cancel, done := e.acqCancel, e.acqDone
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	restored := e.restoreLocked()
	e.observer.Detach()
	if e.layoutCancel != nil {
		e.layoutCancel()
		e.layoutCancel = nil
	}
	e.logger.Info().Int("restored", restored).Msg("Engine stopped")
}

// Settings returns the settings in effect
func (e *Engine) Settings() settings.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// State reports whether a container is being observed
func (e *Engine) State() observer.State {
	return e.observer.State()
}

// Nodes returns the folders of the observed container, or nil when detached
func (e *Engine) Nodes() []tree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.observer.Current()
	if c == nil {
		return nil
	}
	return c.Folders()
}

// Passes returns how many classification passes have run
func (e *Engine) Passes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passes
}

// wrapStore gives uncoded store errors a code; coded ones pass through
func wrapStore(err error, code errors.ErrorCode, msg string) error {
	if errors.GetErrorCode(err) != errors.ErrUnknown {
		return err
	}
	return errors.Wrap(err, code, msg)
}
