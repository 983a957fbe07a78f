package hidefolder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/hidefolder/pkg/engine"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/arthur-debert/hidefolder/pkg/tree/fstree"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "watch [DIR]",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		Example: MsgWatchExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, a, dirArg(args))
		},
	}
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// runWatch drives the engine over dir until ctx is done
func runWatch(ctx context.Context, cmd *cobra.Command, a *app, dir string) error {
	logger := logging.GetLogger("cmd.watch")

	host, err := fstree.NewHost(dir, fstree.Options{
		Debounce: a.cfg.Watch.Debounce,
		Ignore:   a.cfg.Watch.Ignore,
	})
	if err != nil {
		return err
	}
	defer func() { _ = host.Close() }()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = settings.Close(store) }()

	out := cmd.OutOrStdout()
	eng, err := engine.New(engine.Options{
		Host:      host,
		Store:     store,
		Notifier:  a.notifier(out),
		Selectors: a.cfg.Selectors,
		Policy:    a.cfg.Acquire,
	})
	if err != nil {
		return err
	}

	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	select {
	case <-eng.Ready():
	case <-ctx.Done():
		return nil
	}
	if err := eng.AcquireErr(); err != nil {
		return err
	}

	if w, ok := store.(settings.Watcher); ok {
		err := w.Watch(ctx, func(_ settings.Settings, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("Settings changed but could not be read")
				return
			}
			if err := eng.ReloadSettings(ctx); err != nil {
				logger.Warn().Err(err).Msg("Failed to apply changed settings")
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Settings changes will not be picked up")
		}
	}

	logger.Info().Str("root", host.Root()).Msg("Watching")
	if r, err := a.renderer(out); err == nil {
		_ = r.RenderMessage(fmt.Sprintf(MsgWatching, host.Root()))
	}

	<-ctx.Done()
	eng.Stop()

	logger.Info().Int("passes", eng.Passes()).Msg("Stopped")
	if r, err := a.renderer(out); err == nil {
		_ = r.RenderMessage(fmt.Sprintf(MsgStopped, host.Root()))
	}
	return nil
}
