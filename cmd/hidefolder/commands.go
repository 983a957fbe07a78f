package hidefolder

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/arthur-debert/hidefolder/internal/version"
	"github.com/arthur-debert/hidefolder/pkg/cobrax/topics"
	"github.com/arthur-debert/hidefolder/pkg/config"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/notify"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries the global flags and what is derived from them
type app struct {
	verbosity    int
	configFile   string
	settingsPath string
	backend      string
	format       string

	cfg *config.Config
}

// load sets up logging and merges the configuration layers, flags last
func (a *app) load(cmd *cobra.Command) error {
	logging.SetupLoggerWithOutput(a.verbosity, cmd.ErrOrStderr())
	log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")

	overrides := map[string]interface{}{}
	if a.settingsPath != "" {
		overrides["settings.path"] = a.settingsPath
	}
	if a.backend != "" {
		overrides["settings.backend"] = a.backend
	}
	if a.format != "" {
		overrides["output.format"] = a.format
	}

	cfg, err := config.Load(config.LoadOptions{File: a.configFile, Overrides: overrides})
	if err != nil {
		return fmt.Errorf(MsgErrLoadConfig, err)
	}
	a.cfg = cfg
	log.Debug().
		Str("backend", cfg.Settings.Backend).
		Str("settings", cfg.Settings.Path).
		Str("format", cfg.Output.Format).
		Msg("Configuration loaded")
	return nil
}

// openStore opens the configured settings store; callers close it with
// settings.Close
func (a *app) openStore() (settings.Store, error) {
	store, err := settings.Open(a.cfg.Settings.Backend, a.cfg.Settings.Path)
	if err != nil {
		return nil, fmt.Errorf(MsgErrOpenSettings, err)
	}
	return store, nil
}

func (a *app) outputFormat(w io.Writer) ui.Format {
	return ui.Resolve(a.cfg.OutputFormat(), w)
}

func (a *app) renderer(w io.Writer) (ui.Renderer, error) {
	return ui.NewRenderer(a.outputFormat(w), w)
}

// notifier shows notices on w and records them in the log
func (a *app) notifier(w io.Writer) notify.Notifier {
	return notify.Multi(
		notify.NewTerminal(w, a.outputFormat(w)),
		notify.Log{Logger: logging.GetLogger("notify")},
	)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "hidefolder",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVar(&a.configFile, "config", "", MsgFlagConfig)
	flags.StringVar(&a.settingsPath, "settings", "", MsgFlagSettings)
	flags.StringVar(&a.backend, "backend", "", MsgFlagBackend)
	flags.StringVar(&a.format, "format", "", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "settings", Title: "SETTINGS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	rootCmd.SetHelpCommandGroupID("misc")

	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newSimulateCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))
	rootCmd.AddCommand(newEnableCmd(a, "enable", MsgEnableShort, true))
	rootCmd.AddCommand(newEnableCmd(a, "disable", MsgDisableShort, false))
	rootCmd.AddCommand(newToggleCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	sub, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		tm, err := topics.InitializeWithOptions(rootCmd, sub, topics.Options{
			Renderer: topics.NewGlamourRenderer(),
		})
		if err == nil {
			syntax := tm.Command("syntax", "syntax", MsgSyntaxShort)
			syntax.GroupID = "misc"
			rootCmd.AddCommand(syntax)
		}
	}

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "hidefolder version %s\n", version.Version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}
