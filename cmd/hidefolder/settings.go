package hidefolder

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/notify"
	"github.com/arthur-debert/hidefolder/pkg/rules"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/spf13/cobra"
)

type settingsView struct {
	Backend  string        `json:"backend"`
	Path     string        `json:"path"`
	Enabled  bool          `json:"enabled"`
	Patterns []patternView `json:"patterns"`
}

type patternView struct {
	Line    int    `json:"line"`
	Pattern string `json:"pattern"`
	Error   string `json:"error,omitempty"`
}

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Short:   MsgSettingsShort,
		Long:    MsgSettingsLong,
		GroupID: "settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(cmd, a)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgSettingsShow,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(cmd, a)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: MsgSettingsPath,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return r.RenderMessage(a.cfg.Settings.Path)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [PATTERN...]",
		Short: MsgSettingsSet,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if err := validatePattern(p); err != nil {
					return err
				}
			}
			return updateSettings(cmd, a, func(s settings.Settings) (settings.Settings, string, error) {
				s.Patterns = strings.Join(args, "\n")
				return s, fmt.Sprintf(MsgPatternsReplaced, len(args)), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add PATTERN",
		Short: MsgSettingsAdd,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePattern(args[0]); err != nil {
				return err
			}
			return updateSettings(cmd, a, func(s settings.Settings) (settings.Settings, string, error) {
				return s.WithPattern(args[0]), fmt.Sprintf(MsgPatternAdded, args[0]), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove PATTERN",
		Short: MsgSettingsRemove,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSettings(cmd, a, func(s settings.Settings) (settings.Settings, string, error) {
				next, removed := s.WithoutPattern(args[0])
				if !removed {
					return s, "", errors.Newf(errors.ErrNotFound, MsgErrNoPattern, args[0])
				}
				return next, fmt.Sprintf(MsgPatternRemoved, args[0]), nil
			})
		},
	})

	return cmd
}

// validatePattern rejects a line the rule compiler would skip
func validatePattern(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New(errors.ErrInvalidInput, "empty pattern")
	}
	if strings.ContainsAny(p, "\r\n") {
		return errors.Newf(errors.ErrInvalidInput, "pattern %q spans several lines", p)
	}
	return rules.Compile(p).Err()
}

func showSettings(cmd *cobra.Command, a *app) error {
	s, err := loadSettings(cmd, a)
	if err != nil {
		return err
	}

	view := settingsView{
		Backend:  a.cfg.Settings.Backend,
		Path:     a.cfg.Settings.Path,
		Enabled:  s.Enabled,
		Patterns: []patternView{},
	}
	invalid := make(map[int]error)
	for _, le := range rules.Compile(s.Patterns).Errors() {
		invalid[le.Line] = le.Err
	}

	status := ui.Line{Text: MsgDisabled, Style: "Muted"}
	if s.Enabled {
		status = ui.Line{Text: MsgEnabled, Style: "Bold"}
	}
	lines := []ui.Line{status, {}}

	// Line numbers follow the raw text, as the compiler reports them
	for i, raw := range strings.Split(s.Patterns, "\n") {
		p := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		pv := patternView{Line: i + 1, Pattern: p}
		line := ui.Line{Indent: 1, Text: fmt.Sprintf("%2d  %s", i+1, p), Style: "Rule"}
		if err, ok := invalid[i+1]; ok {
			pv.Error = err.Error()
			line.Style = "Error"
			line.Note = fmt.Sprintf(MsgNoteInvalid, err)
		}
		view.Patterns = append(view.Patterns, pv)
		lines = append(lines, line)
	}
	if len(view.Patterns) == 0 {
		lines = append(lines, ui.Line{Indent: 1, Text: MsgNoRules, Style: "Muted"})
	}

	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.Render(fmt.Sprintf(MsgSettingsTitle, a.cfg.Settings.Path), lines, view)
}

// updateSettings loads, edits and saves the settings, then reports the change
func updateSettings(cmd *cobra.Command, a *app, edit func(settings.Settings) (settings.Settings, string, error)) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = settings.Close(store) }()

	s, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}
	next, message, err := edit(s)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), next); err != nil {
		return err
	}

	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := r.RenderMessage(message); err != nil {
		return err
	}
	a.notifier(cmd.ErrOrStderr()).Notify(notify.Notice{Kind: notify.KindSettingsSaved})
	return nil
}

func newEnableCmd(a *app, use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: "settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSettings(cmd, a, func(s settings.Settings) (settings.Settings, string, error) {
				s.Enabled = enabled
				return s, enabledMessage(enabled), nil
			})
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle",
		Short:   MsgToggleShort,
		GroupID: "settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSettings(cmd, a, func(s settings.Settings) (settings.Settings, string, error) {
				s.Enabled = !s.Enabled
				return s, enabledMessage(s.Enabled), nil
			})
		},
	}
}

func enabledMessage(enabled bool) string {
	if enabled {
		return MsgEnabled
	}
	return MsgDisabled
}
