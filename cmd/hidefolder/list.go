package hidefolder

import (
	"fmt"
	"path"
	"strings"

	"github.com/arthur-debert/hidefolder/pkg/classifier"
	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/notify"
	"github.com/arthur-debert/hidefolder/pkg/rules"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/arthur-debert/hidefolder/pkg/tree/fstree"
	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/spf13/cobra"
)

// folderEntry is one folder in list output
type folderEntry struct {
	Path       string `json:"path"`
	Hidden     bool   `json:"hidden"`
	Suppressed bool   `json:"suppressed"`
	Line       int    `json:"line,omitempty"`
	Rule       string `json:"rule,omitempty"`
}

type listResult struct {
	Root    string        `json:"root"`
	Enabled bool          `json:"enabled"`
	Folders []folderEntry `json:"folders"`
}

func newListCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list [DIR]",
		Short:   MsgListShort,
		Long:    MsgListLong,
		Example: MsgListExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.list")

			host, err := fstree.NewHost(dirArg(args), fstree.Options{Ignore: a.cfg.Watch.Ignore})
			if err != nil {
				return err
			}
			defer func() { _ = host.Close() }()

			c, ok := host.Container(a.cfg.Selectors.Container)
			if !ok {
				return errors.Newf(errors.ErrContainerNotFound, "%s is not readable", host.Root())
			}

			s, err := loadSettings(cmd, a)
			if err != nil {
				return err
			}
			set := compileAndReport(cmd, a, s)

			// Markers of the filesystem host live in memory, so classifying
			// never touches the directory
			nodes := c.Folders()
			cl := classifier.NewWithLogger(logger)
			n := cl.Classify(nodes, set, s.Enabled)
			logger.Info().Int("suppressed", n).Int("folders", len(nodes)).Msg("Classified")

			result := buildListResult(host.Root(), s.Enabled, cl.Plan(nodes, set, s.Enabled), tree.Snapshot(nodes))

			r, err := a.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return r.Render(fmt.Sprintf(MsgFoldersTitle, host.Root()), listLines(result, all), result)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, MsgFlagAll)
	return cmd
}

func buildListResult(root string, enabled bool, decisions []classifier.Decision, snapshot []tree.Entry) listResult {
	byPath := make(map[string]classifier.Decision, len(decisions))
	for _, d := range decisions {
		byPath[d.Path] = d
	}

	result := listResult{Root: root, Enabled: enabled, Folders: make([]folderEntry, 0, len(snapshot))}
	for _, e := range snapshot {
		fe := folderEntry{Path: e.Path, Hidden: e.Hidden, Suppressed: e.Suppressed}
		if d, ok := byPath[e.Path]; ok && d.Matched {
			fe.Line = d.Rule.Line
			fe.Rule = d.Rule.Pattern
		}
		result.Folders = append(result.Folders, fe)
	}
	return result
}

func listLines(result listResult, all bool) []ui.Line {
	var lines []ui.Line
	for _, f := range result.Folders {
		if f.Hidden && !all {
			continue
		}
		line := ui.Line{
			Indent: strings.Count(f.Path, "/"),
			Text:   path.Base(f.Path),
			Style:  "Visible",
		}
		switch {
		case f.Suppressed:
			line.Style = "Hidden"
			line.Note = fmt.Sprintf(MsgNoteRule, f.Line, f.Rule)
		case f.Hidden:
			line.Style = "Hidden"
			line.Note = MsgNoteParent
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, ui.Line{Text: MsgNoFolders, Style: "Muted"})
	}
	return lines
}

// loadSettings reads the configured store once
func loadSettings(cmd *cobra.Command, a *app) (settings.Settings, error) {
	store, err := a.openStore()
	if err != nil {
		return settings.Settings{}, err
	}
	defer func() { _ = settings.Close(store) }()
	return store.Load(cmd.Context())
}

// compileAndReport compiles the rules, telling the user about skipped lines
func compileAndReport(cmd *cobra.Command, a *app, s settings.Settings) *rules.Set {
	set := rules.Compile(s.Patterns)
	if bad := set.Errors(); len(bad) > 0 {
		a.notifier(cmd.ErrOrStderr()).Notify(notify.Notice{
			Kind:  notify.KindInvalidRules,
			Count: len(bad),
			Err:   set.Err(),
		})
	}
	return set
}

type checkResult struct {
	Path    string `json:"path"`
	Hidden  bool   `json:"hidden"`
	Line    int    `json:"line,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Enabled bool   `json:"enabled"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "check PATH...",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, a)
			if err != nil {
				return err
			}
			set := compileAndReport(cmd, a, s)

			results := make([]checkResult, 0, len(args))
			lines := make([]ui.Line, 0, len(args))
			for _, arg := range args {
				p := strings.Trim(strings.ReplaceAll(arg, "\\", "/"), "/")
				res := checkResult{Path: p, Enabled: s.Enabled}
				line := ui.Line{Text: p, Style: "Visible", Note: MsgNoteVisible}

				if rule, ok := set.Match(p); ok {
					res.Line, res.Rule = rule.Line, rule.Pattern
					res.Hidden = s.Enabled
					if s.Enabled {
						line.Style = "Hidden"
						line.Note = fmt.Sprintf(MsgNoteRule, rule.Line, rule.Pattern)
					} else {
						line.Note = fmt.Sprintf(MsgNoteRuleOff, rule.Line, rule.Pattern)
					}
				}
				results = append(results, res)
				lines = append(lines, line)
			}

			r, err := a.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return r.Render(MsgCheckTitle, lines, results)
		},
	}
}
