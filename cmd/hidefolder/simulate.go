package hidefolder

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/hidefolder/internal/version"
	"github.com/arthur-debert/hidefolder/pkg/acquire"
	"github.com/arthur-debert/hidefolder/pkg/engine"
	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/notify"
	"github.com/arthur-debert/hidefolder/pkg/settings"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/arthur-debert/hidefolder/pkg/tree/memtree"
	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

type simulateSummary struct {
	Passes int `json:"passes"`
	Rounds int `json:"rounds"`
	Hidden int `json:"hidden"`
}

func newSimulateCmd(a *app) *cobra.Command {
	var (
		enable    bool
		maxRounds int
		output    string
	)

	cmd := &cobra.Command{
		Use:     "simulate FILE",
		Short:   MsgSimulateShort,
		Long:    MsgSimulateLong,
		Example: MsgSimulateExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.simulate")

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", args[0])
			}
			doc, err := memtree.Parse(f)
			_ = f.Close()
			if err != nil {
				return err
			}

			s, err := loadSettings(cmd, a)
			if err != nil {
				return err
			}
			if enable {
				s.Enabled = true
			}

			// The restore at Stop is cleanup, not something to report
			settled := false
			notifier := a.notifier(cmd.ErrOrStderr())
			quiet := notify.Func(func(n notify.Notice) {
				if !settled {
					notifier.Notify(n)
				}
			})

			// The snapshot is complete, so one lookup is enough
			eng, err := engine.New(engine.Options{
				Host:      memtree.NewHost(doc, a.cfg.Selectors),
				Store:     settings.NewMemoryStore(s),
				Notifier:  quiet,
				Selectors: a.cfg.Selectors,
				Policy:    acquire.Policy{MaxAttempts: 1},
			})
			if err != nil {
				return err
			}
			if err := eng.Start(cmd.Context()); err != nil {
				return err
			}
			defer eng.Stop()

			<-eng.Ready()
			if err := eng.AcquireErr(); err != nil {
				return err
			}

			rounds, err := doc.Settle(maxRounds)
			settled = true
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "document did not settle")
			}

			hidden := 0
			for _, e := range tree.Snapshot(eng.Nodes()) {
				if e.Suppressed {
					hidden++
				}
			}
			summary := simulateSummary{Passes: eng.Passes(), Rounds: rounds, Hidden: hidden}
			logger.Info().
				Int("passes", summary.Passes).
				Int("rounds", summary.Rounds).
				Int("hidden", summary.Hidden).
				Msg("Simulation settled")

			if err := writeDocument(cmd, doc, output); err != nil {
				return err
			}

			r, err := a.renderer(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			line := ui.Line{Text: fmt.Sprintf(MsgSimulateSummary, summary.Passes, summary.Rounds, summary.Hidden), Style: "Muted"}
			return r.Render("", []ui.Line{line}, summary)
		},
	}

	cmd.Flags().BoolVar(&enable, "enable", false, MsgFlagEnable)
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 100, MsgFlagRounds)
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	return cmd
}

func writeDocument(cmd *cobra.Command, doc *memtree.Document, output string) error {
	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to create %s", output)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return doc.WriteXML(w)
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// ManHeader is the header of the generated man page
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "HIDEFOLDER",
		Section: "1",
		Source:  "hidefolder " + version.Version,
		Manual:  "hidefolder manual",
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doc.GenMan(cmd.Root(), ManHeader(), cmd.OutOrStdout())
		},
	}
}
