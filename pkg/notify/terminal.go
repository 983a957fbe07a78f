package notify

import (
	"fmt"
	"io"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// Terminal writes notices to w in the given output format
type Terminal struct {
	w      io.Writer
	format ui.Format
	json   zerolog.Logger
}

// NewTerminal creates a notifier for w. FormatAuto must be resolved by the
// caller with ui.DetectFormat.
func NewTerminal(w io.Writer, format ui.Format) *Terminal {
	return &Terminal{
		w:      w,
		format: format,
		json:   zerolog.New(w).With().Timestamp().Logger(),
	}
}

// Notify implements Notifier
func (t *Terminal) Notify(n Notice) {
	switch t.format {
	case ui.FormatJSON:
		ev := t.json.Log().
			Str("kind", string(n.Kind)).
			Int("count", n.Count)
		if n.Err != nil {
			ev = ev.Err(n.Err)
		}
		ev.Msg(n.String())
	case ui.FormatTerminal:
		t.printer(n).Println(n.String())
	default:
		fmt.Fprintf(t.w, "%s %s\n", time.Now().Format(time.Kitchen), n.String())
	}
}

func (t *Terminal) printer(n Notice) *pterm.PrefixPrinter {
	var p pterm.PrefixPrinter
	switch n.Kind {
	case KindSuppressed, KindSettingsSaved:
		p = pterm.Success
	case KindRestored:
		p = pterm.Info
	case KindInvalidRules:
		p = pterm.Warning
	case KindAcquireFailed:
		p = pterm.Error
	default:
		p = pterm.Info
	}
	return p.WithWriter(t.w)
}

// Log writes every notice to a zerolog logger
type Log struct {
	Logger zerolog.Logger
}

// Notify implements Notifier
func (l Log) Notify(n Notice) {
	ev := l.Logger.Info()
	if n.Kind == KindAcquireFailed || n.Kind == KindInvalidRules {
		ev = l.Logger.Warn()
	}
	if n.Err != nil {
		ev = ev.Err(n.Err)
	}
	ev.Str("kind", string(n.Kind)).Int("count", n.Count).Msg(n.String())
}
