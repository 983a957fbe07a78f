package notify_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/arthur-debert/hidefolder/pkg/notify"
	"github.com/arthur-debert/hidefolder/pkg/ui"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeString(t *testing.T) {
	tests := []struct {
		notice notify.Notice
		want   string
	}{
		{notify.Notice{Kind: notify.KindSuppressed, Count: 1}, "hidden 1 folder"},
		{notify.Notice{Kind: notify.KindSuppressed, Count: 3}, "hidden 3 folders"},
		{notify.Notice{Kind: notify.KindRestored, Count: 2}, "restore display 2 folders"},
		{notify.Notice{Kind: notify.KindRestored, Count: 1}, "restore display 1 folder"},
		{notify.Notice{Kind: notify.KindAcquireFailed}, "files list not found"},
		{notify.Notice{Kind: notify.KindSettingsSaved}, "settings saved"},
		{notify.Notice{Kind: notify.KindInvalidRules, Count: 1}, "skipped 1 invalid pattern line"},
		{notify.Notice{Kind: notify.KindInvalidRules, Count: 4}, "skipped 4 invalid pattern lines"},
		{notify.Notice{Kind: "custom"}, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.notice.String())
		})
	}
}

func TestRecorder(t *testing.T) {
	rec := &notify.Recorder{}
	rec.Notify(notify.Notice{Kind: notify.KindRestored, Count: 2})
	rec.Notify(notify.Notice{Kind: notify.KindSuppressed, Count: 3})
	rec.Notify(notify.Notice{Kind: notify.KindSuppressed, Count: 1})

	all := rec.Notices()
	require.Len(t, all, 3)
	assert.Equal(t, notify.KindRestored, all[0].Kind)

	suppressed := rec.Of(notify.KindSuppressed)
	require.Len(t, suppressed, 2)
	assert.Equal(t, 3, suppressed[0].Count)
	assert.Equal(t, 1, suppressed[1].Count)

	// Notices returns a copy
	all[0].Count = 99
	assert.Equal(t, 2, rec.Notices()[0].Count)

	rec.Reset()
	assert.Empty(t, rec.Notices())
}

func TestMulti(t *testing.T) {
	a, b := &notify.Recorder{}, &notify.Recorder{}
	n := notify.Multi(a, nil, b)
	n.Notify(notify.Notice{Kind: notify.KindSettingsSaved})

	assert.Len(t, a.Notices(), 1)
	assert.Len(t, b.Notices(), 1)

	assert.NotPanics(t, func() { notify.Discard.Notify(notify.Notice{Kind: notify.KindRestored}) })
}

func TestTerminalText(t *testing.T) {
	var buf bytes.Buffer
	term := notify.NewTerminal(&buf, ui.FormatText)
	term.Notify(notify.Notice{Kind: notify.KindSuppressed, Count: 2})

	out := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(out, "hidden 2 folders"), out)
}

func TestTerminalJSON(t *testing.T) {
	var buf bytes.Buffer
	term := notify.NewTerminal(&buf, ui.FormatJSON)
	term.Notify(notify.Notice{Kind: notify.KindAcquireFailed, Err: errors.New("gone")})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "acquire_failed", got["kind"])
	assert.Equal(t, "files list not found", got["message"])
	assert.Equal(t, "gone", got["error"])
}

func TestTerminalStyled(t *testing.T) {
	var buf bytes.Buffer
	term := notify.NewTerminal(&buf, ui.FormatTerminal)
	term.Notify(notify.Notice{Kind: notify.KindRestored, Count: 5})

	assert.Contains(t, buf.String(), "restore display 5 folders")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := notify.Log{Logger: zerolog.New(&buf)}

	l.Notify(notify.Notice{Kind: notify.KindInvalidRules, Count: 1})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "invalid_rules", got["kind"])
	assert.EqualValues(t, 1, got["count"])
}
