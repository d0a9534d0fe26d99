package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/redline/internal/core/config"
	"github.com/hay-kot/redline/internal/core/notify"
	"github.com/hay-kot/redline/internal/core/textdiff"
	"github.com/hay-kot/redline/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainRenderer() *render.Renderer {
	return render.New(config.ColorNever)
}

func changeHunk(t *testing.T, original, modified string, contextLines int) textdiff.Hunk {
	t.Helper()

	for _, h := range textdiff.Group(textdiff.Diff(original, modified), contextLines) {
		if h.Kind == textdiff.HunkChange {
			return h
		}
	}

	t.Fatal("no change hunk produced")
	return textdiff.Hunk{}
}

func TestRenderer_Hunk(t *testing.T) {
	r := plainRenderer()

	h := changeHunk(t, "a\nb\nc", "a\nX\nc", 1)
	out := r.Hunk(h, 1, 1)
	lines := strings.Split(out, "\n")

	require.GreaterOrEqual(t, len(lines), 5)

	// Unified-style header carries the hunk id, both ranges, and position
	assert.Contains(t, lines[0], "@@ "+h.ID)
	assert.Contains(t, lines[0], "-1,3")
	assert.Contains(t, lines[0], "+1,3")
	assert.Contains(t, lines[0], "hunk 1/1")

	assert.Contains(t, out, "- b")
	assert.Contains(t, out, "+ X")
	assert.Contains(t, out, "  a")
	assert.Contains(t, out, "  c")
}

func TestRenderer_HunkLineNumbers(t *testing.T) {
	r := plainRenderer()

	h := changeHunk(t, "a\nb\nc", "a\nX\nc", 0)
	out := r.Hunk(h, 0, 0)

	// Removed line has only an old number, added line only a new one
	assert.Contains(t, out, "   2      - b")
	assert.Contains(t, out, "        2 + X")
	assert.NotContains(t, out, "hunk 0/0")
}

func TestRenderer_HunkPureInsertion(t *testing.T) {
	r := plainRenderer()

	h := changeHunk(t, "a\nb", "new\na\nb", 0)
	out := r.Hunk(h, 1, 1)

	// No old-side lines: the old range renders as 0
	assert.Contains(t, out, "-0 +1,1")
	assert.Contains(t, out, "+ new")
}

func TestRenderer_Summary(t *testing.T) {
	r := plainRenderer()

	out := r.Summary("docs/guide.md", 3, 2)
	assert.Equal(t, "docs/guide.md  3 pending, 2 decided", out)
}

func TestRenderer_Notification(t *testing.T) {
	r := plainRenderer()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)

	cases := []struct {
		level  notify.Level
		marker string
	}{
		{notify.LevelInfo, "•"},
		{notify.LevelWarning, "!"},
		{notify.LevelError, "✗"},
	}

	for _, tc := range cases {
		t.Run(string(tc.level), func(t *testing.T) {
			out := r.Notification(notify.Notification{
				ID:        7,
				Level:     tc.level,
				Message:   "something happened",
				CreatedAt: at,
			})

			assert.True(t, strings.HasPrefix(out, tc.marker), "out = %q", out)
			assert.Contains(t, out, "[7] something happened")
			assert.Contains(t, out, "2026-03-14 09:30")
		})
	}
}

func TestRenderer_Rule(t *testing.T) {
	r := plainRenderer()

	rule := r.Rule()
	assert.NotEmpty(t, rule)
	assert.Equal(t, strings.Repeat("-", len(rule)), rule)
}

func TestRenderer_NeverModeHasNoANSI(t *testing.T) {
	r := plainRenderer()

	h := changeHunk(t, "a\nb\nc", "a\nX\nc", 1)
	out := r.Hunk(h, 1, 1)

	assert.NotContains(t, out, "\x1b[", "plain mode must not emit escape sequences")
}
