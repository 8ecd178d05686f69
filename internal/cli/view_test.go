package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid"
)

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

// row returns the text of screen row y.
func row(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func newTestPager(t *testing.T, s tcell.Screen, src string) *pager {
	t.Helper()
	p, err := newPager(s, "test.mmd", func(ascii bool) (string, error) {
		return termaid.Render(src, termaid.Options{UseASCII: ascii})
	}, false)
	require.NoError(t, err)
	return p
}

func TestPager_DrawsAndToggles(t *testing.T) {
	s := simScreen(t, 40, 8)
	p := newTestPager(t, s, "graph LR\nA --> B")
	p.draw()
	assert.Equal(t, "│ A ├────►│ B │", row(s, 2))
	assert.Contains(t, row(s, 7), "test.mmd")
	assert.Contains(t, row(s, 7), "[unicode]")

	p.handle(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	p.draw()
	assert.Equal(t, "| A +---->| B |", row(s, 2))
	assert.Contains(t, row(s, 7), "[ascii]")
}

func TestPager_ScrollClamps(t *testing.T) {
	s := simScreen(t, 6, 4)
	p := newTestPager(t, s, "graph TD\nA --> B")
	require.Len(t, p.lines, 15)

	p.handle(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, 0, p.top)
	p.handle(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	assert.Equal(t, 3, p.top)
	p.handle(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	assert.Equal(t, 12, p.top, "the last row stays on screen")
	p.handle(tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone))
	assert.Equal(t, 12, p.top)
	p.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	assert.Equal(t, 0, p.left, "the drawing fits horizontally")
	p.handle(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	assert.Equal(t, 0, p.top)
}

func TestPager_Quit(t *testing.T) {
	s := simScreen(t, 20, 5)
	p := newTestPager(t, s, "graph LR\nA --> B")
	assert.True(t, p.handle(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.False(t, p.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, p.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestPager_Run(t *testing.T) {
	s := simScreen(t, 40, 8)
	p := newTestPager(t, s, "graph LR\nA --> B")
	s.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	p.run()
	assert.True(t, p.ascii)
	assert.Equal(t, "| A +---->| B |", row(s, 2))
}

func TestRunView_ParseErrorBeforeScreen(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	c := New(io.Discard, LogInfo)
	err := c.runView(s, "bad.mmd", "", termaid.DefaultOptions())
	require.Error(t, err)
}
