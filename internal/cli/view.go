package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"termaid"
)

func (c *CLI) viewCommand() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Page through a drawing in the terminal",
		Long: `View renders a diagram and shows it in a scrollable pager.

Keys: arrows or h/j/k/l scroll, PgUp/PgDn page, Home/End jump,
a toggles ASCII and Unicode glyphs, q or Esc quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := stdinName
			if len(args) == 1 {
				name = args[0]
			}
			src, err := readSource(name, cmd.InOrStdin())
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return errors.Wrap(err, "opening terminal")
			}
			return c.runView(screen, name, src, c.options(cmd, &f))
		},
	}
	f.register(cmd)
	return cmd
}

// runView renders src once before taking over the screen so that parse
// errors print normally, then runs the pager until the user quits.
func (c *CLI) runView(screen tcell.Screen, name, src string, opts termaid.Options) error {
	p, err := newPager(screen, name, func(ascii bool) (string, error) {
		o := opts
		o.UseASCII = ascii
		return termaid.Render(src, o)
	}, opts.UseASCII)
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "initialising terminal")
	}
	defer screen.Fini()
	c.Logger.Debug("viewer started", "file", name, "lines", len(p.lines))
	p.run()
	return nil
}

// pager shows a drawing with a one-line status bar at the bottom.
type pager struct {
	screen tcell.Screen
	name   string
	render func(ascii bool) (string, error)

	ascii  bool
	lines  []string // drawing rows as runes
	width  int
	top    int
	left   int
	status string
}

func newPager(s tcell.Screen, name string, render func(bool) (string, error), ascii bool) (*pager, error) {
	p := &pager{screen: s, name: name, render: render}
	if err := p.load(ascii); err != nil {
		return nil, err
	}
	return p, nil
}

// load renders the drawing with the given glyph set and keeps the scroll
// position where it still fits.
func (p *pager) load(ascii bool) error {
	out, err := p.render(ascii)
	if err != nil {
		return err
	}
	p.ascii = ascii
	p.status = ""
	p.lines = strings.Split(out, "\n")
	p.width = 0
	for _, l := range p.lines {
		p.width = max(p.width, len([]rune(l)))
	}
	p.scroll(0, 0)
	return nil
}

func (p *pager) run() {
	p.draw()
	for {
		switch ev := p.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			p.scroll(0, 0)
			p.screen.Sync()
		case *tcell.EventKey:
			if !p.handle(ev) {
				return
			}
		}
		p.draw()
	}
}

// handle applies a key press and reports whether the pager keeps running.
func (p *pager) handle(ev *tcell.EventKey) bool {
	_, h := p.view()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		p.scroll(0, -1)
	case tcell.KeyDown:
		p.scroll(0, 1)
	case tcell.KeyLeft:
		p.scroll(-1, 0)
	case tcell.KeyRight:
		p.scroll(1, 0)
	case tcell.KeyPgUp:
		p.scroll(0, -h)
	case tcell.KeyPgDn:
		p.scroll(0, h)
	case tcell.KeyHome:
		p.top, p.left = 0, 0
	case tcell.KeyEnd:
		p.scroll(0, len(p.lines))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			p.scroll(0, -1)
		case 'j':
			p.scroll(0, 1)
		case 'h':
			p.scroll(-1, 0)
		case 'l':
			p.scroll(1, 0)
		case 'a':
			if err := p.load(!p.ascii); err != nil {
				p.status = err.Error()
			}
		}
	}
	return true
}

// view is the size of the drawing area.
func (p *pager) view() (w, h int) {
	w, h = p.screen.Size()
	return w, max(h-1, 0)
}

// scroll moves the viewport by dx, dy and clamps it to the drawing.
func (p *pager) scroll(dx, dy int) {
	w, h := p.view()
	p.top = min(max(p.top+dy, 0), max(len(p.lines)-h, 0))
	p.left = min(max(p.left+dx, 0), max(p.width-w, 0))
}

func (p *pager) draw() {
	p.screen.Clear()
	w, h := p.view()
	for y := 0; y < h && p.top+y < len(p.lines); y++ {
		row := []rune(p.lines[p.top+y])
		for x := 0; x < w && p.left+x < len(row); x++ {
			p.screen.SetContent(x, y, row[p.left+x], nil, tcell.StyleDefault)
		}
	}

	glyphs := "unicode"
	if p.ascii {
		glyphs = "ascii"
	}
	bar := fmt.Sprintf(" %s  [%s]  %d/%d  a: glyphs  q: quit", p.name, glyphs, min(p.top+h, len(p.lines)), len(p.lines))
	if p.status != "" {
		bar = " " + p.status
	}
	style := tcell.StyleDefault.Reverse(true)
	barRunes := []rune(bar)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(barRunes) {
			r = barRunes[x]
		}
		p.screen.SetContent(x, h, r, nil, style)
	}
	p.screen.Show()
}
