package render

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/setanarut/simcollide/physics"
	"github.com/setanarut/vec"
)

// Glyphs used for each primitive kind
const (
	glyphLine    = '.'
	glyphArrow   = '|'
	glyphHead    = '^'
	glyphPolygon = '#'
)

// DefaultViewWidth is the world width shown by a new terminal.
const DefaultViewWidth = 24.0

// Terminal draws frames on a tcell screen.
type Terminal struct {
	Camera Camera

	screen tcell.Screen
	quit   chan struct{}
	once   sync.Once
}

// NewTerminal initializes screen, or the real terminal when screen is nil.
func NewTerminal(screen tcell.Screen) (*Terminal, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("create screen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	w, h := screen.Size()
	return &Terminal{
		Camera: NewCamera(vec.Vec2{Y: 5}, DefaultViewWidth, w, h),
		screen: screen,
		quit:   make(chan struct{}),
	}, nil
}

func style(c physics.FColor) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R*255), int32(c.G*255), int32(c.B*255)))
}

func (t *Terminal) set(x, y int, r rune, st tcell.Style) {
	if t.Camera.Visible(x, y) {
		t.screen.SetContent(x, y, r, nil, st)
	}
}

// line walks the cells between two world points.
func (t *Terminal) line(a, b vec.Vec2, r rune, st tcell.Style) {
	x0, y0 := t.Camera.ToCell(a)
	x1, y1 := t.Camera.ToCell(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		t.set(x0, y0, r, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Draw replaces the screen contents with the frame.
func (t *Terminal) Draw(f Frame) {
	t.screen.Clear()
	var texts []Primitive
	for _, p := range f.Primitives {
		st := style(p.Color)
		switch p.Kind {
		case KindLine:
			t.line(p.Points[0], p.Points[1], glyphLine, st)
		case KindArrow:
			t.line(p.Points[0], p.Points[1], glyphArrow, st)
			x, y := t.Camera.ToCell(p.Points[1])
			t.set(x, y, glyphHead, st)
		case KindPolygon:
			for i := range p.Points {
				t.line(p.Points[i], p.Points[(i+1)%len(p.Points)], glyphPolygon, st)
			}
		case KindText:
			texts = append(texts, p)
		}
	}
	// text goes on top
	for _, p := range texts {
		x, y := t.Camera.ToCell(p.Points[0])
		x -= len(p.Text) / 2
		for i, r := range []rune(p.Text) {
			t.set(x+i, y, r, style(p.Color))
		}
	}
	t.screen.Show()
}

// Resize refits the camera to the screen.
func (t *Terminal) Resize() {
	t.Camera.Columns, t.Camera.Rows = t.screen.Size()
}

// Listen handles input until the screen is closed. The returned channel is
// closed when the user asks to quit with Escape, Ctrl-C or q.
func (t *Terminal) Listen() <-chan struct{} {
	go func() {
		for {
			switch ev := t.screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventResize:
				t.screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					t.once.Do(func() { close(t.quit) })
				}
			}
		}
	}()
	return t.quit
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.screen.Fini()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
