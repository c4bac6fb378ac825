// Package renderer draws the resident page and the status line.
package renderer

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/pagestorm/internal/engine"
	"github.com/dshills/pagestorm/internal/renderer/backend"
	"github.com/dshills/pagestorm/internal/renderer/statusline"
)

// Renderer draws an engine's visible rows onto a backend.
type Renderer struct {
	b      backend.Backend
	status *statusline.StatusLine
}

// New creates a renderer on b.
func New(b backend.Backend) *Renderer {
	return &Renderer{b: b, status: statusline.New()}
}

// Status returns the status line.
func (r *Renderer) Status() *statusline.StatusLine {
	return r.status
}

// Render draws the document. Text rows fill the screen above the status
// line; the cursor is shown when its row is on screen.
func (r *Renderer) Render(e *engine.Engine, name string) {
	width, height := r.b.Size()
	r.b.Clear()
	if width <= 0 || height <= 0 {
		r.b.Show()
		return
	}

	rows := height - 1
	visible := e.Visible()
	for y := 0; y < rows && y < len(visible); y++ {
		drawLine(r.b, y, width, visible[y])
	}

	pos := e.Position()
	r.status.Resize(width)
	r.status.SetFilename(name)
	r.status.SetModified(e.Modified())
	r.status.SetPosition(pos.Line, pos.Column, pos.Page, pos.Pages, pos.Total)
	r.status.SetUndoDepth(e.UndoCount())
	r.status.SetMessage(e.Status())

	c := e.Cursor()
	row := c.Y - e.Scroll()
	if row >= 0 && row < rows {
		x := ColumnOf(e.Line(c.Y), c.X)
		if x >= width {
			x = width - 1
		}
		r.b.ShowCursor(x, row)
	} else {
		r.b.HideCursor()
	}

	// Drawn last so an open prompt owns the cursor.
	r.status.Render(r.b, height-1)
	r.b.Show()
}

// drawLine draws line at row y, decoding UTF-8 and clipping at width.
// Control and undecodable bytes are shown as '?'.
func drawLine(b backend.Backend, y, width int, line []byte) {
	x := 0
	for len(line) > 0 && x < width {
		r, size := utf8.DecodeRune(line)
		line = line[size:]
		if r == utf8.RuneError || r < ' ' || r == 0x7f {
			r = '?'
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		b.SetCell(x, y, backend.Cell{Rune: r})
		for i := 1; i < w; i++ {
			b.SetCell(x+i, y, backend.Cell{})
		}
		x += w
	}
}

// ColumnOf returns the screen column of byte offset off in line.
func ColumnOf(line []byte, off int) int {
	if off > len(line) {
		off = len(line)
	}
	col := 0
	for i := 0; i < off; {
		r, size := utf8.DecodeRune(line[i:])
		i += size
		if r == utf8.RuneError || r < ' ' || r == 0x7f {
			col++
			continue
		}
		col += runewidth.RuneWidth(r)
	}
	return col
}
