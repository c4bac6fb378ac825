// Package statusline provides the status bar and the prompt line.
package statusline

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/pagestorm/internal/renderer/backend"
)

// StatusLine renders the bottom row: either the status bar or, while a
// prompt is open, the prompt and its input.
type StatusLine struct {
	filename string
	modified bool

	line, col   int
	page, pages int
	total       int
	undo        int

	message string

	promptActive bool
	prompt       string
	input        string

	width int
}

// New creates a status line.
func New() *StatusLine {
	return &StatusLine{page: 1, pages: 1, line: 1, col: 1}
}

// SetFilename updates the displayed filename.
func (s *StatusLine) SetFilename(filename string) {
	s.filename = filename
}

// SetModified updates the modified indicator.
func (s *StatusLine) SetModified(modified bool) {
	s.modified = modified
}

// SetPosition updates the cursor position. All values count from 1.
func (s *StatusLine) SetPosition(line, col, page, pages, total int) {
	s.line, s.col = line, col
	s.page, s.pages = page, pages
	s.total = total
}

// SetUndoDepth updates the number of undoable edits shown.
func (s *StatusLine) SetUndoDepth(n int) {
	s.undo = n
}

// SetMessage sets the status message. An empty message clears it.
func (s *StatusLine) SetMessage(msg string) {
	s.message = msg
}

// Message returns the status message.
func (s *StatusLine) Message() string {
	return s.message
}

// OpenPrompt shows prompt on the bottom row and starts collecting input.
func (s *StatusLine) OpenPrompt(prompt string) {
	s.promptActive = true
	s.prompt = prompt
	s.input = ""
}

// ClosePrompt returns to the status bar.
func (s *StatusLine) ClosePrompt() {
	s.promptActive = false
	s.prompt = ""
	s.input = ""
}

// PromptActive reports whether a prompt is open.
func (s *StatusLine) PromptActive() bool {
	return s.promptActive
}

// Input returns the prompt input.
func (s *StatusLine) Input() string {
	return s.input
}

// AppendInput adds r to the prompt input.
func (s *StatusLine) AppendInput(r rune) {
	s.input += string(r)
}

// Backspace removes the last rune of the prompt input.
func (s *StatusLine) Backspace() {
	if s.input == "" {
		return
	}
	rs := []rune(s.input)
	s.input = string(rs[:len(rs)-1])
}

// Resize sets the width.
func (s *StatusLine) Resize(width int) {
	s.width = width
}

// Render draws the status line at row.
func (s *StatusLine) Render(b backend.Backend, row int) {
	if s.promptActive {
		s.renderPrompt(b, row)
		return
	}
	s.renderStatusBar(b, row)
}

func (s *StatusLine) renderStatusBar(b backend.Backend, row int) {
	right := s.formatPosition() + " "
	rightWidth := runewidth.StringWidth(right)

	name := s.filename
	if name == "" {
		name = "[No Name]"
	}
	if s.modified {
		name += " [+]"
	}
	left := " " + name
	if s.message != "" {
		left += "  " + s.message
	}
	room := s.width - rightWidth - 1
	if room < 0 {
		room = 0
	}
	left = runewidth.Truncate(left, room, "…")

	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, backend.Cell{Rune: ' ', Attr: backend.AttrReverse})
	}
	putString(b, 0, row, left, backend.AttrReverse)
	if rightWidth <= s.width {
		putString(b, s.width-rightWidth, row, right, backend.AttrReverse)
	}
}

func (s *StatusLine) renderPrompt(b backend.Backend, row int) {
	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, backend.EmptyCell())
	}
	text := s.prompt + s.input
	if w := runewidth.StringWidth(text); w >= s.width {
		text = runewidth.TruncateLeft(text, w-s.width+1, "")
	}
	end := putString(b, 0, row, text, backend.AttrBold)
	b.ShowCursor(end, row)
}

// formatPosition returns "L line/total C col P page/pages U undo".
func (s *StatusLine) formatPosition() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "L %d/%d C %d P %d/%d", s.line, s.total, s.col, s.page, s.pages)
	if s.undo > 0 {
		fmt.Fprintf(&sb, " U %d", s.undo)
	}
	return sb.String()
}

// putString draws str from column x and returns the column after it.
func putString(b backend.Backend, x, y int, str string, attr backend.Attr) int {
	for _, r := range str {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.SetCell(x, y, backend.Cell{Rune: r, Attr: attr})
		for i := 1; i < w; i++ {
			b.SetCell(x+i, y, backend.Cell{Attr: attr})
		}
		x += w
	}
	return x
}
