package app

import "github.com/dshills/pagestorm/internal/renderer/backend"

// DefaultKeymap returns the default key bindings.
func DefaultKeymap() map[backend.Key]string {
	return map[backend.Key]string{
		backend.KeyEnter:     "editor.newline",
		backend.KeyBackspace: "editor.delete",
		backend.KeyDelete:    "editor.delete",
		backend.KeyLeft:      "cursor.left",
		backend.KeyRight:     "cursor.right",
		backend.KeyUp:        "cursor.up",
		backend.KeyDown:      "cursor.down",
		backend.KeyHome:      "cursor.line_start",
		backend.KeyEnd:       "cursor.line_end",
		backend.KeyCtrlA:     "cursor.home",
		backend.KeyPageUp:    "view.page_up",
		backend.KeyPageDown:  "view.page_down",
		backend.KeyCtrlZ:     "editor.undo",
		backend.KeyCtrlY:     "editor.redo",
		backend.KeyCtrlG:     "prompt.goto_line",
		backend.KeyCtrlS:     "file.save",
		backend.KeyCtrlW:     "prompt.save_as",
		backend.KeyCtrlN:     "file.new",
		backend.KeyCtrlL:     "view.redraw",
		backend.KeyCtrlQ:     "app.quit",
	}
}
