package engine

import (
	"log/slog"

	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/engine/page"
)

// Default configuration values.
const (
	DefaultPageCapacity  = 64
	DefaultMaxLineLength = 220
	DefaultWrapWidth     = 37
	DefaultViewHeight    = 23
	DefaultUndoLevels    = 10
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithGeometry sets the lines per page and bytes per line.
func WithGeometry(pageCapacity, lineLength int) Option {
	return func(e *Engine) {
		e.cfg.PageCapacity = pageCapacity
		e.cfg.LineLength = lineLength
	}
}

// WithWrapWidth sets the column at which typing wraps to a new line.
func WithWrapWidth(width int) Option {
	return func(e *Engine) {
		if width > 0 {
			e.cfg.WrapWidth = width
		}
	}
}

// WithViewHeight sets the number of visible rows.
func WithViewHeight(rows int) Option {
	return func(e *Engine) {
		if rows > 0 {
			e.cfg.ViewHeight = rows
		}
	}
}

// WithUndoLevels sets the depth of the undo and redo rings.
func WithUndoLevels(levels int) Option {
	return func(e *Engine) {
		if levels >= 0 {
			e.undoLevels = levels
		}
	}
}

// WithMaxPages caps the number of pages. Zero means as many as fit.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxPages = n
		}
	}
}

// WithStore sets the backing store. The default is backing.Nop.
func WithStore(s backing.Store) Option {
	return func(e *Engine) {
		if s != nil {
			e.store = s
		}
	}
}

// WithPageStore sets the page store, replacing the one laid out on the
// backing store. It is how a spill store is used without a device.
func WithPageStore(s page.Store) Option {
	return func(e *Engine) {
		e.pages = s
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
