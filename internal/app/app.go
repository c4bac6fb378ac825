// Package app runs the interactive editor: it reads terminal events,
// applies key bindings to the document and redraws the screen.
package app

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dshills/pagestorm/internal/document"
	"github.com/dshills/pagestorm/internal/renderer"
	"github.com/dshills/pagestorm/internal/renderer/backend"
)

// Application is the interactive editor session.
//
// Events are handled on the goroutine that calls Run.
type Application struct {
	doc      *document.Document
	backend  backend.Backend
	renderer *renderer.Renderer
	logger   *slog.Logger

	keymap  map[backend.Key]string
	actions map[string]Action

	prompt    promptKind
	confirmed string

	running   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// Options configures the application.
type Options struct {
	// Document is the document being edited.
	Document *document.Document

	// Backend is the terminal.
	Backend backend.Backend

	// Logger receives action and error logs.
	Logger *slog.Logger
}

// New creates an Application.
func New(opts Options) (*Application, error) {
	if opts.Document == nil {
		return nil, ErrNoActiveDocument
	}
	if opts.Backend == nil {
		return nil, ErrNoBackend
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := &Application{
		doc:      opts.Document,
		backend:  opts.Backend,
		renderer: renderer.New(opts.Backend),
		logger:   logger.With("component", "app"),
		keymap:   DefaultKeymap(),
		actions:  defaultActions(),
		done:     make(chan struct{}),
	}
	return app, nil
}

// Document returns the document being edited.
func (app *Application) Document() *document.Document {
	return app.doc
}

// Run initializes the backend and handles events until a quit action,
// Shutdown or the cancellation of ctx. An Application runs once.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()
	defer app.Shutdown()

	events := make(chan backend.Event)
	go app.pollEvents(events)

	stop := context.AfterFunc(ctx, func() {
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	})
	defer stop()

	app.logger.Info("session started", "file", app.doc.Path())
	app.render()
	for {
		select {
		case <-app.done:
			return nil
		case <-ctx.Done():
			return nil
		case ev := <-events:
			err := app.HandleEvent(ev)
			if errors.Is(err, ErrQuit) {
				app.logger.Info("session ended")
				return nil
			}
			app.render()
		}
	}
}

// pollEvents forwards backend events until the session ends.
func (app *Application) pollEvents(events chan<- backend.Event) {
	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventNone && !app.running.Load() {
			return
		}
		select {
		case events <- ev:
		case <-app.done:
			return
		}
	}
}

// Shutdown stops Run.
func (app *Application) Shutdown() {
	app.closeOnce.Do(func() {
		close(app.done)
		app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	})
}

// IsRunning returns true if Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// HandleEvent applies one terminal event. It returns ErrQuit when the
// session should end. A panic in an action is recovered and reported on
// the status line.
func (app *Application) HandleEvent(ev backend.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := NewRecoveredPanicError(r, string(debug.Stack()))
			app.logger.Error("action panicked", "err", perr)
			app.doc.Engine().SetStatus("ERROR")
			err = perr
		}
	}()

	switch ev.Type {
	case backend.EventKey:
		return app.handleKey(ev)
	default:
		return nil
	}
}

func (app *Application) render() {
	app.renderer.Render(app.doc.Engine(), app.doc.Name())
}
