package app

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dshills/pagestorm/internal/engine"
	"github.com/dshills/pagestorm/internal/renderer/backend"
)

// Action is a named editor command.
type Action func(app *Application) error

type promptKind int

const (
	promptNone promptKind = iota
	promptGotoLine
	promptSaveAs
)

func defaultActions() map[string]Action {
	actions := map[string]Action{
		"editor.newline": func(app *Application) error {
			_, err := app.engine().Newline()
			return err
		},
		"editor.delete": func(app *Application) error {
			_, err := app.engine().Delete()
			return err
		},
		"editor.undo":      func(app *Application) error { return app.engine().Undo() },
		"editor.redo":      func(app *Application) error { return app.engine().Redo() },
		"view.page_up":     func(app *Application) error { return app.engine().PageUp() },
		"view.page_down":   func(app *Application) error { return app.engine().PageDown() },
		"view.redraw":      func(app *Application) error { return nil },
		"prompt.goto_line": func(app *Application) error { app.openPrompt(promptGotoLine, "GOTO LINE: "); return nil },
		"prompt.save_as":   func(app *Application) error { app.openPrompt(promptSaveAs, "SAVE AS: "); return nil },
		"file.save":        (*Application).save,
		"file.new":         (*Application).newDocument,
		"app.quit":         (*Application).quit,
	}
	for name, d := range map[string]engine.Direction{
		"cursor.left":       engine.Left,
		"cursor.right":      engine.Right,
		"cursor.up":         engine.Up,
		"cursor.down":       engine.Down,
		"cursor.home":       engine.Home,
		"cursor.line_start": engine.LineStart,
		"cursor.line_end":   engine.LineEnd,
	} {
		actions[name] = func(app *Application) error { return app.engine().Move(d) }
	}
	return actions
}

func (app *Application) engine() *engine.Engine {
	return app.doc.Engine()
}

// handleKey routes a key to the open prompt, a binding or text insertion.
func (app *Application) handleKey(ev backend.Event) error {
	if app.prompt != promptNone {
		return app.handlePromptKey(ev)
	}

	name, bound := app.keymap[ev.Key]
	if name != "app.quit" && name != "file.new" {
		app.confirmed = ""
	}
	if bound {
		app.logger.Debug("action", "name", name)
		return app.run(name)
	}
	if ev.Key == backend.KeyRune && ev.Rune != 0 {
		return app.engine().InsertText(string(ev.Rune))
	}
	return nil
}

func (app *Application) run(name string) error {
	action, ok := app.actions[name]
	if !ok {
		return ErrUnknownAction
	}
	err := action(app)
	if err != nil && !errors.Is(err, ErrQuit) {
		app.logger.Debug("action failed", "name", name, "err", err)
	}
	return err
}

// confirm reports whether action may discard unsaved changes. The first
// request on a modified document only warns.
func (app *Application) confirm(action, warning string) bool {
	if !app.doc.Modified() || app.confirmed == action {
		app.confirmed = ""
		return true
	}
	app.confirmed = action
	app.engine().SetStatus(warning)
	return false
}

func (app *Application) quit() error {
	if !app.confirm("app.quit", "UNSAVED CHANGES, ^Q AGAIN TO QUIT") {
		return nil
	}
	return ErrQuit
}

func (app *Application) newDocument() error {
	if !app.confirm("file.new", "UNSAVED CHANGES, ^N AGAIN TO DISCARD") {
		return nil
	}
	return app.engine().NewDocument()
}

func (app *Application) save() error {
	if app.doc.Path() == "" {
		app.openPrompt(promptSaveAs, "SAVE AS: ")
		return nil
	}
	return app.doc.Save()
}

func (app *Application) openPrompt(kind promptKind, text string) {
	app.prompt = kind
	app.renderer.Status().OpenPrompt(text)
}

func (app *Application) closePrompt() {
	app.prompt = promptNone
	app.renderer.Status().ClosePrompt()
}

func (app *Application) handlePromptKey(ev backend.Event) error {
	status := app.renderer.Status()
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlG:
		app.closePrompt()
		return nil
	case backend.KeyBackspace, backend.KeyDelete:
		status.Backspace()
		return nil
	case backend.KeyEnter:
		kind, input := app.prompt, strings.TrimSpace(status.Input())
		app.closePrompt()
		return app.submitPrompt(kind, input)
	case backend.KeyRune:
		status.AppendInput(ev.Rune)
	}
	return nil
}

func (app *Application) submitPrompt(kind promptKind, input string) error {
	if input == "" {
		return nil
	}
	switch kind {
	case promptGotoLine:
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 {
			app.engine().SetStatus("LINE " + input + " NOT FOUND")
			return nil
		}
		return app.engine().GotoLine(n)
	case promptSaveAs:
		return app.doc.SaveAs(input)
	}
	return nil
}
