// Package document connects files to the paged engine.
//
// A Document reads a text file into an engine with Import and writes it
// back with Save. Files are reached through a vfs.VFS so tests run
// against memory. Content is sniffed before import; binary files are
// refused rather than paged in.
package document

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dshills/pagestorm/internal/engine"
	"github.com/dshills/pagestorm/internal/vfs"
)

// Untitled is the display name of a document with no path.
const Untitled = "Untitled"

// Document is a file bound to an engine.
type Document struct {
	path   string
	eng    *engine.Engine
	fs     vfs.VFS
	logger *slog.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithFS sets the filesystem. The default is the OS filesystem.
func WithFS(fsys vfs.VFS) Option {
	return func(d *Document) {
		if fsys != nil {
			d.fs = fsys
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates an untitled document over eng.
func New(eng *engine.Engine, opts ...Option) *Document {
	d := &Document{
		eng:    eng,
		fs:     vfs.NewOSFS(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "document")
	return d
}

// Engine returns the engine holding the document's text.
func (d *Document) Engine() *engine.Engine { return d.eng }

// Path returns the file path, or "" for an untitled document.
func (d *Document) Path() string { return d.path }

// Name returns the display name.
func (d *Document) Name() string {
	if d.path == "" {
		return Untitled
	}
	return filepath.Base(d.path)
}

// Modified reports unsaved changes.
func (d *Document) Modified() bool { return d.eng.Modified() }

// Open reads path into the engine. A path that does not exist yet opens
// an empty document that will be created on save.
func (d *Document) Open(path string) error {
	info, err := d.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := d.eng.NewDocument(); err != nil {
			return NewOperationError("open", path, err)
		}
		d.path = path
		d.eng.SetStatus("NEW FILE")
		d.logger.Info("new file", "path", path)
		return nil
	}
	if err != nil {
		return d.openFailed(path, err)
	}
	if info.IsDir() {
		return d.openFailed(path, ErrIsDirectory)
	}

	content, err := d.fs.ReadFile(path)
	if err != nil {
		return d.openFailed(path, err)
	}
	if !IsText(content) {
		return d.openFailed(path, ErrNotText)
	}
	content, _ = vfs.StripBOM(content)
	content = vfs.NormalizeNewlines(content)

	if err := d.eng.Import(bytes.NewReader(content)); err != nil {
		return NewOperationError("open", path, err)
	}
	d.path = path
	d.logger.Info("opened", "path", path, "lines", d.eng.TotalLines(), "pages", d.eng.NumPages())
	return nil
}

func (d *Document) openFailed(path string, err error) error {
	switch {
	case errors.Is(err, ErrNotText):
		d.eng.SetStatus("NOT A TEXT FILE")
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, ErrIsDirectory):
		d.eng.SetStatus("CANNOT OPEN FILE")
	default:
		d.eng.SetStatus("READ ERROR")
	}
	return NewOperationError("open", path, err)
}

// Save writes the document to its path.
func (d *Document) Save() error {
	return d.SaveAs(d.path)
}

// SaveAs writes the document to path and adopts it as the document's
// path. The file is written beside the target and renamed over it.
func (d *Document) SaveAs(path string) error {
	if path == "" {
		d.eng.SetStatus("NO FILE NAME")
		return NewOperationError("save", "", ErrNoPath)
	}

	var buf bytes.Buffer
	if err := d.eng.Save(&buf); err != nil {
		return NewOperationError("save", path, err)
	}
	status := d.eng.Status()

	tmp := path + ".tmp"
	if err := d.fs.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return d.saveFailed(path, err)
	}
	if err := d.fs.Rename(tmp, path); err != nil {
		_ = d.fs.Remove(tmp)
		return d.saveFailed(path, err)
	}

	d.path = path
	d.eng.SetStatus(status)
	d.logger.Info("saved", "path", path, "bytes", buf.Len())
	return nil
}

func (d *Document) saveFailed(path string, err error) error {
	d.eng.SetModified(true)
	d.eng.SetStatus("WRITE ERROR")
	d.logger.Error("save failed", "path", path, "err", err)
	return NewOperationError("save", path, err)
}

// IsText reports whether content sniffs as plain text. Empty content is text.
func IsText(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	for t := mimetype.Detect(content); t != nil; t = t.Parent() {
		if t.Is("text/plain") {
			return true
		}
	}
	return false
}
