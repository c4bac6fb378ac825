package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/engine/history"
	"github.com/dshills/pagestorm/internal/engine/page"
	"github.com/dshills/pagestorm/internal/engine/window"
)

// Errors returned by engine operations.
var (
	// ErrDeviceUnavailable indicates no backing device was detected.
	ErrDeviceUnavailable = backing.ErrDeviceUnavailable

	// ErrCorruptPage indicates a page that failed validation on load.
	ErrCorruptPage = page.ErrCorruptPage

	// ErrCapacityExceeded indicates a line, page or document at its ceiling.
	ErrCapacityExceeded = window.ErrCapacityExceeded

	// ErrTransferOutOfRange indicates a refused backing store transfer.
	ErrTransferOutOfRange = backing.ErrTransferOutOfRange

	// ErrNothingToUndo indicates the undo ring is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo ring is empty.
	ErrNothingToRedo = history.ErrNothingToRedo

	// ErrJournalDisabled indicates undo and redo are unavailable.
	ErrJournalDisabled = history.ErrJournalDisabled

	// ErrNothingToDelete indicates a backward delete at the start of a page.
	ErrNothingToDelete = window.ErrNothingToDelete

	// ErrInvalidByte indicates a NUL, CR or LF byte in text.
	ErrInvalidByte = window.ErrInvalidByte

	// ErrLineOutOfRange indicates a line number outside the document.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrDocumentFull indicates no page slot is left for a new page.
	ErrDocumentFull = fmt.Errorf("document full: %w", window.ErrCapacityExceeded)
)
