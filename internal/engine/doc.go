// Package engine provides the paged buffer at the core of pagestorm.
//
// The engine serves as the facade over a document that can be larger than
// working memory. Exactly one page is resident at a time; the rest live in
// a page store, normally slots in an external backing store.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - backing: expansion unit driver, or a no-op store when none is present
//   - layout: static partition of the backing store address space
//   - page: checksummed page records, on the device or in spill files
//   - window: the resident page with its cursor and scroll state
//   - history: bounded undo/redo journal persisted in the backing store
//   - index: incremental line and page counts
//
// # Control Flow
//
// Every edit is validated first. Once it is known to succeed, a snapshot
// of the window goes into the undo journal, then the window changes and
// the index applies the line delta. Cursor moves run BoundaryCheck, which
// swaps pages when the cursor leaves the window: the current page is
// flushed if dirty before the next is loaded.
//
//	e, err := engine.New(engine.WithStore(store))
//
//	e.Insert('A')
//	e.Move(engine.Down)
//	e.Undo()
//
// A document that fits one page never reaches the page store, but every
// accepted edit still writes an undo snapshot to the journal region of the
// backing store.
//
// # Failures
//
// Failures are local and leave the document usable. Each operation
// returns its error and also records a short status text; see Status.
//
// # Thread Safety
//
// An Engine is owned by a single goroutine and takes no locks.
package engine
