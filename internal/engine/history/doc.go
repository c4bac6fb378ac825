// Package history provides the undo/redo journal for the paged buffer.
//
// The journal is a pair of bounded circular logs of whole-window snapshots.
// Snapshots live in the backing store's journal region, not in memory:
//
//	journal := history.NewJournal(store, layout)
//
//	// Before every accepted edit
//	journal.PushUndo(snapshot)
//
//	// Undo hands back the state to restore and records the current one
//	prev, err := journal.Undo(current)
//	next, err := journal.Redo(prev)
//
// # Ring Discipline
//
// PushUndo writes into the undo ring and drops all redo entries. Undo
// writes the current state into the redo ring before stepping back; Redo
// writes into the undo ring without touching the redo count. A full ring
// silently overwrites its oldest slot.
//
// # Slot Format
//
// Each slot holds a page-shaped payload of NUL-padded line records
// followed by an 8-byte metadata record:
//
//	[0]    line count
//	[1]    cursor x
//	[2]    cursor y
//	[3]    scroll offset
//	[4:6]  page index, little endian
//	[6:8]  page count, little endian
//
// Without a backing device the journal is disabled and every operation
// returns ErrJournalDisabled.
package history
