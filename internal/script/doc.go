// Package script runs Lua scripts against an open document.
//
// Scripts execute in a sandboxed gopher-lua state: only the base, string,
// table and math libraries are loaded, and functions that reach the file
// system or load code are removed. The editor is exposed as the global
// table "editor":
//
//	editor.insert("hello")
//	editor.newline()
//	editor.move("down", 3)
//	assert(editor.goto_line(130))
//	editor.undo()
//	editor.save()
//
// Editing functions return true on success, or nil and the status text
// on failure, so scripts can wrap them in assert. print writes to the
// log.
//
// A State is not safe for concurrent use.
package script
