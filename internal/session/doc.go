// Package session runs the interactive prompt dialog.
//
// A session is a small state machine driven by key presses:
//
//	Idle ──▶ AskInput ──┐            ┌──▶ Done
//	   └───▶ SelectMenu ─┼▶ Submitting┤
//	                     │            └──▶ back to the input state
//	                     └▶ Cancelled
//
// AskInput edits a single line of free-form text. SelectMenu offers the
// named prompts plus the server's commands and subagents, narrowed by a
// fuzzy filter. Submitting makes exactly one call to the transport; a
// failure returns to the input state with a banner and the typed text or
// selection intact. The machine is driven by bubbletea, and all state
// changes happen inside Update.
package session
