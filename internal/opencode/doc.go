// Package opencode is the HTTP client for a running opencode server.
//
// The client covers the small part of the server API the editor bridge
// needs: reading the server's working directory, listing agents and custom
// commands, and publishing TUI events that append, clear and submit the
// prompt. Failures are marked with [ErrUnreachable], [ErrTimeout] or
// [ErrBadResponse] so callers can branch with errors.Is.
package opencode
