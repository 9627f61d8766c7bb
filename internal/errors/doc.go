// Package errors provides error handling conventions for the opencode-helix CLI.
//
// It re-exports the construction and inspection helpers of
// [github.com/cockroachdb/errors] so callers import a single errors package,
// and defines the ExitError type used to map failures onto process exit codes.
//
// # Exit Codes
//
//   - ExitSuccess (0): the prompt was delivered, or the command completed
//   - ExitUser (1): user-related error (no server for the project, bad flags, missing context)
//   - ExitSystem (2): system-related error (terminal missing, I/O failures)
//   - ExitCancelled (3): the user dismissed the session; nothing was sent
//
// ExitCancelled is not an error condition. Editors that run the tool through
// a shell can treat it as a no-op while still telling it apart from success.
//
// # ExitError
//
//	err := errors.NewUserError(discovery.ErrAmbiguousServers, "Pass --port to choose a server")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
