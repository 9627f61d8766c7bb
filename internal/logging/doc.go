// Package logging provides structured logging for opencode-helix using slog.
//
// The tool runs as a child of the editor, so stdout is reserved for text the
// editor inserts into the buffer. Every handler built here writes to stderr or
// to a log file, never to stdout.
//
// # Basic Usage
//
//	logger, closer, err := logging.Setup(logging.Config{
//		Level:   slog.LevelWarn,
//		Format:  logging.FormatText,
//		Output:  os.Stderr,
//		File:    "/tmp/opencode-helix.log",
//	})
//	defer closer.Close()
//
// Text output is colorized when stderr is a terminal. File output is always JSON.
//
// # Testing
//
// Use [ForTest] to route log output through the testing framework:
//
//	logger := logging.ForTest(t)
package logging
