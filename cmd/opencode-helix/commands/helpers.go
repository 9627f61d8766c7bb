package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/wk-j/opencode-helix/internal/discovery"
	"github.com/wk-j/opencode-helix/internal/editor"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/logging"
	"github.com/wk-j/opencode-helix/internal/opencode"
	"github.com/wk-j/opencode-helix/internal/process"
	"github.com/wk-j/opencode-helix/internal/prompts"
	"github.com/wk-j/opencode-helix/internal/terminal"
	"github.com/wk-j/opencode-helix/pkg/fileutil"
)

// Collaborators replaced in tests.
var (
	lister       process.Lister = process.PSLister{}
	openTerminal                = terminal.Open
	differ                      = editor.GitDiffer
)

// workingDir returns --cwd or the process working directory.
func workingDir() (string, error) {
	if cwdFlag != "" {
		return cwdFlag, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "getting working directory"), "pass --cwd")
	}
	return dir, nil
}

// editorContext builds the context from the global flags. The selection
// file is consumed: it is removed after reading.
func editorContext() (editor.Context, error) {
	cwd, err := workingDir()
	if err != nil {
		return editor.Context{}, err
	}

	in := editor.Inputs{
		File:           fileFlag,
		Line:           lineFlag,
		Column:         columnFlag,
		SelectionStart: selectionStart,
		SelectionEnd:   selectionEnd,
		Language:       languageFlag,
		Cwd:            cwd,
	}
	if selectionFile != "" {
		data, err := fileutil.ReadAndRemove(selectionFile)
		if err != nil {
			return editor.Context{}, errors.NewUserError(
				errors.Wrap(err, "reading selection file"),
				"the selection file must exist and be at most 1 MiB")
		}
		in.SelectionText = string(data)
	}
	return editor.New(in), nil
}

func expander(log *slog.Logger) editor.Expander {
	return editor.Expander{Differ: differ, Logger: log}
}

func clientOptions(log *slog.Logger) []opencode.Option {
	return []opencode.Option{
		opencode.WithTimeout(cfg.RequestTimeout),
		opencode.WithPassword(cfg.ServerPassword),
		opencode.WithLogger(log),
	}
}

func discoveryOptions(cwd string, log *slog.Logger) discovery.Options {
	return discovery.Options{
		Cwd:              cwd,
		Port:             portFlag,
		Lister:           lister,
		Prober:           discovery.HTTPProber{Options: clientOptions(log)},
		ProbeTimeout:     cfg.ProbeTimeout,
		DiscoveryTimeout: cfg.DiscoveryTimeout,
		MaxProbes:        cfg.MaxProbes,
		ServerCommand:    cfg.ServerCommand,
		Logger:           log,
	}
}

// connect discovers the server for cwd and returns a client for it.
func connect(ctx context.Context, cwd string) (*opencode.Client, discovery.Server, error) {
	log := logging.FromContext(ctx)

	srv, err := discovery.Discover(ctx, discoveryOptions(cwd, log))
	if err != nil {
		return nil, discovery.Server{}, discoveryError(err)
	}
	log.Debug("using server", "endpoint", srv.Endpoint, "dir", srv.WorkingDirectory)
	return opencode.New(srv.Port, clientOptions(log)...), srv, nil
}

func discoveryError(err error) error {
	switch {
	case errors.Is(err, discovery.ErrAmbiguousServers):
		return errors.NewUserError(err, "run 'opencode-helix servers --pick' and pass the port with --port")
	case errors.Is(err, discovery.ErrNoServerFound):
		return errors.NewUserError(err, "start opencode in this project, or pass --port")
	case errors.Is(err, discovery.ErrProbeTimeout):
		return errors.NewSystemError(err, "raise discovery_timeout or probe_timeout in the config")
	case errors.Is(err, opencode.ErrTimeout), errors.Is(err, opencode.ErrUnreachable):
		return errors.NewUserError(err, "check that opencode is listening on that port")
	}
	return errors.NewSystemError(err, "")
}

func transportError(err error) error {
	switch {
	case errors.Is(err, opencode.ErrTimeout):
		return errors.NewSystemError(err, "the server did not answer within request_timeout")
	case errors.Is(err, opencode.ErrUnreachable):
		return errors.NewSystemError(err, "the server stopped; run 'opencode-helix status' to find another")
	case errors.Is(err, opencode.ErrBadResponse):
		return errors.NewSystemError(err, "the server rejected the request; run with -v for details")
	}
	return errors.NewSystemError(err, "")
}

// loadPrompts returns the prompt library, falling back to the built-ins
// when the prompt directory cannot be read.
func loadPrompts(log *slog.Logger) []prompts.Prompt {
	list, err := prompts.Load(cfg, log)
	if err != nil {
		log.Warn("prompt library unavailable", "dir", cfg.PromptsDir, "error", err)
		return prompts.Merge(prompts.Builtins(), prompts.FromConfig(cfg.Prompts))
	}
	return list
}

// truncate shortens s to n runes for one-line confirmations.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
