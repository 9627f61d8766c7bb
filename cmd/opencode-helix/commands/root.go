// Package commands implements the CLI commands for opencode-helix.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wk-j/opencode-helix/cmd"
	"github.com/wk-j/opencode-helix/internal/config"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/logging"
	"github.com/wk-j/opencode-helix/internal/paths"
)

// DebugEnv raises the log level when no -v flag is given (1 debug, 2 trace).
const DebugEnv = "OPENCODE_HELIX_DEBUG"

var (
	// editor context
	portFlag       int
	fileFlag       string
	lineFlag       int
	columnFlag     int
	selectionFile  string
	selectionStart int
	selectionEnd   int
	cwdFlag        string
	languageFlag   string

	themeFlag  string
	configFlag string

	verbosity int
	quiet     bool
	logFormat string
	logFile   string
	debug     bool
)

// cfg is the configuration of this invocation, loaded before any command runs.
var cfg = config.Default()

// logCloser releases the log file opened by setupLogging.
var logCloser io.Closer

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&portFlag, "port", "p", 0, "connect to this server port (skips discovery)")
	pf.StringVarP(&fileFlag, "file", "f", "", "current file path (for @this and @buffer)")
	pf.IntVarP(&lineFlag, "line", "l", 0, "cursor line, 1-based")
	pf.IntVarP(&columnFlag, "column", "c", 0, "cursor column, 1-based")
	pf.StringVar(&selectionFile, "selection-file", "", "file holding the selected text; deleted after reading")
	pf.IntVar(&selectionStart, "selection-start", 0, "first selected line")
	pf.IntVar(&selectionEnd, "selection-end", 0, "last selected line")
	pf.StringVar(&cwdFlag, "cwd", "", "working directory used for discovery and @diff (default: current)")
	pf.StringVar(&languageFlag, "language", "", "language of the current buffer")
	pf.StringVar(&themeFlag, "theme", "", "UI theme: minimal, hacker, matrix, crt")
	pf.StringVar(&configFlag, "config", "", "config file (default: "+paths.ConfigFile()+")")
	pf.CountVarP(&verbosity, "verbose", "v", "increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text, json")
	pf.StringVar(&logFile, "log-file", "", "write logs to file in JSON format")
	pf.BoolVar(&debug, "debug", false, "debug logging to "+paths.DebugLogPath())

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("opencode-helix version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "opencode-helix",
	Short: "Send prompts from Helix to a running opencode server",
	Long: `opencode-helix connects the Helix editor to an opencode server running
for the same project.

It finds the server by scanning local processes and asking each one for
its working directory, then picks the one whose directory is the closest
ancestor of the current directory. Prompts may reference editor context
with @this, @buffer, @path, @selection and @diff.

Helix passes its context through the global flags, typically from a key
binding generated by 'opencode-helix keymap'.`,
	Example: `  # Ask a free-form question about the cursor position
  opencode-helix --file src/main.rs --line 42 ask

  # Pick a prompt, command or agent from a menu
  opencode-helix --file src/main.rs select

  # Send a named prompt without a dialog
  opencode-helix --file src/main.rs --line 42 prompt explain

  # Show which server would be used
  opencode-helix status`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return initConfig()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func initConfig() error {
	config.Init()
	loaded, err := config.Load(configFlag)
	if err != nil {
		return errors.NewConfigError(err)
	}
	cfg = loaded
	if themeFlag != "" {
		cfg.Theme = themeFlag
	}
	return nil
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && (verbosity > 0 || debug) {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet with --verbose or --debug")
	}

	var level slog.Level
	switch {
	case quiet:
		level = slog.LevelError
	case debug:
		level = slog.LevelDebug
	default:
		v := verbosity
		if v == 0 {
			switch os.Getenv(DebugEnv) {
			case "1", "true":
				v = 1
			case "2":
				v = 2
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	file := logFile
	if debug && file == "" {
		file = paths.DebugLogPath()
	}

	logger, closer, err := logging.Setup(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
		File:   file,
	})
	if err != nil {
		return errors.NewUserError(err, "failed to open log file")
	}
	logCloser = closer
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	logger.Debug("starting", "command", cmd.CommandPath(), "version", cmd.Version)
	return nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context, which ends an open dialog and releases the terminal.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// Report prints err for the user and returns the process exit code.
// A cancelled session exits quietly.
func Report(w io.Writer, err error) int {
	if err == nil {
		return errors.ExitSuccess
	}

	// unwrapped errors come from cobra argument and flag parsing
	code := errors.ExitUser
	suggestion := ""
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		suggestion = exitErr.Suggestion
	}
	if errors.Is(err, errors.ErrCancelled) {
		return errors.ExitCancelled
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	if suggestion != "" {
		fmt.Fprintf(w, "  %s\n", suggestion)
	}
	if hint := errors.FlattenHints(err); hint != "" && hint != suggestion {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
	return code
}
