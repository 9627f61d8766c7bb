package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/logging"
	"github.com/wk-j/opencode-helix/internal/opencode"
	"github.com/wk-j/opencode-helix/internal/session"
	"github.com/wk-j/opencode-helix/internal/terminal"
)

func init() {
	rootCmd.AddCommand(askCmd, selectCmd)
}

var askCmd = &cobra.Command{
	Use:   "ask [initial text...]",
	Short: "Type a prompt in a one-line dialog",
	Long: `Open a dialog on the terminal to type a free-form prompt.

The prompt may reference editor context with @this, @buffer, @path,
@selection and @diff. Enter sends it, Esc cancels. The dialog stays open
with an error banner when the server does not accept the prompt.`,
	Example: `  opencode-helix --file src/main.rs --line 42 ask
  opencode-helix --file src/main.rs ask "Explain @this"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, session.ModeAsk, strings.Join(args, " "))
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a prompt, command or agent from a menu",
	Long: `Open a fuzzy menu of named prompts, the server's slash commands and its
subagents. Typing filters the list; arrows, Tab and Ctrl-N/P move the
highlight; Enter sends the highlighted entry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSession(cmd, session.ModeSelect, "")
	},
}

func runSession(cmd *cobra.Command, mode session.Mode, seed string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	ec, err := editorContext()
	if err != nil {
		return err
	}
	client, _, err := connect(ctx, ec.Cwd())
	if err != nil {
		return err
	}

	opts := session.Options{
		Mode:           mode,
		Seed:           seed,
		Context:        ec,
		Transport:      client,
		Expander:       expander(log),
		Prompts:        loadPrompts(log),
		Theme:          session.ThemeByName(cfg.Theme),
		Submit:         opencode.SubmitOptions{Execute: cfg.Submit},
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	}

	var res session.Result
	err = terminal.With(openTerminal, func(tty *terminal.TTY) error {
		var runErr error
		res, runErr = session.Run(ctx, opts, tty.File())
		return runErr
	})
	if err != nil {
		if errors.Is(err, terminal.ErrUnavailable) {
			return errors.NewSystemError(err, "the dialog needs a terminal; use 'prompt' for non-interactive use")
		}
		return errors.NewSystemError(err, "")
	}

	// the editor shows stderr, so a finished dialog stays silent
	if !res.Submitted() {
		log.Debug("session cancelled")
		return errors.NewCancelledError()
	}
	log.Debug("session submitted", "prompt", truncate(res.Prompt, 50))
	return nil
}
