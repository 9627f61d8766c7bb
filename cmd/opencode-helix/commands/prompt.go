package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/logging"
	"github.com/wk-j/opencode-helix/internal/opencode"
	"github.com/wk-j/opencode-helix/internal/prompts"
)

var (
	promptSubmit bool
	promptClear  bool
)

func init() {
	promptCmd.Flags().BoolVar(&promptSubmit, "submit", true, "execute the prompt after appending it (default from config)")
	promptCmd.Flags().BoolVar(&promptClear, "clear", false, "clear the server's prompt before appending")
	rootCmd.AddCommand(promptCmd)
}

var promptCmd = &cobra.Command{
	Use:   "prompt <name|text...>",
	Short: "Send a named prompt or literal text without a dialog",
	Long: `Send a prompt directly. A built-in or user prompt name resolves to its
template; anything else is sent as typed. Placeholders are expanded
first, and a placeholder without the editor context it needs is an error.`,
	Example: `  # Named prompt
  opencode-helix --file src/main.rs --line 42 prompt explain

  # Literal text, appended but not executed
  opencode-helix --file src/main.rs prompt --submit=false "Look at @buffer"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrompt,
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	text := strings.Join(args, " ")
	if p, ok := prompts.Find(loadPrompts(log), text); ok {
		log.Debug("resolved named prompt", "name", p.Name, "source", p.Source)
		text = p.Template
	}

	ec, err := editorContext()
	if err != nil {
		return err
	}
	expanded, err := expander(log).Expand(ctx, text, ec)
	if err != nil {
		return errors.NewUserError(err, "pass the editor context the prompt needs, e.g. --file and --line for @this")
	}

	client, _, err := connect(ctx, ec.Cwd())
	if err != nil {
		return err
	}

	submit := cfg.Submit
	if cmd.Flags().Changed("submit") {
		submit = promptSubmit
	}

	sctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if err := client.Submit(sctx, expanded, opencode.SubmitOptions{Clear: promptClear, Execute: submit}); err != nil {
		return transportError(err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Sent: %s\n", truncate(expanded, 50))
	return nil
}
