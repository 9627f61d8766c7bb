package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wk-j/opencode-helix/internal/logging"
	"github.com/wk-j/opencode-helix/internal/opencode"
)

func init() {
	rootCmd.AddCommand(tuiCommandCmd)
}

var tuiCommandCmd = &cobra.Command{
	Use:   "command <name>",
	Short: "Run a command in the opencode TUI",
	Long: `Run a command in the opencode TUI, for example to start a new session.

Known commands: ` + strings.Join(opencode.Commands, ", ") + `.
Other names are forwarded to the server as given.`,
	Example: `  opencode-helix command session.new`,
	Args:    cobra.ExactArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return opencode.Commands, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]
		if !slices.Contains(opencode.Commands, name) {
			logging.FromContext(ctx).Info("forwarding unknown command", "command", name)
		}

		cwd, err := workingDir()
		if err != nil {
			return err
		}
		client, _, err := connect(ctx, cwd)
		if err != nil {
			return err
		}

		cctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
		if err := client.ExecuteCommand(cctx, name); err != nil {
			return transportError(err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Executed: %s\n", name)
		return nil
	},
}
