package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/git"
	"github.com/wk-j/opencode-helix/internal/logging"
)

var statusOutput string

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(statusCmd)
}

// statusReport describes the server a command would talk to.
type statusReport struct {
	Endpoint         string `json:"endpoint" yaml:"endpoint"`
	Port             int    `json:"port" yaml:"port"`
	PID              int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	WorkingDirectory string `json:"working_directory" yaml:"working_directory"`
	Repository       string `json:"repository,omitempty" yaml:"repository,omitempty"`
	Cwd              string `json:"cwd" yaml:"cwd"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server used for the current directory",
	Long: `Discover the opencode server for the current directory and print its
endpoint, working directory and process id. With --port the given port
is probed instead and no process id is known.

Output formats:
  text   human-readable (default)
  json   machine-readable JSON
  yaml   machine-readable YAML`,
	Example: `  opencode-helix status
  opencode-helix status -o json`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		switch statusOutput {
		case "text", "json", "yaml":
			return nil
		}
		return errors.NewUserError(errors.Newf("invalid output format: %s", statusOutput), "use text, json or yaml")
	},
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cwd, err := workingDir()
	if err != nil {
		return err
	}
	_, srv, err := connect(ctx, cwd)
	if err != nil {
		return err
	}

	report := statusReport{
		Endpoint:         srv.Endpoint,
		Port:             srv.Port,
		PID:              srv.PID,
		WorkingDirectory: srv.WorkingDirectory,
		Cwd:              cwd,
	}
	if srv.WorkingDirectory != "" {
		if top, err := git.TopLevel(ctx, srv.WorkingDirectory); err == nil {
			report.Repository = top
		} else {
			logging.FromContext(ctx).Debug("no repository for server directory", "error", err)
		}
	}

	return writeReport(cmd.OutOrStdout(), statusOutput, report, printStatusText)
}

func printStatusText(w io.Writer, r statusReport) {
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", label("endpoint: "), color.GreenString(r.Endpoint))
	fmt.Fprintf(w, "%s %s\n", label("directory:"), r.WorkingDirectory)
	if r.Repository != "" && r.Repository != r.WorkingDirectory {
		fmt.Fprintf(w, "%s %s\n", label("repo:     "), r.Repository)
	}
	if r.PID > 0 {
		fmt.Fprintf(w, "%s %d\n", label("pid:      "), r.PID)
	}
}

// writeReport encodes v as json or yaml, or calls text for the text format.
func writeReport[T any](w io.Writer, format string, v T, text func(io.Writer, T)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "encoding json"), "")
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "encoding yaml"), "")
		}
		if err := enc.Close(); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "encoding yaml"), "")
		}
	default:
		text(w, v)
	}
	return nil
}
