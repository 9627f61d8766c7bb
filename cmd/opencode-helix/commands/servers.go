package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/wk-j/opencode-helix/internal/discovery"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/logging"
)

var (
	serversJSON bool
	serversPick bool
)

// pickServer chooses one candidate interactively; replaced in tests.
var pickServer = func(cands []discovery.Candidate) (int, error) {
	return fuzzyfinder.Find(cands,
		func(i int) string {
			return fmt.Sprintf("%d  %s", cands[i].Port, cands[i].WorkingDirectory)
		},
		fuzzyfinder.WithPromptString("server> "),
		fuzzyfinder.WithHeader("opencode servers (match length for the cwd on the right)"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			c := cands[i]
			return fmt.Sprintf("Endpoint: %s\nPID: %d\nDirectory: %s\nMatch: %d",
				c.Endpoint, c.PID, c.WorkingDirectory, c.Match)
		}),
	)
}

func init() {
	serversCmd.Flags().BoolVar(&serversJSON, "json", false, "output as JSON")
	serversCmd.Flags().BoolVar(&serversPick, "pick", false, "choose a server interactively and print its port")
	serversCmd.MarkFlagsMutuallyExclusive("json", "pick")
	rootCmd.AddCommand(serversCmd)
}

// serverEntry is one row of the servers listing.
type serverEntry struct {
	Port             int    `json:"port"`
	PID              int    `json:"pid"`
	WorkingDirectory string `json:"working_directory,omitempty"`
	Match            int    `json:"match"`
	Error            string `json:"error,omitempty"`
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List every opencode server found on this machine",
	Long: `List the opencode server processes, their working directories and how
well each one matches the current directory. MATCH is the length of the
matching ancestor path; -1 means the server belongs to another project.

Use --pick to choose one of several matching servers; the chosen port is
printed so it can be passed with --port.`,
	Example: `  opencode-helix servers
  opencode-helix --port "$(opencode-helix servers --pick)" ask`,
	Args: cobra.NoArgs,
	RunE: runServers,
}

func runServers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cwd, err := workingDir()
	if err != nil {
		return err
	}
	cands, err := discovery.Candidates(ctx, discoveryOptions(cwd, logging.FromContext(ctx)))
	if err != nil && !errors.Is(err, discovery.ErrProbeTimeout) {
		return discoveryError(err)
	}

	if serversPick {
		return pick(cmd.OutOrStdout(), cands)
	}

	entries := make([]serverEntry, 0, len(cands))
	for _, c := range cands {
		e := serverEntry{Port: c.Port, PID: c.PID, WorkingDirectory: c.WorkingDirectory, Match: c.Match}
		if c.Err != nil {
			e.Error = c.Err.Error()
		}
		entries = append(entries, e)
	}

	format := "text"
	if serversJSON {
		format = "json"
	}
	return writeReport(cmd.OutOrStdout(), format, entries, printServersText)
}

func pick(w io.Writer, cands []discovery.Candidate) error {
	var answered []discovery.Candidate
	for _, c := range cands {
		if c.Err == nil {
			answered = append(answered, c)
		}
	}
	if len(answered) == 0 {
		return errors.NewUserError(errors.Mark(errors.New("no server answered"), discovery.ErrNoServerFound),
			"start opencode in this project")
	}

	idx, err := pickServer(answered)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return errors.NewCancelledError()
		}
		return errors.NewSystemError(errors.Wrap(err, "picking server"), "")
	}
	fmt.Fprintln(w, answered[idx].Port)
	return nil
}

func printServersText(w io.Writer, entries []serverEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No servers found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tPID\tMATCH\tDIRECTORY")
	for _, e := range entries {
		dir := e.WorkingDirectory
		match := strconv.Itoa(e.Match)
		switch {
		case e.Error != "":
			dir = color.RedString(e.Error)
			match = "-"
		case e.Match >= 0:
			match = color.GreenString(match)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", e.Port, e.PID, match, dir)
	}
	_ = tw.Flush()
}
