package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/wk-j/opencode-helix/cmd"
	"github.com/wk-j/opencode-helix/internal/errors"
)

var (
	genDocDir    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown or man page documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		if genDocDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "pass --dir")
		}
		if err := os.MkdirAll(genDocDir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		root := c.Root()
		root.DisableAutoGenTag = true

		var err error
		switch genDocFormat {
		case "markdown":
			err = doc.GenMarkdownTreeCustom(root, genDocDir, filePrepender, linkHandler)
		case "man":
			err = doc.GenManTree(root, &doc.GenManHeader{
				Title:   "OPENCODE-HELIX",
				Section: "1",
				Source:  "opencode-helix " + cmd.Version,
			}, genDocDir)
		default:
			return errors.NewUserError(errors.Newf("unknown format: %s", genDocFormat), "use markdown or man")
		}
		if err != nil {
			return errors.Wrapf(err, "generating %s", genDocFormat)
		}

		fmt.Fprintf(c.ErrOrStderr(), "Documentation generated in %s\n", genDocDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "markdown or man")
	rootCmd.AddCommand(genDocCmd)
}

// filePrepender adds a title block: opencode-helix_servers.md becomes "servers".
func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.TrimPrefix(strings.ReplaceAll(base, "_", " "), "opencode-helix ")
	if base == "opencode-helix" {
		title = "opencode-helix"
	}
	return fmt.Sprintf("---\ntitle: %q\ndescription: %q\n---\n", title, "Reference for "+title)
}

func linkHandler(name string) string {
	return strings.ToLower(name)
}
