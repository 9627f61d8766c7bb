package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/keymap"
)

var (
	keymapPrefix string
	keymapBinary string
	keymapWrite  bool
	keymapPath   string
)

func init() {
	keymapCmd.Flags().StringVar(&keymapPrefix, "prefix", keymap.DefaultPrefix, "key pressed after space to reach the bindings")
	keymapCmd.Flags().StringVar(&keymapBinary, "binary", "", "command Helix runs (default: this executable)")
	keymapCmd.Flags().BoolVar(&keymapWrite, "write", false, "merge the bindings into the Helix config instead of printing them")
	keymapCmd.Flags().StringVar(&keymapPath, "helix-config", keymap.DefaultConfigPath(), "Helix config.toml used by --write")
	rootCmd.AddCommand(keymapCmd)
}

var keymapCmd = &cobra.Command{
	Use:   "keymap",
	Short: "Print Helix key bindings for opencode-helix",
	Long: `Print a Helix config.toml snippet binding space+<prefix> followed by
a (ask), s (select), e (explain) and r (review). The bindings pass the
buffer name, cursor position and language using Helix command
expansions, which need Helix 25.01 or newer.

With --write the bindings are merged into the Helix config. Other
settings are kept, but comments in that file are not.`,
	Example: `  opencode-helix keymap >> ~/.config/helix/config.toml
  opencode-helix keymap --prefix i --write`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := keymap.Options{
			Prefix: keymapPrefix,
			Binary: keymapBinary,
			Port:   portFlag,
			Theme:  themeFlag,
		}
		if opts.Binary == "" {
			if exe, err := os.Executable(); err == nil {
				opts.Binary = exe
			}
		}

		if keymapWrite {
			if err := keymap.Write(keymapPath, opts); err != nil {
				if errors.Is(err, keymap.ErrConflict) {
					return errors.NewUserError(err, "choose another --prefix")
				}
				return errors.NewSystemError(err, "")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Updated %s\n", keymapPath)
			return nil
		}

		out, err := keymap.Snippet(opts)
		if err != nil {
			return errors.NewSystemError(err, "")
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
