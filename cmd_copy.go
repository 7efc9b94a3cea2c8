package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dualpane/core"
)

var argCopyFrom string
var argCopyDir string
var argCopyTo string
var argCopyOverwrite bool

var copyCmd = &cobra.Command{
	Use:   "copy <name>",
	Short: "copy an entry from one pane into the other",
	Long: `Copies the file or directory called name from the --from pane into the
other pane. Existing destination files are only replaced after confirmation
unless --overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.session
		switch argCopyFrom {
		case "primary":
		case "secondary":
			s.Switch()
		default:
			return fmt.Errorf("unknown pane %q, want primary or secondary", argCopyFrom)
		}
		if err := navigate(s.Current(), argCopyDir); err != nil {
			return err
		}
		if err := navigate(s.Peer(), argCopyTo); err != nil {
			return err
		}
		if !s.Current().SelectName(args[0]) {
			return fmt.Errorf("%s: no such entry in %s", args[0], s.Current().Path())
		}

		stats, err := s.CopySelected(argCopyOverwrite)
		fmt.Fprintf(cmd.OutOrStdout(), "copied %d files, %d directories, %d bytes\n", stats.Files, stats.Dirs, stats.Bytes)
		return err
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
	copyCmd.Flags().StringVar(&argCopyFrom, "from", "primary", "source pane (primary, secondary)")
	copyCmd.Flags().StringVar(&argCopyDir, "dir", "", "source directory below the pane root")
	copyCmd.Flags().StringVar(&argCopyTo, "to", "", "destination directory below the other pane's root")
	copyCmd.Flags().BoolVar(&argCopyOverwrite, "overwrite", false, "replace existing files without asking")
}

// navigate opens dir, relative to the pane root, when it is set.
func navigate(p *core.Pane, dir string) error {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return nil
	}
	full, err := core.JoinPath(p.RootPath(), dir)
	if err != nil {
		return err
	}
	return p.Navigate(full)
}
