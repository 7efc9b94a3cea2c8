package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dualpane/core"
)

const nameWidth = 40

var argLsPane string
var argLsSelect int

var lsCmd = &cobra.Command{
	Use:   "ls [dir]",
	Short: "list one page of a pane directory",
	Long: `Lists the directory the pane opens at, or dir below it. The cursor starts
on the first row; --select moves it by that many rows and the page scrolls
the way it does when browsing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.pane(argLsPane)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if err := navigate(p, args[0]); err != nil {
				return err
			}
		}
		p.Move(argLsSelect)
		printPane(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().StringVar(&argLsPane, "pane", "primary", "pane to list (primary, secondary)")
	lsCmd.Flags().IntVar(&argLsSelect, "select", 0, "rows to move the cursor before printing")
}

func printPane(w io.Writer, p *core.Pane) {
	fmt.Fprintf(w, "%s%s  (%d entries)\n", p.Volume().Name(), p.Path(), p.Count())
	for i, e := range p.Window() {
		marker := " "
		if p.OffsetID()+i == p.SelectedID() {
			marker = ">"
		}
		kind := "-"
		size := fmt.Sprintf("%d", e.Size)
		switch {
		case e.IsVirtual():
			kind, size = "^", ""
		case e.IsDirectory:
			kind, size = "d", ""
		}
		fmt.Fprintf(w, "%s %s %-*s %12s\n", marker, kind, nameWidth, core.DisplayName(e.Name, nameWidth), size)
	}
}
