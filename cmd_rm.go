package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var argRmPane string
var argRmDir string

var rmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "delete a file or directory after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.session
		p, err := a.pane(argRmPane)
		if err != nil {
			return err
		}
		if p != s.Current() {
			s.Switch()
		}
		if err := navigate(p, argRmDir); err != nil {
			return err
		}
		if !p.SelectName(args[0]) {
			return fmt.Errorf("%s: no such entry in %s", args[0], p.Path())
		}
		if err := s.DeleteSelected(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s%s\n", p.Path(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rmCmd.Flags().StringVar(&argRmPane, "pane", "primary", "pane holding the entry (primary, secondary)")
	rmCmd.Flags().StringVar(&argRmDir, "dir", "", "directory below the pane root")
}
