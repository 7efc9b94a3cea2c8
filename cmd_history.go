package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dualpane/core"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "print the backup journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		j := core.NewJournal(cfg.JournalPath)
		if err := j.Load(); err != nil {
			return fmt.Errorf("load journal %s: %w", cfg.JournalPath, err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tOP\tSNAPSHOT\tFILES\tBYTES\tERROR")
		for _, r := range j.List() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				r.Time.Local().Format(time.DateTime), r.Op, r.Snapshot, r.Files, r.Bytes, r.Error)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
