package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var argPruneDays int

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "manage snapshots of the primary pane",
	Long: `Snapshots live on the secondary volume under <backup_root>/<app_id>/ and
are named after the UTC time they were taken.`,
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "copy the primary root into a new snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()
		name, err := a.session.Export()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <snapshot>",
	Short: "replace the primary root with a snapshot",
	Long: `Deletes everything below the primary root, then copies the snapshot back.
The deletion is confirmed once and cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.session.SelectSnapshot(args[0]); err != nil {
			return err
		}
		if err := a.session.Import(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", args[0])
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete <snapshot>",
	Short: "delete a snapshot after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.session.SelectSnapshot(args[0]); err != nil {
			return err
		}
		if err := a.session.DeleteSnapshot(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "list snapshots, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()
		b := a.session.Backup()
		if b == nil {
			return fmt.Errorf("no backup set for %s", cfg.AppID)
		}
		names, err := b.Snapshots()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "delete snapshots older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(newTerminalConfirm(os.Stdin, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()
		days := argPruneDays
		if days == 0 {
			days = cfg.Schedule.RetentionDays
		}
		if days <= 0 {
			return fmt.Errorf("no retention window: set --days or schedule.retention_days")
		}
		pruned, err := a.session.Prune(days)
		for _, n := range pruned {
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %s\n", n)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd, backupImportCmd, backupDeleteCmd, backupListCmd, backupPruneCmd)
	backupPruneCmd.Flags().IntVar(&argPruneDays, "days", 0, "retention window in days (default schedule.retention_days)")
}
