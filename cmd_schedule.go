package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dualpane/core"
	"dualpane/logging"
	"dualpane/metrics"
)

var argScheduleNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "export snapshots on the configured cron schedule",
	Long: `Runs in the foreground until interrupted. Every run exports one snapshot and
prunes snapshots older than schedule.retention_days. Prompts cannot be
answered here, so destructive steps need --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Schedule.Cron == "" {
			return fmt.Errorf("schedule.cron is not set")
		}
		a, err := openApp(newTerminalConfirm(eofReader{}, os.Stderr, argYes))
		if err != nil {
			return err
		}
		defer a.Close()

		var srv *http.Server
		if cfg.Metrics.Addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logging.Error("metrics server", logging.Err(err))
				}
			}()
			logging.Info("serving metrics", logging.String("addr", cfg.Metrics.Addr))
		}

		runner := core.NewRunner(a.session, cfg.Schedule.Cron, cfg.Schedule.RetentionDays)
		if argScheduleNow {
			if _, err := runner.RunOnce(); err != nil {
				logging.Error("initial backup failed", logging.Err(err))
			}
		}
		if err := runner.Start(); err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logging.Info("shutting down")
		runner.Stop()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&argScheduleNow, "now", false, "run one backup before waiting for the schedule")
}

// eofReader answers every prompt with no input.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
