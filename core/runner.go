package core

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"dualpane/logging"
)

// Runner exports a snapshot on a cron schedule and prunes old ones.
type Runner struct {
	Session       *Session
	Spec          string
	RetentionDays int
	Cron          *cron.Cron
}

func NewRunner(s *Session, spec string, retentionDays int) *Runner {
	return &Runner{
		Session:       s,
		Spec:          spec,
		RetentionDays: retentionDays,
		Cron:          cron.New(),
	}
}

// RunOnce exports one snapshot and then applies the retention window.
func (r *Runner) RunOnce() (string, error) {
	name, err := r.Session.Export()
	if err != nil {
		return name, fmt.Errorf("scheduled export: %w", err)
	}
	if r.RetentionDays > 0 {
		pruned, err := r.Session.Prune(r.RetentionDays)
		if err != nil {
			return name, fmt.Errorf("prune: %w", err)
		}
		if len(pruned) > 0 {
			logging.Info("pruned snapshots", logging.Int("count", len(pruned)))
		}
	}
	return name, nil
}

func (r *Runner) Start() error {
	if r.Spec == "" {
		return fmt.Errorf("no schedule configured")
	}
	_, err := r.Cron.AddFunc(r.Spec, func() {
		if _, err := r.RunOnce(); err != nil {
			logging.Error("scheduled backup failed", logging.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", r.Spec, err)
	}
	logging.Info("scheduled backup", logging.String("cron", r.Spec), logging.Int("retention_days", r.RetentionDays))
	r.Cron.Start()
	return nil
}

// Stop waits for a running export to finish.
func (r *Runner) Stop() {
	<-r.Cron.Stop().Done()
}
