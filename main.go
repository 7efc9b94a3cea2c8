package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dualpane/config"
	"dualpane/core"
	"dualpane/logging"
	"dualpane/protocols"
)

var argConfig string
var argYes bool
var argLogLevel string

// loaded by the root command before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "dualpane",
	Short:         "browse two volumes side by side, copy between them and keep backups",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(argConfig)
		if err != nil {
			return fmt.Errorf("load config %s: %w", argConfig, err)
		}
		if argLogLevel != "" {
			c.Log.Level = argLogLevel
		}
		if err := logging.Init(logging.Config{
			Level:      c.Log.Level,
			Format:     c.Log.Format,
			OutputPath: c.Log.Output,
		}); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&argConfig, "config", "config.toml", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&argYes, "yes", false, "answer yes to every confirmation")
	rootCmd.PersistentFlags().StringVar(&argLogLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// app is everything a command needs, opened from cfg.
type app struct {
	session *core.Session
	journal *core.Journal
	volumes []protocols.Volume
}

func (a *app) Close() {
	if err := a.journal.Save(); err != nil {
		logging.Warn("save journal", logging.Err(err))
	}
	for _, v := range a.volumes {
		if err := v.Close(); err != nil {
			logging.Warn("close volume", logging.String("volume", v.Name()), logging.Err(err))
		}
	}
}

func openApp(confirm core.Confirmation) (*app, error) {
	a := &app{journal: core.NewJournal(cfg.JournalPath)}
	if err := a.journal.Load(); err != nil {
		logging.Warn("load journal", logging.String("path", cfg.JournalPath), logging.Err(err))
	}

	primaryVol, err := protocols.New(cfg.Primary, "primary")
	if err != nil {
		return nil, fmt.Errorf("init primary volume: %w", err)
	}
	a.volumes = append(a.volumes, primaryVol)
	secondaryVol, err := protocols.New(cfg.Secondary, "secondary")
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init secondary volume: %w", err)
	}
	a.volumes = append(a.volumes, secondaryVol)

	primary, err := core.NewPane(core.PaneConfig{
		Label:    "primary",
		Volume:   primaryVol,
		Root:     cfg.Primary.Start,
		PageSize: cfg.PageSize,
	})
	if err != nil && primary == nil {
		a.Close()
		return nil, err
	}
	secondary, err := core.NewPane(core.PaneConfig{
		Label:    "secondary",
		Volume:   secondaryVol,
		Root:     cfg.Secondary.Start,
		PageSize: cfg.PageSize,
	})
	if err != nil && secondary == nil {
		a.Close()
		return nil, err
	}

	engine := core.NewEngine(confirm)
	backup, err := core.NewBackupManager(engine, primary, core.BackupConfig{
		Volume:   secondaryVol,
		Root:     cfg.BackupRoot,
		AppID:    cfg.AppID,
		PageSize: cfg.PageSize,
		Journal:  a.journal,
	})
	if err != nil {
		logging.Warn("backup set unavailable", logging.Err(err))
		backup = nil
	}

	a.session = core.NewSession(primary, secondary, engine, backup)
	return a, nil
}

// pane returns the session pane called name.
func (a *app) pane(name string) (*core.Pane, error) {
	switch name {
	case "primary", "":
		return a.session.Primary(), nil
	case "secondary":
		return a.session.Secondary(), nil
	default:
		return nil, fmt.Errorf("unknown pane %q, want primary or secondary", name)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if kind := core.KindOf(err); kind == core.KindUserCancelled {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
