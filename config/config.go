package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

const (
	DefaultPageSize   = 20
	DefaultBackupRoot = "/backups/"
)

type Config struct {
	AppID       string   `toml:"app_id"`
	PageSize    int      `toml:"page_size"`
	BackupRoot  string   `toml:"backup_root"`
	JournalPath string   `toml:"journal_path"`
	Log         Log      `toml:"log"`
	Metrics     Metrics  `toml:"metrics"`
	Schedule    Schedule `toml:"schedule"`
	Primary     Volume   `toml:"primary"`
	Secondary   Volume   `toml:"secondary"`
}

type Log struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json, console
	Output string `toml:"output"` // stdout, stderr or a file path
}

type Metrics struct {
	Addr string `toml:"addr"`
}

type Schedule struct {
	Cron          string `toml:"cron"`
	RetentionDays int    `toml:"retention_days"` // 清理多少天之前的备份
}

type Volume struct {
	Type  string `toml:"type"`  // local, memory, sftp, ftp, s3
	Path  string `toml:"path"`  // root of the volume on its backend
	Start string `toml:"start"` // directory the pane opens at
	Auth  *Auth  `toml:"auth,omitempty"`
	S3    *S3    `toml:"s3,omitempty"`
}

type Auth struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type S3 struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults and rejects settings no pane can run with.
func (c *Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("app_id is required")
	}
	if strings.ContainsAny(c.AppID, "/\\") {
		return fmt.Errorf("app_id %q must not contain path separators", c.AppID)
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize < 2 {
		return fmt.Errorf("page_size must be at least 2, got %d", c.PageSize)
	}
	if c.BackupRoot == "" {
		c.BackupRoot = DefaultBackupRoot
	}
	if !strings.HasPrefix(c.BackupRoot, "/") {
		return fmt.Errorf("backup_root %q must be absolute", c.BackupRoot)
	}
	if !strings.HasSuffix(c.BackupRoot, "/") {
		c.BackupRoot += "/"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron %q: %w", c.Schedule.Cron, err)
		}
	}
	if c.Schedule.RetentionDays < 0 {
		return fmt.Errorf("schedule.retention_days must not be negative")
	}
	if err := c.Primary.validate("primary"); err != nil {
		return err
	}
	return c.Secondary.validate("secondary")
}

func (v *Volume) validate(name string) error {
	switch v.Type {
	case "local":
		if v.Path == "" {
			return fmt.Errorf("%s: path required for local volume", name)
		}
	case "memory":
	case "sftp", "ftp":
		if v.Auth == nil {
			return fmt.Errorf("%s: auth required for %s", name, v.Type)
		}
	case "s3":
		if v.S3 == nil || v.S3.Bucket == "" {
			return fmt.Errorf("%s: s3.bucket required for s3 volume", name)
		}
	case "":
		return fmt.Errorf("%s: volume type is required", name)
	default:
		return fmt.Errorf("%s: unknown volume type: %s", name, v.Type)
	}
	if v.Start == "" {
		v.Start = "/"
	}
	if !strings.HasPrefix(v.Start, "/") {
		return fmt.Errorf("%s: start %q must be absolute", name, v.Start)
	}
	if !strings.HasSuffix(v.Start, "/") {
		v.Start += "/"
	}
	return nil
}
