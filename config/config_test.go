package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `
app_id = "0004000000055D00"
journal_path = "journal.json"

[log]
level = "debug"

[schedule]
cron = "0 3 * * *"
retention_days = 14

[primary]
type = "local"
path = "/srv/save"
start = "/slot1"

[secondary]
type = "sftp"
path = "/sdmc"
[secondary.auth]
host = "backup.lan"
port = 22
user = "save"
password = "secret"
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.BackupRoot != DefaultBackupRoot {
		t.Errorf("BackupRoot = %q, want %q", cfg.BackupRoot, DefaultBackupRoot)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Primary.Start != "/slot1/" {
		t.Errorf("Primary.Start = %q, want /slot1/", cfg.Primary.Start)
	}
	if cfg.Secondary.Start != "/" {
		t.Errorf("Secondary.Start = %q, want /", cfg.Secondary.Start)
	}
	if cfg.Secondary.Auth == nil || cfg.Secondary.Auth.Host != "backup.lan" {
		t.Errorf("Secondary.Auth = %+v", cfg.Secondary.Auth)
	}
	if cfg.Schedule.RetentionDays != 14 {
		t.Errorf("RetentionDays = %d", cfg.Schedule.RetentionDays)
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() Config {
		return Config{
			AppID:     "app",
			Primary:   Volume{Type: "memory"},
			Secondary: Volume{Type: "memory"},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing app id", func(c *Config) { c.AppID = "" }, "app_id"},
		{"app id with separator", func(c *Config) { c.AppID = "a/b" }, "separators"},
		{"page size", func(c *Config) { c.PageSize = 1 }, "page_size"},
		{"relative backup root", func(c *Config) { c.BackupRoot = "backups" }, "backup_root"},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every tuesday" }, "schedule.cron"},
		{"negative retention", func(c *Config) { c.Schedule.RetentionDays = -1 }, "retention_days"},
		{"unknown type", func(c *Config) { c.Primary.Type = "nfs" }, "unknown volume type"},
		{"missing type", func(c *Config) { c.Secondary.Type = "" }, "type is required"},
		{"local without path", func(c *Config) { c.Primary = Volume{Type: "local"} }, "path required"},
		{"ftp without auth", func(c *Config) { c.Primary = Volume{Type: "ftp"} }, "auth required"},
		{"s3 without bucket", func(c *Config) { c.Secondary = Volume{Type: "s3", S3: &S3{}} }, "bucket"},
		{"relative start", func(c *Config) { c.Primary.Start = "save" }, "must be absolute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}

	c := base()
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() of base config = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppID != "0004000000055D00" {
		t.Errorf("AppID = %q", cfg.AppID)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadConfig of missing file succeeded")
	}
	if _, err := Parse([]byte("app_id = ")); err == nil {
		t.Error("Parse of broken TOML succeeded")
	}
}
