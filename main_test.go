package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIBackupExportLocal(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "save")
	sdmc := filepath.Join(dir, "sdmc")
	if err := os.MkdirAll(filepath.Join(save, "extdata"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(save, "extdata", "main.sav"), []byte("progress"), 0644); err != nil {
		t.Fatal(err)
	}
	config := `
app_id = "app"
journal_path = "` + filepath.ToSlash(filepath.Join(dir, "journal.json")) + `"

[primary]
type = "local"
path = "` + filepath.ToSlash(save) + `"

[secondary]
type = "local"
path = "` + filepath.ToSlash(sdmc) + `"
`
	out, err := runCLI(t, config, "backup", "export")
	if err != nil {
		t.Fatalf("backup export: %v", err)
	}
	name := strings.TrimSpace(out)
	data, err := os.ReadFile(filepath.Join(sdmc, "backups", "app", name, "extdata", "main.sav"))
	if err != nil || string(data) != "progress" {
		t.Errorf("snapshot content = %q, %v", data, err)
	}

	out, err = runCLI(t, config, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if !strings.Contains(out, "extdata") || !strings.Contains(out, "> ^ /") {
		t.Errorf("ls output = %q", out)
	}

	out, err = runCLI(t, config, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, name) {
		t.Errorf("history output missing %s: %q", name, out)
	}
}

func TestCLIRejectsBadConfig(t *testing.T) {
	if _, err := runCLI(t, `page_size = 5`, "ls"); err == nil {
		t.Error("config without app_id accepted")
	}
}
