package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// envVars lists every variable Load reads; they are cleared between tests.
var envVars = []string{
	"PAKEGUI_HOME", "PAKEGUI_PAKE_BIN", "PAKEGUI_LOG_LEVEL", "PAKEGUI_SKIP_MALFORMED",
	"PAKEGUI_NAME_PATTERN", "PAKEGUI_NATS_URL",
	"PAKEGUI_SYNC_INTERVAL", "PAKEGUI_SYNC_S3_BUCKET", "PAKEGUI_SYNC_S3_ENDPOINT",
	"PAKEGUI_SYNC_S3_REGION", "PAKEGUI_SYNC_S3_KEY", "PAKEGUI_SYNC_GIT_REPO",
	"PAKEGUI_SYNC_GIT_FILE", "PAKEGUI_SYNC_GIT_BRANCH",
}

// clearAllEnv points PAKEGUI_HOME at a fresh directory and returns it.
func clearAllEnv(t *testing.T) string {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	home := t.TempDir()
	t.Setenv("PAKEGUI_HOME", home)
	return home
}

func writeSettings(t *testing.T, home, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(home, SettingsFileName), []byte(body), 0o644); err != nil {
		t.Fatalf("writing settings: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Home != home {
		t.Errorf("Home = %q, want %q", cfg.Home, home)
	}
	if cfg.PakeBin != "pake" {
		t.Errorf("PakeBin = %q, want %q", cfg.PakeBin, "pake")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.NamePattern != "{timestamp}" {
		t.Errorf("NamePattern = %q, want %q", cfg.NamePattern, "{timestamp}")
	}
	if cfg.SkipMalformed {
		t.Error("SkipMalformed = true, want false")
	}
	if cfg.NATSURL != "" {
		t.Errorf("NATSURL = %q, want empty", cfg.NATSURL)
	}
	if cfg.Sync.Interval.Duration != 0 {
		t.Errorf("Sync.Interval = %v, want 0", cfg.Sync.Interval)
	}
	if cfg.Sync.S3Region != "us-east-1" {
		t.Errorf("Sync.S3Region = %q, want %q", cfg.Sync.S3Region, "us-east-1")
	}
	if cfg.Sync.S3Key != "pake-gui/projects.jsonl" {
		t.Errorf("Sync.S3Key = %q, want %q", cfg.Sync.S3Key, "pake-gui/projects.jsonl")
	}
	if cfg.Sync.GitFile != "projects.jsonl" {
		t.Errorf("Sync.GitFile = %q, want %q", cfg.Sync.GitFile, "projects.jsonl")
	}
	if cfg.Sync.GitBranch != "main" {
		t.Errorf("Sync.GitBranch = %q, want %q", cfg.Sync.GitBranch, "main")
	}
	if cfg.Defaults != (Defaults{Width: 1200, Height: 780, Targets: "all"}) {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
}

func TestLoad_DefaultHome(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("PAKEGUI_HOME", "")
	userHome := t.TempDir()
	t.Setenv("HOME", userHome)
	t.Setenv("USERPROFILE", userHome)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(userHome, ".pake-gui"); cfg.Home != want {
		t.Errorf("Home = %q, want %q", cfg.Home, want)
	}
}

func TestLoad_SettingsFile(t *testing.T) {
	home := clearAllEnv(t)
	writeSettings(t, home, `
pake_bin = "/opt/pake/bin/pake"
skip_malformed = true
name_pattern = "{name}-{timestamp}"

[sync]
interval = "5m"
s3_bucket = "backups"

[defaults]
width = 1024
targets = "deb"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PakeBin != "/opt/pake/bin/pake" {
		t.Errorf("PakeBin = %q", cfg.PakeBin)
	}
	if !cfg.SkipMalformed {
		t.Error("SkipMalformed = false, want true")
	}
	if cfg.NamePattern != "{name}-{timestamp}" {
		t.Errorf("NamePattern = %q", cfg.NamePattern)
	}
	if cfg.Sync.Interval.Duration != 5*time.Minute {
		t.Errorf("Sync.Interval = %v, want 5m", cfg.Sync.Interval)
	}
	if cfg.Sync.S3Bucket != "backups" {
		t.Errorf("Sync.S3Bucket = %q", cfg.Sync.S3Bucket)
	}
	if cfg.Sync.S3Region != "us-east-1" {
		t.Errorf("Sync.S3Region = %q, want default kept", cfg.Sync.S3Region)
	}
	if cfg.Defaults != (Defaults{Width: 1024, Height: 780, Targets: "deb"}) {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	home := clearAllEnv(t)
	writeSettings(t, home, `
pake_bin = "from-file"
nats_url = "nats://file:4222"
skip_malformed = true
[sync]
interval = "5m"
git_branch = "file-branch"
`)
	t.Setenv("PAKEGUI_PAKE_BIN", "from-env")
	t.Setenv("PAKEGUI_NATS_URL", "nats://env:4222")
	t.Setenv("PAKEGUI_SKIP_MALFORMED", "false")
	t.Setenv("PAKEGUI_SYNC_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PakeBin != "from-env" {
		t.Errorf("PakeBin = %q, want from-env", cfg.PakeBin)
	}
	if cfg.NATSURL != "nats://env:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.SkipMalformed {
		t.Error("SkipMalformed = true, want env false to win")
	}
	if cfg.Sync.Interval.Duration != 30*time.Second {
		t.Errorf("Sync.Interval = %v, want 30s", cfg.Sync.Interval)
	}
	if cfg.Sync.GitBranch != "file-branch" {
		t.Errorf("Sync.GitBranch = %q, want file-branch", cfg.Sync.GitBranch)
	}
}

func TestLoad_Errors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		env      map[string]string
		settings string
	}{
		{name: "BadInterval", env: map[string]string{"PAKEGUI_SYNC_INTERVAL": "not-a-duration"}},
		{name: "NegativeInterval", env: map[string]string{"PAKEGUI_SYNC_INTERVAL": "-1m"}},
		{name: "BadSkipMalformed", env: map[string]string{"PAKEGUI_SKIP_MALFORMED": "maybe"}},
		{name: "BadSettingsFile", settings: "pake_bin = [1, 2"},
		{name: "BadFileInterval", settings: "[sync]\ninterval = \"soon\""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			home := clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if tc.settings != "" {
				writeSettings(t, home, tc.settings)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearAllEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, kv := range [][2]string{
		{"pake_bin", "/usr/local/bin/pake"},
		{"sync.interval", "10m"},
		{"sync.s3_bucket", "b"},
		{"defaults.width", "640"},
		{"skip_malformed", "true"},
	} {
		if err := cfg.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%q, %q): %v", kv[0], kv[1], err)
		}
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load()
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if again.PakeBin != "/usr/local/bin/pake" {
		t.Errorf("PakeBin = %q", again.PakeBin)
	}
	if again.Sync.Interval.Duration != 10*time.Minute {
		t.Errorf("Sync.Interval = %v", again.Sync.Interval)
	}
	if again.Sync.S3Bucket != "b" {
		t.Errorf("Sync.S3Bucket = %q", again.Sync.S3Bucket)
	}
	if again.Defaults.Width != 640 || again.Defaults.Height != 780 {
		t.Errorf("Defaults = %+v", again.Defaults)
	}
	if !again.SkipMalformed {
		t.Error("SkipMalformed = false after save")
	}
}

func TestSet_Errors(t *testing.T) {
	cfg := Default(t.TempDir())
	for _, kv := range [][2]string{
		{"no_such_key", "x"},
		{"defaults.width", "wide"},
		{"sync.interval", "-5s"},
		{"skip_malformed", "perhaps"},
	} {
		if err := cfg.Set(kv[0], kv[1]); err == nil {
			t.Errorf("Set(%q, %q) = nil, want error", kv[0], kv[1])
		}
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	joined := strings.Join(keys, ",")
	for _, want := range []string{"pake_bin", "sync.interval", "defaults.targets"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Keys() missing %q: %v", want, keys)
		}
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("Keys() not sorted: %v", keys)
		}
	}
}

func TestLoadFile_IgnoresEnv(t *testing.T) {
	home := clearAllEnv(t)
	writeSettings(t, home, `pake_bin = "from-file"`)
	t.Setenv("PAKEGUI_PAKE_BIN", "from-env")

	cfg, err := LoadFile(home)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PakeBin != "from-file" {
		t.Errorf("PakeBin = %q, want from-file", cfg.PakeBin)
	}
}
