package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/pakegui/internal/registry"
)

// SettingsFileName is the TOML file read from the home directory.
const SettingsFileName = "settings.toml"

type Config struct {
	Home          string `toml:"-"`              // PAKEGUI_HOME (default ~/.pake-gui)
	PakeBin       string `toml:"pake_bin"`       // PAKEGUI_PAKE_BIN (default "pake")
	LogLevel      string `toml:"log_level"`      // PAKEGUI_LOG_LEVEL (default "info")
	SkipMalformed bool   `toml:"skip_malformed"` // PAKEGUI_SKIP_MALFORMED
	NamePattern   string `toml:"name_pattern"`   // PAKEGUI_NAME_PATTERN (default "{timestamp}")
	NATSURL       string `toml:"nats_url"`       // PAKEGUI_NATS_URL (optional, empty = no events)

	Sync     Sync     `toml:"sync"`
	Defaults Defaults `toml:"defaults"`
}

// Sync settings
type Sync struct {
	Interval   Duration `toml:"interval"`    // PAKEGUI_SYNC_INTERVAL (default 0 = one-shot)
	S3Bucket   string   `toml:"s3_bucket"`   // PAKEGUI_SYNC_S3_BUCKET (enables S3 when set)
	S3Endpoint string   `toml:"s3_endpoint"` // PAKEGUI_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	S3Region   string   `toml:"s3_region"`   // PAKEGUI_SYNC_S3_REGION (default "us-east-1")
	S3Key      string   `toml:"s3_key"`      // PAKEGUI_SYNC_S3_KEY (default "pake-gui/projects.jsonl")
	GitRepo    string   `toml:"git_repo"`    // PAKEGUI_SYNC_GIT_REPO (enables git when set; path to clone)
	GitFile    string   `toml:"git_file"`    // PAKEGUI_SYNC_GIT_FILE (default "projects.jsonl")
	GitBranch  string   `toml:"git_branch"`  // PAKEGUI_SYNC_GIT_BRANCH (default "main")
}

// Defaults are the window and target values pake-cli assumes when a flag
// is omitted.
type Defaults struct {
	Width   uint64 `toml:"width"`
	Height  uint64 `toml:"height"`
	Targets string `toml:"targets"`
}

// Duration is a time.Duration written as a string ("5m") in TOML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings rooted at home.
func Default(home string) *Config {
	return &Config{
		Home:        home,
		PakeBin:     "pake",
		LogLevel:    "info",
		NamePattern: "{timestamp}",
		Sync: Sync{
			S3Region:  "us-east-1",
			S3Key:     "pake-gui/projects.jsonl",
			GitFile:   "projects.jsonl",
			GitBranch: "main",
		},
		Defaults: Defaults{Width: 1200, Height: 780, Targets: "all"},
	}
}

// Load builds the configuration from the defaults, then the settings file,
// then the environment. Environment values win.
func Load() (*Config, error) {
	home := os.Getenv("PAKEGUI_HOME")
	if home == "" {
		var err error
		if home, err = registry.DefaultRoot(); err != nil {
			return nil, err
		}
	}

	c, err := LoadFile(home)
	if err != nil {
		return nil, err
	}

	c.PakeBin = envOrDefault("PAKEGUI_PAKE_BIN", c.PakeBin)
	c.LogLevel = envOrDefault("PAKEGUI_LOG_LEVEL", c.LogLevel)
	c.NamePattern = envOrDefault("PAKEGUI_NAME_PATTERN", c.NamePattern)
	c.NATSURL = envOrDefault("PAKEGUI_NATS_URL", c.NATSURL)
	c.Sync.S3Bucket = envOrDefault("PAKEGUI_SYNC_S3_BUCKET", c.Sync.S3Bucket)
	c.Sync.S3Endpoint = envOrDefault("PAKEGUI_SYNC_S3_ENDPOINT", c.Sync.S3Endpoint)
	c.Sync.S3Region = envOrDefault("PAKEGUI_SYNC_S3_REGION", c.Sync.S3Region)
	c.Sync.S3Key = envOrDefault("PAKEGUI_SYNC_S3_KEY", c.Sync.S3Key)
	c.Sync.GitRepo = envOrDefault("PAKEGUI_SYNC_GIT_REPO", c.Sync.GitRepo)
	c.Sync.GitFile = envOrDefault("PAKEGUI_SYNC_GIT_FILE", c.Sync.GitFile)
	c.Sync.GitBranch = envOrDefault("PAKEGUI_SYNC_GIT_BRANCH", c.Sync.GitBranch)

	if v := os.Getenv("PAKEGUI_SKIP_MALFORMED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PAKEGUI_SKIP_MALFORMED: %w", err)
		}
		c.SkipMalformed = b
	}
	if v := os.Getenv("PAKEGUI_SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PAKEGUI_SYNC_INTERVAL: %w", err)
		}
		c.Sync.Interval = Duration{d}
	}
	if c.Sync.Interval.Duration < 0 {
		return nil, fmt.Errorf("sync interval must not be negative, got %s", c.Sync.Interval)
	}

	return c, nil
}

// LoadFile returns the defaults overlaid with the settings file in home,
// ignoring the environment. A missing file is not an error.
func LoadFile(home string) (*Config, error) {
	c := Default(home)
	if _, err := toml.DecodeFile(c.Path(), c); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", c.Path(), err)
	}
	c.Home = home
	return c, nil
}

// Path is the settings file location.
func (c *Config) Path() string {
	return filepath.Join(c.Home, SettingsFileName)
}

// Save writes the settings file. Values from the environment are written
// too when c came from Load; use LoadFile to edit the file alone.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Home, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(c.Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// setters maps settings keys, as written by `config set`, to their parsers.
var setters = map[string]func(c *Config, v string) error{
	"pake_bin":  func(c *Config, v string) error { c.PakeBin = v; return nil },
	"log_level": func(c *Config, v string) error { c.LogLevel = v; return nil },
	"skip_malformed": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.SkipMalformed = b
		return err
	},
	"name_pattern": func(c *Config, v string) error { c.NamePattern = v; return nil },
	"nats_url":     func(c *Config, v string) error { c.NATSURL = v; return nil },
	"sync.interval": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err == nil && d < 0 {
			err = errors.New("must not be negative")
		}
		c.Sync.Interval = Duration{d}
		return err
	},
	"sync.s3_bucket":   func(c *Config, v string) error { c.Sync.S3Bucket = v; return nil },
	"sync.s3_endpoint": func(c *Config, v string) error { c.Sync.S3Endpoint = v; return nil },
	"sync.s3_region":   func(c *Config, v string) error { c.Sync.S3Region = v; return nil },
	"sync.s3_key":      func(c *Config, v string) error { c.Sync.S3Key = v; return nil },
	"sync.git_repo":    func(c *Config, v string) error { c.Sync.GitRepo = v; return nil },
	"sync.git_file":    func(c *Config, v string) error { c.Sync.GitFile = v; return nil },
	"sync.git_branch":  func(c *Config, v string) error { c.Sync.GitBranch = v; return nil },
	"defaults.width": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		c.Defaults.Width = n
		return err
	},
	"defaults.height": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		c.Defaults.Height = n
		return err
	},
	"defaults.targets": func(c *Config, v string) error { c.Defaults.Targets = v; return nil },
}

// Keys lists the settings accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one setting from its string form.
func (c *Config) Set(key, value string) error {
	set, ok := setters[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
