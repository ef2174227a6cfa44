// Package env reports whether the tools pake-cli depends on are installed.
package env

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// State is the outcome of probing one tool.
type State string

const (
	StateOK       State = "ok"
	StateError    State = "error"
	StateWarning  State = "warning"
	StateChecking State = "checking"
)

// Status is the probe result for one tool.
type Status struct {
	Status  State  `json:"status"`
	Version string `json:"version,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Default and max timeout for a single version command.
const (
	DefaultTimeout = 10 * time.Second
	MaxTimeout     = 60 * time.Second
)

// Tool names reported by CheckAll.
const (
	ToolNode         = "nodejs"
	ToolBun          = "bunjs"
	ToolRust         = "rust"
	ToolVisualStudio = "visualStudio"
	ToolPake         = "pake"
)

// Probe describes one executable to look for.
type Probe struct {
	Tool   string // name in the result map
	Binary string // executable looked up on PATH
	Args   []string
}

// DefaultProbes are the executables pake-cli needs.
func DefaultProbes() []Probe {
	return []Probe{
		{Tool: ToolNode, Binary: "node", Args: []string{"--version"}},
		{Tool: ToolBun, Binary: "bun", Args: []string{"--version"}},
		{Tool: ToolRust, Binary: "rustc", Args: []string{"--version"}},
		{Tool: ToolPake, Binary: "pake", Args: []string{"--version"}},
	}
}

// VisualStudioPaths are the Build Tools locations checked on Windows.
var VisualStudioPaths = []string{
	`C:\Program Files (x86)\Microsoft Visual Studio\2022\BuildTools`,
	`C:\Program Files (x86)\Microsoft Visual Studio\2019\BuildTools`,
	`C:\Program Files\Microsoft Visual Studio\2022\Community`,
	`C:\Program Files\Microsoft Visual Studio\2019\Community`,
}

// Checker runs environment probes.
type Checker struct {
	Probes  []Probe
	Timeout time.Duration
	GOOS    string
	Logger  *slog.Logger

	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewChecker returns a Checker with the default probes for this platform.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{
		Probes:   DefaultProbes(),
		Timeout:  DefaultTimeout,
		GOOS:     runtime.GOOS,
		Logger:   logger,
		LookPath: exec.LookPath,
	}
}

// CheckAll probes every tool concurrently and returns the results keyed by
// tool name, including visualStudio.
func (c *Checker) CheckAll(ctx context.Context) map[string]Status {
	results := make(map[string]Status, len(c.Probes)+1)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range c.Probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			st := c.Check(ctx, p)
			mu.Lock()
			results[p.Tool] = st
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	results[ToolVisualStudio] = c.checkVisualStudio()
	return results
}

// Check probes a single tool: it must be on PATH and its version command
// must succeed.
func (c *Checker) Check(ctx context.Context, p Probe) Status {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(p.Binary)
	if err != nil {
		c.Logger.DebugContext(ctx, "tool not found", "tool", p.Tool, "binary", p.Binary)
		return Status{Status: StateError}
	}

	out, err := c.runVersion(ctx, path, p.Args)
	if err != nil {
		c.Logger.DebugContext(ctx, "version command failed", "tool", p.Tool, "err", err)
		return Status{Status: StateError, Path: path}
	}
	version := firstLine(out)
	if version == "" {
		return Status{Status: StateWarning, Path: path}
	}
	return Status{Status: StateOK, Version: version, Path: path}
}

func (c *Checker) runVersion(ctx context.Context, path string, args []string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, path, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

func (c *Checker) checkVisualStudio() Status {
	if c.GOOS != "windows" {
		return Status{Status: StateOK, Version: "Not required on this platform"}
	}
	for _, p := range VisualStudioPaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return Status{Status: StateOK, Version: "Found", Path: p}
		}
	}
	return Status{Status: StateError}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
