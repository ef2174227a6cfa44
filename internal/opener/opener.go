// Package opener reveals a path in the platform's file manager.
package opener

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

// Command returns the launcher and arguments that open path on goos.
func Command(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// Opener launches the platform file manager.
type Opener struct {
	GOOS string

	// start defaults to launching the command without waiting.
	start func(name string, args ...string) error
}

// New returns an Opener for the running platform.
func New() *Opener {
	return &Opener{GOOS: runtime.GOOS, start: startDetached}
}

// Open asks the platform to show path. It returns once the launcher has
// been started; the launcher's own outcome is not observed.
func (o *Opener) Open(path string) error {
	if strings.TrimSpace(path) == "" {
		return model.Validation("open", "", "path", "is required")
	}
	name, args := Command(o.GOOS, path)
	start := o.start
	if start == nil {
		start = startDetached
	}
	if err := start(name, args...); err != nil {
		return &model.Error{Kind: model.KindProcessSpawn, Op: "open", Err: err}
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck // reap only
	return nil
}
