package opener

import (
	"errors"
	"reflect"
	"testing"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

func TestCommand(t *testing.T) {
	for _, tc := range []struct {
		goos, want string
	}{
		{"windows", "explorer"},
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
	} {
		name, args := Command(tc.goos, "/tmp/x y")
		if name != tc.want {
			t.Errorf("Command(%q) = %q, want %q", tc.goos, name, tc.want)
		}
		if !reflect.DeepEqual(args, []string{"/tmp/x y"}) {
			t.Errorf("Command(%q) args = %q", tc.goos, args)
		}
	}
}

func TestOpen(t *testing.T) {
	var gotName string
	var gotArgs []string
	o := &Opener{GOOS: "darwin", start: func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}}
	if err := o.Open("/p/app"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotName != "open" || !reflect.DeepEqual(gotArgs, []string{"/p/app"}) {
		t.Errorf("started %q %q", gotName, gotArgs)
	}
}

func TestOpen_SpawnFailure(t *testing.T) {
	o := &Opener{GOOS: "linux", start: func(string, ...string) error {
		return errors.New("exec: \"xdg-open\": executable file not found in $PATH")
	}}
	if err := o.Open("/p"); !errors.Is(err, model.ErrProcessSpawn) {
		t.Errorf("Open error = %v, want spawn error", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	o := &Opener{GOOS: "linux", start: func(string, ...string) error {
		t.Fatal("launcher started for an empty path")
		return nil
	}}
	if err := o.Open("  "); !errors.Is(err, model.ErrValidation) {
		t.Errorf("Open error = %v, want validation error", err)
	}
}
