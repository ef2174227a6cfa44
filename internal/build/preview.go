package build

import (
	"strings"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

// Preview renders the command line for cfg as a user would type it, e.g.
//
//	pake https://example.com --name 'My App' --fullscreen
//
// A config without a source renders as "<binary> <URL>".
func (t *Translator) Preview(binary string, cfg model.BuildConfig) string {
	args, err := t.Args(cfg)
	if err != nil {
		return binary + " <URL>"
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellQuote(binary))
	for _, a := range args {
		parts = append(parts, ShellQuote(a))
	}
	return strings.Join(parts, " ")
}

// ShellQuote quotes s for a POSIX shell when it contains anything besides
// letters, digits and a small set of punctuation.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isShellSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=@%+,", r)
}
