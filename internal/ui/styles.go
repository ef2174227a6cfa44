// Package ui renders coloured terminal output.
package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue: stdout tags, ids
	colorMuted  = 245 // gray: secondary text
	colorOK     = 114 // green
	colorWarn   = 179 // amber: stderr tags, warnings
	colorError  = 203 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderOK returns s in green.
func RenderOK(s string) string { return paint(colorOK, s) }

// RenderWarn returns s in amber.
func RenderWarn(s string) string { return paint(colorWarn, s) }

// RenderError returns s in red.
func RenderError(s string) string { return paint(colorError, s) }

// RenderStream tags a build output line with its stream name. Stdout tags
// use the accent color, stderr tags amber.
func RenderStream(stream, line string) string {
	tag := stream + ":"
	switch stream {
	case "stdout":
		tag = RenderAccent(tag)
	case "stderr":
		tag = RenderWarn(tag)
	}
	return tag + " " + line
}

// RenderState colors an environment probe state.
func RenderState(state string) string {
	switch state {
	case "ok":
		return RenderOK(state)
	case "warning", "checking":
		return RenderWarn(state)
	case "error":
		return RenderError(state)
	}
	return state
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// SetColor enables or disables color output globally.
func SetColor(enabled bool) {
	noColor = !enabled
}
