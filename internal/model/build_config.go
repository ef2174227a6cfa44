package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BuildConfig holds the pake-cli options stored with a project.
//
// Every option is optional and presence is tracked: a nil pointer means the
// key was absent from the stored document. Decoding is lenient. A known key
// whose value has the wrong JSON type is left unset and its raw value is kept
// in Extra, together with any key this struct does not know about, so that a
// load/save cycle writes back everything it read.
type BuildConfig struct {
	URL                *string
	Name               *string
	Icon               *string
	Width              *uint64
	Height             *uint64
	UseLocalFile       *bool
	Fullscreen         *bool
	HideTitleBar       *bool
	MultiArch          *bool
	Debug              *bool
	ActivationShortcut *string
	AlwaysOnTop        *bool
	Targets            *string
	UserAgent          *string
	ShowSystemTray     *bool
	SystemTrayIcon     *string
	Inject             []string
	SafeDomain         []string

	Extra map[string]json.RawMessage
}

// JSON keys of the typed options, as written by the desktop front end.
const (
	KeyURL                = "url"
	KeyName               = "name"
	KeyIcon               = "icon"
	KeyWidth              = "width"
	KeyHeight             = "height"
	KeyUseLocalFile       = "useLocalFile"
	KeyFullscreen         = "fullscreen"
	KeyHideTitleBar       = "hideTitleBar"
	KeyMultiArch          = "multiArch"
	KeyDebug              = "debug"
	KeyActivationShortcut = "activationShortcut"
	KeyAlwaysOnTop        = "alwaysOnTop"
	KeyTargets            = "targets"
	KeyUserAgent          = "userAgent"
	KeyShowSystemTray     = "showSystemTray"
	KeySystemTrayIcon     = "systemTrayIcon"
	KeyInject             = "inject"
	KeySafeDomain         = "safeDomain"
)

// String returns a pointer to s.
func String(s string) *string { return &s }

// Uint returns a pointer to n.
func Uint(n uint64) *uint64 { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// UnmarshalJSON decodes a config object. Non-object input is an error.
func (c *BuildConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if raw == nil {
		*c = BuildConfig{}
		return nil
	}

	out := BuildConfig{}
	extra := make(map[string]json.RawMessage)

	out.URL = field[string](raw, KeyURL, extra)
	out.Name = field[string](raw, KeyName, extra)
	out.Icon = field[string](raw, KeyIcon, extra)
	out.Width = field[uint64](raw, KeyWidth, extra)
	out.Height = field[uint64](raw, KeyHeight, extra)
	out.UseLocalFile = field[bool](raw, KeyUseLocalFile, extra)
	out.Fullscreen = field[bool](raw, KeyFullscreen, extra)
	out.HideTitleBar = field[bool](raw, KeyHideTitleBar, extra)
	out.MultiArch = field[bool](raw, KeyMultiArch, extra)
	out.Debug = field[bool](raw, KeyDebug, extra)
	out.ActivationShortcut = field[string](raw, KeyActivationShortcut, extra)
	out.AlwaysOnTop = field[bool](raw, KeyAlwaysOnTop, extra)
	out.Targets = field[string](raw, KeyTargets, extra)
	out.UserAgent = field[string](raw, KeyUserAgent, extra)
	out.ShowSystemTray = field[bool](raw, KeyShowSystemTray, extra)
	out.SystemTrayIcon = field[string](raw, KeySystemTrayIcon, extra)
	out.Inject = stringList(raw, KeyInject, extra)
	out.SafeDomain = stringList(raw, KeySafeDomain, extra)

	for k, v := range raw {
		if !knownKey(k) {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		out.Extra = extra
	}
	*c = out
	return nil
}

// MarshalJSON encodes the typed options followed by Extra. A typed option
// that is set wins over an Extra entry of the same key.
func (c BuildConfig) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+len(knownKeys))
	for k, v := range c.Extra {
		m[k] = v
	}
	put := func(key string, set bool, v any) {
		if set {
			m[key] = v
		}
	}
	put(KeyURL, c.URL != nil, c.URL)
	put(KeyName, c.Name != nil, c.Name)
	put(KeyIcon, c.Icon != nil, c.Icon)
	put(KeyWidth, c.Width != nil, c.Width)
	put(KeyHeight, c.Height != nil, c.Height)
	put(KeyUseLocalFile, c.UseLocalFile != nil, c.UseLocalFile)
	put(KeyFullscreen, c.Fullscreen != nil, c.Fullscreen)
	put(KeyHideTitleBar, c.HideTitleBar != nil, c.HideTitleBar)
	put(KeyMultiArch, c.MultiArch != nil, c.MultiArch)
	put(KeyDebug, c.Debug != nil, c.Debug)
	put(KeyActivationShortcut, c.ActivationShortcut != nil, c.ActivationShortcut)
	put(KeyAlwaysOnTop, c.AlwaysOnTop != nil, c.AlwaysOnTop)
	put(KeyTargets, c.Targets != nil, c.Targets)
	put(KeyUserAgent, c.UserAgent != nil, c.UserAgent)
	put(KeyShowSystemTray, c.ShowSystemTray != nil, c.ShowSystemTray)
	put(KeySystemTrayIcon, c.SystemTrayIcon != nil, c.SystemTrayIcon)
	put(KeyInject, c.Inject != nil, c.Inject)
	put(KeySafeDomain, c.SafeDomain != nil, c.SafeDomain)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var knownKeys = map[string]struct{}{
	KeyURL: {}, KeyName: {}, KeyIcon: {}, KeyWidth: {}, KeyHeight: {},
	KeyUseLocalFile: {}, KeyFullscreen: {}, KeyHideTitleBar: {}, KeyMultiArch: {},
	KeyDebug: {}, KeyActivationShortcut: {}, KeyAlwaysOnTop: {}, KeyTargets: {},
	KeyUserAgent: {}, KeyShowSystemTray: {}, KeySystemTrayIcon: {}, KeyInject: {},
	KeySafeDomain: {},
}

func knownKey(k string) bool {
	_, ok := knownKeys[k]
	return ok
}

// field decodes raw[key] into T. Absent keys yield nil. JSON null and values
// of the wrong type also yield nil, and the raw value moves to extra.
func field[T any](raw map[string]json.RawMessage, key string, extra map[string]json.RawMessage) *T {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	if isNull(v) {
		extra[key] = v
		return nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		extra[key] = v
		return nil
	}
	return &out
}

// stringList decodes an array option. Non-string elements are dropped; a
// value that is not an array at all is kept in extra.
func stringList(raw map[string]json.RawMessage, key string, extra map[string]json.RawMessage) []string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if isNull(v) || json.Unmarshal(v, &items) != nil {
		extra[key] = v
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if isNull(item) || json.Unmarshal(item, &s) != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}
