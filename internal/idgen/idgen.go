// Package idgen generates project IDs, either random (nanoid) or expanded
// from a naming pattern.
package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/pakegui/internal/model"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultPrefix is prepended to every random ID.
var DefaultPrefix = "pk-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// DefaultPattern names projects by their creation time in milliseconds.
const DefaultPattern = "{timestamp}"

// Generate returns a new unique ID using the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// FromPattern expands a naming pattern into a project ID. Supported tokens
// are {name}, {time} (HHMMSS), {year}, {month}, {day} and {timestamp}
// (milliseconds since the epoch). The result only keeps characters that are
// safe in a directory name and is cut to model.MaxIDLength bytes; an empty
// result falls back to the timestamp.
func FromPattern(pattern, name string, t time.Time) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	ts := strconv.FormatInt(t.UnixMilli(), 10)
	r := strings.NewReplacer(
		"{name}", name,
		"{time}", t.Format("150405"),
		"{year}", t.Format("2006"),
		"{month}", t.Format("01"),
		"{day}", t.Format("02"),
		"{timestamp}", ts,
	)
	id := Sanitize(r.Replace(pattern))
	if len(id) > model.MaxIDLength {
		id = id[:model.MaxIDLength]
	}
	if id == "" || id == "." || id == ".." {
		return ts
	}
	return id
}

// Sanitize replaces whitespace runs with a single '-' and drops every other
// character outside [A-Za-z0-9._-].
func Sanitize(s string) string {
	var b strings.Builder
	space := false
	for _, c := range strings.TrimSpace(s) {
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			space = true
			continue
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
		default:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte('-')
		}
		space = false
		b.WriteRune(c)
	}
	return b.String()
}
