package model

import (
	"strings"
	"time"
)

// Project is a named pake-cli build configuration persisted by the registry.
type Project struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Config BuildConfig `json:"config"`
	// LastModified is the time of the most recent successful save in
	// milliseconds since the Unix epoch. Only the registry sets it.
	LastModified int64 `json:"lastModified"`
}

// ModifiedAt returns LastModified as a time.Time.
func (p *Project) ModifiedAt() time.Time {
	return time.UnixMilli(p.LastModified)
}

// MaxIDLength bounds project ids to a portable directory-name length.
const MaxIDLength = 255

// ValidateID checks that id can be used as a single directory name.
// It returns a KindValidation *Error or nil.
func ValidateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return Validation("validate", id, "id", "is required")
	case id == "." || id == "..":
		return Validation("validate", id, "id", "must not be a relative path element")
	case len(id) > MaxIDLength:
		return Validation("validate", id, "id", "must be 255 bytes or fewer")
	case strings.ContainsAny(id, `/\`+"\x00"):
		return Validation("validate", id, "id", "must not contain path separators or NUL")
	}
	return nil
}
