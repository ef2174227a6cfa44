package events

import (
	"context"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

// Event topic constants
const (
	TopicProjectSaved   = "pakegui.project.saved"
	TopicProjectDeleted = "pakegui.project.deleted"

	// Build lifecycle events (emitted by the build runner, consumed by `pakegui watch`
	// or any desktop front end subscribed to the bus).
	TopicBuildStarted  = "pakegui.build.started"
	TopicBuildOutput   = "pakegui.build.output"
	TopicBuildFinished = "pakegui.build.finished"

	// TopicAll matches every pakegui subject.
	TopicAll = "pakegui.>"
)

// Event types

type ProjectSaved struct {
	Project *model.Project `json:"project"`
}

type ProjectDeleted struct {
	ProjectID string `json:"project_id"`
}

type BuildStarted struct {
	ProjectID string   `json:"project_id"`
	Dir       string   `json:"dir"`
	Args      []string `json:"args"`
}

type BuildOutput struct {
	ProjectID string `json:"project_id"`
	Stream    string `json:"stream"` // "stdout" or "stderr"
	Line      string `json:"line"`
}

type BuildFinished struct {
	ProjectID string `json:"project_id"`
	ExitCode  int    `json:"exit_code"`
	Error     string `json:"error,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
