package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

// Lister is the registry view the exporter needs. *registry.Registry
// implements it.
type Lister interface {
	List(ctx context.Context) ([]*model.Project, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	ProjectCount int       `json:"project_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string         `json:"type"`
	Data *model.Project `json:"data"`
}

// ExportJSONL writes every project from l as JSONL to w. A header record
// stamped with now comes first, then one record per project sorted by ID.
func ExportJSONL(ctx context.Context, l Lister, w io.Writer, now time.Time) error {
	projects, err := l.List(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	sorted := make([]*model.Project, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    now.UTC(),
		ProjectCount: len(sorted),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, p := range sorted {
		if err := enc.Encode(record{Type: "project", Data: p}); err != nil {
			return fmt.Errorf("encode project %s: %w", p.ID, err)
		}
	}
	return nil
}
