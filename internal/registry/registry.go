// Package registry stores pakegui projects on disk, one directory per project.
//
// Layout:
//
//	<root>/<id>/tauri.conf.json
//
// The record file name predates this package and is kept so existing
// project folders stay readable. There is no locking: the last writer wins.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alfredjeanlab/pakegui/internal/events"
	"github.com/alfredjeanlab/pakegui/internal/model"
)

// ConfigFileName is the record file inside each project directory.
const ConfigFileName = "tauri.conf.json"

// DirName is the registry root below the user's home directory.
const DirName = ".pake-gui"

// ScanPolicy decides what List does with a project directory whose record
// file cannot be read or parsed.
type ScanPolicy int

const (
	// ScanStrict fails the whole listing on the first bad record.
	ScanStrict ScanPolicy = iota
	// ScanSkipMalformed logs bad records and leaves them out.
	ScanSkipMalformed
)

// Registry is a file-backed project store.
type Registry struct {
	root      string
	policy    ScanPolicy
	now       func() time.Time
	logger    *slog.Logger
	publisher events.Publisher
}

// Option configures a Registry.
type Option func(*Registry)

// WithScanPolicy sets how List treats malformed records.
func WithScanPolicy(p ScanPolicy) Option {
	return func(r *Registry) { r.policy = p }
}

// WithClock replaces time.Now for LastModified stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithPublisher emits project.saved / project.deleted events.
func WithPublisher(p events.Publisher) Option {
	return func(r *Registry) { r.publisher = p }
}

// DefaultRoot returns <home>/.pake-gui.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// New returns a registry rooted at root, creating the directory if needed.
func New(root string, opts ...Option) (*Registry, error) {
	r := &Registry{
		root:      root,
		policy:    ScanStrict,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
		publisher: &events.NoopPublisher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &model.Error{Kind: model.KindIO, Op: "open registry", Err: err}
	}
	return r, nil
}

// Root returns the registry root directory.
func (r *Registry) Root() string {
	return r.root
}

// PathOf returns the directory of project id. It does no I/O.
func (r *Registry) PathOf(id string) string {
	return filepath.Join(r.root, id)
}

// ConfigPathOf returns the record file of project id. It does no I/O.
func (r *Registry) ConfigPathOf(id string) string {
	return filepath.Join(r.root, id, ConfigFileName)
}

// List returns every project, most recently modified first. Projects with
// equal timestamps are ordered by id.
func (r *Registry) List(ctx context.Context) ([]*model.Project, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &model.Error{Kind: model.KindIO, Op: "list", Err: err}
	}

	var projects []*model.Project
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, &model.Error{Kind: model.KindIO, Op: "list", Err: err}
		}
		id := entry.Name()
		info, err := os.Stat(r.PathOf(id))
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := os.Stat(r.ConfigPathOf(id)); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		p, err := r.read(id)
		if err != nil {
			if r.policy == ScanSkipMalformed {
				r.logger.WarnContext(ctx, "skipping unreadable project", "id", id, "err", err)
				continue
			}
			return nil, fmt.Errorf("list: %w", err)
		}
		projects = append(projects, p)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].LastModified != projects[j].LastModified {
			return projects[i].LastModified > projects[j].LastModified
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}

// Load reads a single project.
func (r *Registry) Load(ctx context.Context, id string) (*model.Project, error) {
	if err := model.ValidateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &model.Error{Kind: model.KindIO, Op: "load", ID: id, Err: err}
	}
	return r.read(id)
}

// Save stamps p.LastModified and writes p to its directory, creating the
// directory when missing. The file is replaced as a whole.
//
// The stamp is the current time in milliseconds, raised to one past the
// stored value when the clock has not moved past it.
func (r *Registry) Save(ctx context.Context, p *model.Project) error {
	if p == nil {
		return model.Validation("save", "", "project", "is required")
	}
	if err := model.ValidateID(p.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &model.Error{Kind: model.KindIO, Op: "save", ID: p.ID, Err: err}
	}

	dir := r.PathOf(p.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &model.Error{Kind: model.KindIO, Op: "save", ID: p.ID, Err: err}
	}

	stamp := r.now().UnixMilli()
	if prev, err := r.read(p.ID); err == nil && prev.LastModified >= stamp {
		stamp = prev.LastModified + 1
	}

	rec := *p
	rec.LastModified = stamp
	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return &model.Error{Kind: model.KindParse, Op: "save", ID: p.ID, Err: err}
	}
	if err := writeFileAtomic(r.ConfigPathOf(p.ID), data); err != nil {
		return &model.Error{Kind: model.KindIO, Op: "save", ID: p.ID, Err: err}
	}
	p.LastModified = stamp

	r.logger.DebugContext(ctx, "project saved", "id", p.ID, "last_modified", stamp)
	r.publish(ctx, events.TopicProjectSaved, events.ProjectSaved{Project: &rec})
	return nil
}

// Delete removes the project directory and everything in it. Deleting a
// project that does not exist succeeds.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := model.ValidateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &model.Error{Kind: model.KindIO, Op: "delete", ID: id, Err: err}
	}
	dir := r.PathOf(id)
	if _, err := os.Lstat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return &model.Error{Kind: model.KindIO, Op: "delete", ID: id, Err: err}
	}

	r.logger.DebugContext(ctx, "project deleted", "id", id)
	r.publish(ctx, events.TopicProjectDeleted, events.ProjectDeleted{ProjectID: id})
	return nil
}

func (r *Registry) read(id string) (*model.Project, error) {
	data, err := os.ReadFile(r.ConfigPathOf(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &model.Error{Kind: model.KindNotFound, Op: "load", ID: id}
		}
		return nil, &model.Error{Kind: model.KindIO, Op: "load", ID: id, Err: err}
	}

	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &model.Error{Kind: model.KindParse, Op: "load", ID: id, Err: err}
	}
	switch {
	case p.ID == "":
		p.ID = id
	case p.ID != id:
		return nil, &model.Error{
			Kind: model.KindParse, Op: "load", ID: id,
			Err: fmt.Errorf("record id %q does not match its directory", p.ID),
		}
	}
	return &p, nil
}

func (r *Registry) publish(ctx context.Context, topic string, event any) {
	if err := r.publisher.Publish(ctx, topic, event); err != nil {
		r.logger.WarnContext(ctx, "event publish failed", "topic", topic, "err", err)
	}
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never observe a half-written record.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
