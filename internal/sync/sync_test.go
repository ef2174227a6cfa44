package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

// mockDestination records calls to Write.
type mockDestination struct {
	name   string
	err    error
	writes atomic.Int64
	last   atomic.Value // []byte
}

func (d *mockDestination) Name() string { return d.name }

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	d.writes.Add(1)
	cp := make([]byte, len(data))
	copy(cp, data)
	d.last.Store(cp)
	return d.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSchedulerStartStop(t *testing.T) {
	ml := &mockLister{projects: []*model.Project{project("pk-1", "https://example.com", 1)}}
	dest := &mockDestination{name: "mock"}

	sched := NewScheduler(ml, []Destination{dest}, 50*time.Millisecond, testLogger())
	sched.Start()

	// Wait for at least the initial sync + one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}

	data, ok := dest.last.Load().([]byte)
	if !ok || len(data) == 0 {
		t.Fatal("expected non-empty data")
	}
	// 1 header + 1 project
	if lines := nonEmptyLines(string(data)); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestSchedulerZeroIntervalRunsOnce(t *testing.T) {
	dest := &mockDestination{name: "mock"}
	sched := NewScheduler(&mockLister{}, []Destination{dest}, 0, testLogger())
	sched.Start()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes != 1 {
		t.Fatalf("expected 1 write, got %d", writes)
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(&mockLister{}, nil, time.Minute, testLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSyncOnce_MultipleDestinations(t *testing.T) {
	boom := errors.New("unreachable")
	failing := &mockDestination{name: "failing", err: boom}
	ok := &mockDestination{name: "ok"}

	sched := NewScheduler(&mockLister{}, []Destination{failing, ok}, time.Minute, testLogger())
	err := sched.SyncOnce(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("SyncOnce error = %v, want destination error", err)
	}
	if failing.writes.Load() != 1 || ok.writes.Load() != 1 {
		t.Fatalf("writes = %d/%d, want every destination written once", failing.writes.Load(), ok.writes.Load())
	}
}

func TestSyncOnce_ExportError(t *testing.T) {
	dest := &mockDestination{name: "mock"}
	sched := NewScheduler(&mockLister{err: errors.New("corrupt record")}, []Destination{dest}, time.Minute, testLogger())
	if err := sched.SyncOnce(context.Background()); err == nil {
		t.Fatal("SyncOnce = nil, want export error")
	}
	if dest.writes.Load() != 0 {
		t.Error("destination written after a failed export")
	}
}
