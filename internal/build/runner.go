package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/pakegui/internal/events"
	"github.com/alfredjeanlab/pakegui/internal/model"
)

// DefaultBinary is the pake-cli executable looked up on PATH.
const DefaultBinary = "pake"

// DefaultWaitDelay bounds how long the pipes may stay silent after the tool
// exits before they are closed, for descendants that keep its stdout or
// stderr open. Every line read restarts the delay.
const DefaultWaitDelay = 2 * time.Second

// Stream names the pipe an output line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Event is one item of a run's output relay. Output events carry Stream and
// Line. The last event of every run has Done set and Err holding the
// outcome: nil for a zero exit, a KindProcessExit *model.Error otherwise.
type Event struct {
	Stream Stream
	Line   string
	Done   bool
	Err    error
}

// String renders the event the way the desktop front end displayed it.
func (e Event) String() string {
	if e.Done {
		if e.Err != nil {
			return "error: " + e.Err.Error()
		}
		return "done"
	}
	return string(e.Stream) + ": " + e.Line
}

// Dirs resolves a project's working directory. *registry.Registry
// implements it.
type Dirs interface {
	PathOf(id string) string
}

// Runner launches pake-cli for projects.
type Runner struct {
	dirs       Dirs
	translator *Translator
	binary     string
	waitDelay  time.Duration
	logger     *slog.Logger
	publisher  events.Publisher
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBinary sets the executable to run instead of "pake".
func WithBinary(path string) RunnerOption {
	return func(r *Runner) { r.binary = path }
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) RunnerOption {
	return func(r *Runner) { r.waitDelay = d }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithPublisher mirrors every run event onto the event bus.
func WithPublisher(p events.Publisher) RunnerOption {
	return func(r *Runner) { r.publisher = p }
}

// NewRunner returns a Runner that builds projects inside dirs.
func NewRunner(dirs Dirs, t *Translator, opts ...RunnerOption) *Runner {
	r := &Runner{
		dirs:       dirs,
		translator: t,
		binary:     DefaultBinary,
		waitDelay:  DefaultWaitDelay,
		logger:     slog.New(slog.DiscardHandler),
		publisher:  &events.NoopPublisher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the executable the runner starts.
func (r *Runner) Binary() string {
	return r.binary
}

// Run is a single pake-cli process and its output relay.
type Run struct {
	ProjectID string
	Dir       string
	Args      []string

	events chan Event
}

// Events returns the relay channel. Output events arrive in the order they
// were read, followed by exactly one Done event, after which the channel is
// closed. The caller must drain the channel until it is closed.
func (run *Run) Events() <-chan Event {
	return run.events
}

// Start validates cfg, prepares the project directory and starts the tool.
// Validation, directory and spawn failures are returned directly and no
// events are produced. Canceling ctx kills the tool.
func (r *Runner) Start(ctx context.Context, id string, cfg model.BuildConfig) (*Run, error) {
	args, err := r.translator.Args(cfg)
	if err != nil {
		var me *model.Error
		if errors.As(err, &me) {
			me.Op, me.ID = "build", id
		}
		return nil, err
	}
	if err := model.ValidateID(id); err != nil {
		return nil, err
	}

	dir := r.dirs.PathOf(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &model.Error{Kind: model.KindIO, Op: "build", ID: id, Err: fmt.Errorf("create project directory: %w", err)}
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, &model.Error{Kind: model.KindProcessSpawn, Op: "build", ID: id, Err: err}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, &model.Error{Kind: model.KindProcessSpawn, Op: "build", ID: id, Err: err}
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = dir
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	configureProcess(cmd)

	startErr := cmd.Start()
	// The child holds its own copies of the write ends; ours must be closed
	// so the readers see EOF once every writer is gone.
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		stdoutR.Close()
		stderrR.Close()
		return nil, &model.Error{Kind: model.KindProcessSpawn, Op: "build", ID: id, Err: startErr}
	}

	run := &Run{ProjectID: id, Dir: dir, Args: args, events: make(chan Event, 64)}
	r.logger.InfoContext(ctx, "build started", "id", id, "binary", r.binary, "dir", dir, "pid", cmd.Process.Pid)
	r.publish(ctx, events.TopicBuildStarted, events.BuildStarted{ProjectID: id, Dir: dir, Args: args})

	go r.relay(ctx, run, cmd, stdoutR, stderrR)
	return run, nil
}

// Run starts a build and calls fn for every event, including the final Done
// event. It returns the run's outcome.
func (r *Runner) Run(ctx context.Context, id string, cfg model.BuildConfig, fn func(Event)) error {
	run, err := r.Start(ctx, id, cfg)
	if err != nil {
		return err
	}
	var result error
	for ev := range run.Events() {
		if fn != nil {
			fn(ev)
		}
		if ev.Done {
			result = ev.Err
		}
	}
	return result
}

func (r *Runner) relay(ctx context.Context, run *Run, cmd *exec.Cmd, stdoutR, stderrR *os.File) {
	defer close(run.events)

	// Readers never wait for the consumer: lines go to an unbounded queue
	// and a single sender delivers them to run.events in order.
	q := newEventQueue()
	senderDone := make(chan struct{})
	go func() {
		defer close(senderDone)
		for {
			ev, ok := q.pop()
			if !ok {
				return
			}
			run.events <- ev
		}
	}()

	progress := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.readLines(ctx, run, Stdout, stdoutR, q, progress)
	}()
	go func() {
		defer wg.Done()
		r.readLines(ctx, run, Stderr, stderrR, q, progress)
	}()
	readersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(readersDone)
	}()

	waitErr := cmd.Wait()

	// A descendant may keep a pipe open after the tool exits. Give up on
	// the pipes only once no line has been read for waitDelay.
	idle := time.NewTimer(r.waitDelay)
	defer idle.Stop()
drain:
	for {
		select {
		case <-readersDone:
			break drain
		case <-progress:
			idle.Reset(r.waitDelay)
		case <-idle.C:
			r.logger.WarnContext(ctx, "output still open after exit, closing", "id", run.ProjectID)
			stdoutR.Close()
			stderrR.Close()
			<-readersDone
			break drain
		}
	}
	stdoutR.Close()
	stderrR.Close()

	q.close()
	<-senderDone

	final := Event{Done: true, Err: exitError(ctx, run.ProjectID, waitErr)}
	finished := events.BuildFinished{ProjectID: run.ProjectID}
	if final.Err != nil {
		var me *model.Error
		if errors.As(final.Err, &me) {
			finished.ExitCode = me.ExitCode
		}
		finished.Error = final.Err.Error()
		r.logger.WarnContext(ctx, "build failed", "id", run.ProjectID, "err", final.Err)
	} else {
		r.logger.InfoContext(ctx, "build finished", "id", run.ProjectID)
	}
	// Publishing must not depend on ctx: the terminal event is sent even
	// for canceled runs.
	r.publish(context.WithoutCancel(ctx), events.TopicBuildFinished, finished)
	run.events <- final
}

func (r *Runner) readLines(ctx context.Context, run *Run, stream Stream, f io.Reader, q *eventQueue, progress chan<- struct{}) {
	br := bufio.NewReader(f)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.ToValidUTF8(strings.TrimRight(line, "\r\n"), "\uFFFD")
			q.push(Event{Stream: stream, Line: line})
			select {
			case progress <- struct{}{}:
			default:
			}
			r.publish(context.WithoutCancel(ctx), events.TopicBuildOutput, events.BuildOutput{
				ProjectID: run.ProjectID, Stream: string(stream), Line: line,
			})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				r.logger.DebugContext(ctx, "output read ended", "id", run.ProjectID, "stream", stream, "err", err)
			}
			return
		}
	}
}

// eventQueue is an unbounded FIFO between the pipe readers and the sender.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Event
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.cond.Signal()
}

// close marks the end of input. Queued events are still popped.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// pop blocks until an event is queued or the queue is closed and empty.
func (q *eventQueue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Event{}, false
	}
	ev := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]
	return ev, true
}

// exitError maps the result of cmd.Wait to the run's terminal error.
func exitError(ctx context.Context, id string, waitErr error) error {
	if waitErr == nil {
		return nil
	}
	e := &model.Error{Kind: model.KindProcessExit, Op: "build", ID: id, ExitCode: -1, Err: waitErr}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		e.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		e.Err = fmt.Errorf("%w (%v)", ctxErr, waitErr)
	}
	return e
}

func (r *Runner) publish(ctx context.Context, topic string, event any) {
	if err := r.publisher.Publish(ctx, topic, event); err != nil {
		r.logger.DebugContext(ctx, "event publish failed", "topic", topic, "err", err)
	}
}
