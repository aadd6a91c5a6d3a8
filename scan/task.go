package scan

import "context"

// Task is the handle for one long-running pass, as handed to an external
// supervisor: it owns cancellation and exposes progress and the final result,
// nothing else. The work runs on its own goroutine from creation.
type Task struct {
	cancel   context.CancelFunc
	progress func() float64
	done     chan struct{}

	snapshot *Snapshot
	err      error
}

// newTask starts run on its own goroutine under a child context
func newTask(parent context.Context, progress func() float64, run func(ctx context.Context) (*Snapshot, error)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		cancel:   cancel,
		progress: progress,
		done:     make(chan struct{}),
	}

	go func() {
		defer cancel()
		t.snapshot, t.err = run(ctx)
		close(t.done)
	}()

	return t
}

// Cancel requests cooperative cancellation. The task still completes through
// Done with a context error as its result.
func (t *Task) Cancel() {
	t.cancel()
}

// Progress returns completion in [0, 1]
func (t *Task) Progress() float64 {
	select {
	case <-t.done:
		return 1
	default:
		return t.progress()
	}
}

// Done is closed when the task has finished, successfully or not
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result blocks until the task finishes and returns its outcome. A cancelled
// task reports the context error and no snapshot.
func (t *Task) Result() (*Snapshot, error) {
	<-t.done
	return t.snapshot, t.err
}
