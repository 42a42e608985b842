package ontology

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Task is a unit of work executed on the owner goroutine.
type Task func(ctx context.Context)

type ownerKey struct{}

// Owner is the model's single owning execution context. Every mutation of a
// Manager, whether local, imported or received from the relay, is submitted
// here and executed in FIFO order by the one goroutine running Run.
type Owner struct {
	logger *slog.Logger

	mu     sync.Mutex
	queue  []Task
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewOwner creates an owner. Run must be called to start executing tasks.
func NewOwner(logger *slog.Logger) *Owner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Owner{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Submit enqueues a task without blocking. The queue is unbounded so a
// producer on another goroutine can never stall on the owner.
func (o *Owner) Submit(task Task) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrOwnerClosed
	}
	o.queue = append(o.queue, task)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do runs fn on the owner goroutine and waits for its result. Called from a
// task already running on the owner, fn runs inline.
func (o *Owner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if OnOwner(ctx, o) {
		return fn(ctx)
	}

	result := make(chan error, 1)
	err := o.Submit(func(taskCtx context.Context) {
		err := errTaskPanicked
		defer func() { result <- err }()
		err = fn(taskCtx)
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-o.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrOwnerClosed
		}
	}
}

// OnOwner reports whether ctx belongs to a task running on o.
func OnOwner(ctx context.Context, o *Owner) bool {
	current, _ := ctx.Value(ownerKey{}).(*Owner)
	return current == o
}

// Run executes queued tasks until ctx is cancelled or Close is called. After
// Close, tasks already queued are drained before Run returns.
func (o *Owner) Run(ctx context.Context) error {
	defer close(o.done)
	taskCtx := context.WithValue(ctx, ownerKey{}, o)

	for {
		task, closed := o.next()
		if task != nil {
			o.execute(taskCtx, task)
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			o.Close()
			return ctx.Err()
		case <-o.wake:
		}
	}
}

// Close stops accepting tasks and wakes Run so it can drain and exit.
func (o *Owner) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Done is closed once Run has returned.
func (o *Owner) Done() <-chan struct{} { return o.done }

func (o *Owner) next() (Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.queue) == 0 {
		return nil, o.closed
	}
	task := o.queue[0]
	o.queue[0] = nil
	o.queue = o.queue[1:]
	return task, o.closed
}

func (o *Owner) execute(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Owner task panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	task(ctx)
}
