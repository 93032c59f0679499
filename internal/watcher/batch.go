package watcher

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQuiet is the quiet period used when NewBatcher is given none.
const DefaultQuiet = 100 * time.Millisecond

// Batch is every change seen during one burst, across all watched files.
type Batch struct {
	// Paths lists the changed files, sorted.
	Paths []string
	// Ops is the union of operations per path.
	Ops map[string]Op
	// First is the timestamp of the earliest event in the batch.
	First time.Time
}

// Has reports whether path changed in the batch.
func (b Batch) Has(path string) bool {
	_, ok := b.Ops[path]
	return ok
}

// Batcher groups the events of a Watcher into batches. A batch is
// delivered once no event has arrived for the quiet period, so saving a
// suite and its definitions together yields a single batch.
//
// While a batch waits for the consumer, new events are merged into it
// rather than queued behind it.
type Batcher struct {
	inner Watcher
	quiet time.Duration

	batches chan Batch
	errors  chan error
	flush   chan struct{}
	quit    chan struct{}
	done    chan struct{}

	pending atomic.Int64
	dropped atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// NewBatcher starts batching the events of inner. A non-positive quiet
// period uses DefaultQuiet. The Batcher owns inner and closes it.
func NewBatcher(inner Watcher, quiet time.Duration, opts ...Option) *Batcher {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	b := &Batcher{
		inner:   inner,
		quiet:   quiet,
		batches: make(chan Batch),
		errors:  make(chan error, config.BufferSize),
		flush:   make(chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.loop()
	return b
}

// Watch starts watching a file.
func (b *Batcher) Watch(path string) error {
	return b.inner.Watch(path)
}

// Unwatch stops watching a file.
func (b *Batcher) Unwatch(path string) error {
	return b.inner.Unwatch(path)
}

// Batches returns the channel of batches. It is closed when the Batcher
// stops.
func (b *Batcher) Batches() <-chan Batch {
	return b.batches
}

// Errors returns the channel of watcher errors. Errors are dropped when
// nobody reads them.
func (b *Batcher) Errors() <-chan error {
	return b.errors
}

// Flush ends the quiet period now, making pending changes deliverable.
func (b *Batcher) Flush() {
	select {
	case b.flush <- struct{}{}:
	case <-b.done:
	}
}

// Pending returns the number of changed files not yet delivered.
func (b *Batcher) Pending() int {
	return int(b.pending.Load())
}

// Stats returns the inner watcher's statistics with PendingEvents set to
// the undelivered file count.
func (b *Batcher) Stats() Stats {
	stats := b.inner.Stats()
	stats.PendingEvents = b.Pending()
	stats.Errors += b.dropped.Load()
	return stats
}

// Close stops batching and closes the inner watcher. Undelivered changes
// are discarded.
func (b *Batcher) Close() error {
	b.closeOnce.Do(func() {
		close(b.quit)
		<-b.done
		b.closeErr = b.inner.Close()
	})
	return b.closeErr
}

// loop is the only sender on batches and errors, and closes both on exit.
func (b *Batcher) loop() {
	defer close(b.done)
	defer close(b.errors)
	defer close(b.batches)

	var (
		gathering = make(map[string]Op)
		first     time.Time
		ready     *Batch
		timer     = time.NewTimer(b.quiet)
		quietOver <-chan time.Time
	)
	timer.Stop()
	defer timer.Stop()

	promote := func() {
		quietOver = nil
		if len(gathering) == 0 {
			return
		}
		if ready == nil {
			ready = &Batch{Ops: make(map[string]Op), First: first}
		}
		for path, op := range gathering {
			ready.Ops[path] |= op
		}
		gathering = make(map[string]Op)
	}

	for {
		var out chan<- Batch
		var next Batch
		if ready != nil {
			out = b.batches
			next = sortedBatch(ready)
		}
		b.pending.Store(int64(len(gathering) + batchSize(ready)))

		select {
		case <-b.quit:
			return

		case ev, ok := <-b.inner.Events():
			if !ok {
				return
			}
			if len(gathering) == 0 {
				first = ev.Timestamp
			}
			gathering[ev.Path] |= ev.Op
			timer.Reset(b.quiet)
			quietOver = timer.C

		case err, ok := <-b.inner.Errors():
			if !ok {
				return
			}
			select {
			case b.errors <- err:
			default:
				b.dropped.Add(1)
			}

		case <-quietOver:
			promote()

		case <-b.flush:
			timer.Stop()
			promote()

		case out <- next:
			ready = nil
		}
	}
}

func batchSize(b *Batch) int {
	if b == nil {
		return 0
	}
	return len(b.Ops)
}

func sortedBatch(b *Batch) Batch {
	paths := make([]string, 0, len(b.Ops))
	for path := range b.Ops {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return Batch{Paths: paths, Ops: b.Ops, First: b.First}
}
