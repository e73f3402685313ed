package stream

import "sync"

// Observer receives snapshots as a session progresses. A session never
// calls its observers concurrently, but calls may come from the producer or
// from a goroutine that cancelled the session. Observers must not block for
// long.
type Observer interface {
	OnSnapshot(snap Snapshot)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(snap Snapshot)

// OnSnapshot implements Observer
func (f ObserverFunc) OnSnapshot(snap Snapshot) {
	f(snap)
}

// Callbacks splits snapshots into progress updates and the final one.
// Either field may be nil.
type Callbacks struct {
	UpdateFunc func(snap Snapshot)
	DoneFunc   func(snap Snapshot)
}

// OnSnapshot implements Observer
func (c Callbacks) OnSnapshot(snap Snapshot) {
	if snap.IsDone {
		if c.DoneFunc != nil {
			c.DoneFunc(snap)
		}
		return
	}
	if c.UpdateFunc != nil {
		c.UpdateFunc(snap)
	}
}

// watcher forwards snapshots into a channel, replacing the oldest pending
// snapshot when the channel is full. The final snapshot is always delivered
// and the channel is closed right after it.
type watcher struct {
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

func newWatcher(buffer int) *watcher {
	if buffer < 1 {
		buffer = 1
	}
	return &watcher{ch: make(chan Snapshot, buffer)}
}

func (w *watcher) OnSnapshot(snap Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Snapshots published after the terminal one are stale
	if w.closed {
		return
	}

	for {
		select {
		case w.ch <- snap:
			if snap.IsDone {
				w.closed = true
				close(w.ch)
			}
			return
		default:
		}
		select {
		case <-w.ch:
		default:
		}
	}
}

// Ensure implementations satisfy the interface
var (
	_ Observer = ObserverFunc(nil)
	_ Observer = Callbacks{}
	_ Observer = (*watcher)(nil)
)
