package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/killallgit/sanbao/pkg/logger"
	"github.com/killallgit/sanbao/pkg/ndjson"
)

// ErrTransport is reported by Fail when called with a nil error.
var ErrTransport = errors.New("stream transport failed")

// Session accumulates the events of a single chat response.
//
// A Session has exactly one producer, the goroutine calling Feed, Apply,
// Complete, Fail or Run. Any goroutine may call Snapshot, State, Done,
// Cancel and Watch.
//
// Snapshots reach observers in publication order and never concurrently.
// Whichever goroutine publishes while no delivery is running delivers the
// queue; a publisher that finds a delivery in progress leaves its snapshot
// to that goroutine and returns.
//
// Cancellation is cooperative. Cancel moves the session to StateCancelled
// at once and the producer stops at its next delivery boundary. Snapshots
// published before the cancel may still be delivered after Cancel returns,
// always ahead of the final one.
type Session struct {
	id       string
	readSize int
	log      *logger.Logger

	// producer-owned
	framer ndjson.Framer

	mu         sync.RWMutex
	state      State
	content    strings.Builder
	reasoning  strings.Builder
	plan       strings.Builder
	lastStatus *string
	context    map[string]any
	errMsg     *string
	events     int
	observers  []Observer
	final      *Snapshot
	done       chan struct{}

	deliverMu  sync.Mutex
	pending    []delivery
	delivering bool

	decodeErrors atomic.Int64
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithStreamID sets the stream identifier instead of a generated UUID
func WithStreamID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// WithObserver registers an observer before any event is applied
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}

// WithReadSize sets the fragment size Run reads from its reader.
// Zero selects the reader default of 4096 bytes.
func WithReadSize(n int) SessionOption {
	return func(s *Session) {
		s.readSize = n
	}
}

// WithLogger overrides the component logger
func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) {
		s.log = l
	}
}

// NewSession creates an empty, active session
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state: StateActive,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.log == nil {
		s.log = logger.WithComponent("stream")
	}
	s.log = s.log.With("stream_id", s.id)
	return s
}

// StreamID returns the session identifier
func (s *Session) StreamID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Done is closed once the session reaches a terminal state
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// DecodeErrors returns the number of lines skipped as malformed
func (s *Session) DecodeErrors() int {
	return int(s.decodeErrors.Load())
}

// Snapshot returns a copy of the accumulated state. Once the session is
// terminal the same frozen values are returned on every call.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.final != nil {
		return cloneSnapshot(*s.final)
	}
	return s.snapshotLocked()
}

func cloneSnapshot(snap Snapshot) Snapshot {
	snap.LastStatus = copyString(snap.LastStatus)
	snap.Error = copyString(snap.Error)
	snap.Context = copyContext(snap.Context)
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		StreamID:   s.id,
		State:      s.state,
		Content:    s.content.String(),
		Reasoning:  s.reasoning.String(),
		Plan:       s.plan.String(),
		LastStatus: copyString(s.lastStatus),
		Context:    copyContext(s.context),
		Error:      copyString(s.errMsg),
		IsDone:     s.state.IsTerminal(),
		Events:     s.events,
	}
}

// AddObserver registers o. If the session is already terminal, o receives
// the final snapshot immediately.
func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	if s.final != nil {
		final := cloneSnapshot(*s.final)
		s.mu.Unlock()
		o.OnSnapshot(final)
		return
	}
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Watch returns a channel of snapshots. When the consumer falls behind,
// older pending snapshots are replaced by newer ones. The final snapshot is
// always delivered, then the channel is closed.
func (s *Session) Watch(buffer int) <-chan Snapshot {
	w := newWatcher(buffer)
	s.AddObserver(w)
	return w.ch
}

// Apply applies one event and reports whether the session still accepts
// events.
func (s *Session) Apply(ev Event) bool {
	s.mu.Lock()
	if s.state.IsTerminal() {
		s.mu.Unlock()
		return false
	}

	switch e := ev.(type) {
	case Content:
		s.content.WriteString(e.Text)
	case Reasoning:
		s.reasoning.WriteString(e.Text)
	case Plan:
		s.plan.WriteString(e.Text)
	case Status:
		text := e.Text
		s.lastStatus = &text
	case Context:
		s.context = copyContext(e.Payload)
		if s.context == nil {
			s.context = map[string]any{}
		}
	case Error:
		msg := e.Message
		s.errMsg = &msg
		s.state = StateErrored
	case nil:
		s.mu.Unlock()
		return true
	default:
		s.mu.Unlock()
		s.log.Debug("ignoring unknown event", "code", string(ev.Code()))
		return true
	}

	s.events++
	snap := s.publishLocked()
	s.mu.Unlock()

	s.deliver()
	if snap.IsDone {
		s.log.Warn("stream reported error", "error", *snap.Error)
		return false
	}
	return true
}

// delivery is one published snapshot and the observers registered when it
// was published
type delivery struct {
	snap      Snapshot
	observers []Observer
}

// publishLocked snapshots the state, queues it for observers and, on a
// terminal state, freezes it and closes Done. The caller must hold s.mu and
// call deliver after releasing it.
func (s *Session) publishLocked() Snapshot {
	snap := s.snapshotLocked()
	observers := s.observers
	if snap.IsDone {
		frozen := cloneSnapshot(snap)
		s.final = &frozen
		s.observers = nil
		close(s.done)
	}
	if len(observers) > 0 {
		s.deliverMu.Lock()
		s.pending = append(s.pending, delivery{snap: cloneSnapshot(snap), observers: observers})
		s.deliverMu.Unlock()
	}
	return snap
}

// deliver drains the queue unless another goroutine already is. No lock is
// held while observers run, so they may call back into the session.
func (s *Session) deliver() {
	s.deliverMu.Lock()
	if s.delivering {
		s.deliverMu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.deliverMu.Unlock()
		notify(d.observers, d.snap)
		s.deliverMu.Lock()
	}
	s.delivering = false
	s.deliverMu.Unlock()
}

func notify(observers []Observer, snap Snapshot) {
	for i, o := range observers {
		if i == len(observers)-1 {
			o.OnSnapshot(snap)
			return
		}
		o.OnSnapshot(cloneSnapshot(snap))
	}
}

// Feed frames a transport fragment and applies every complete line.
// Empty lines are skipped; malformed lines are logged and skipped.
// It reports whether the session still accepts input.
func (s *Session) Feed(fragment string) bool {
	if s.State().IsTerminal() {
		return false
	}
	for _, line := range s.framer.Push(fragment) {
		if !s.consume(line) {
			return false
		}
	}
	return true
}

func (s *Session) consume(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	ev, err := Decode(line)
	if err != nil {
		s.decodeErrors.Add(1)
		s.log.Warn("skipping malformed line", "error", err, "line", line)
		return !s.State().IsTerminal()
	}
	return s.Apply(ev)
}

// Complete records normal transport closure. A buffered partial line is
// decoded first; the session then becomes StateCompleted unless it already
// reached a terminal state.
func (s *Session) Complete() Snapshot {
	if line, ok := s.framer.Flush(); ok {
		s.consume(line)
	}
	s.finish(StateCompleted, nil)
	return s.Snapshot()
}

// Fail records a transport failure. It has the same effect as an Error
// event carrying err's message.
func (s *Session) Fail(err error) Snapshot {
	if err == nil {
		err = ErrTransport
	}
	s.framer.Flush() // a partial line cut off by a failure is not trusted
	msg := err.Error()
	s.finish(StateErrored, &msg)
	return s.Snapshot()
}

// Cancel stops the session. It is safe to call from any goroutine and more
// than once; calls after a terminal state are no-ops.
func (s *Session) Cancel() {
	s.finish(StateCancelled, nil)
}

func (s *Session) finish(state State, errMsg *string) {
	s.mu.Lock()
	if s.state.IsTerminal() {
		s.mu.Unlock()
		return
	}
	s.state = state
	if errMsg != nil {
		s.errMsg = errMsg
	}
	snap := s.publishLocked()
	s.mu.Unlock()

	s.log.Debug("stream finished", "state", state.String(), "events", snap.Events, "decode_errors", s.DecodeErrors())
	s.deliver()
}

// Run drives the session from r until r is exhausted, the session reaches
// a terminal state, or ctx is done. Cancelling ctx cancels the session.
// Read errors other than io.EOF fail the session. Run returns the final
// snapshot.
func (s *Session) Run(ctx context.Context, r io.Reader) Snapshot {
	if ctx.Err() != nil {
		s.Cancel()
		return s.Snapshot()
	}
	stop := context.AfterFunc(ctx, s.Cancel)
	defer stop()

	for fragment, err := range ndjson.ReaderFragments(r, s.readSize) {
		if err != nil {
			if ctx.Err() != nil {
				s.Cancel()
			} else {
				s.log.Error("stream read failed", "error", err)
				s.Fail(fmt.Errorf("read stream: %w", err))
			}
			return s.Snapshot()
		}
		if !s.Feed(fragment) {
			return s.Snapshot()
		}
	}

	if ctx.Err() != nil {
		s.Cancel()
		return s.Snapshot()
	}
	return s.Complete()
}
