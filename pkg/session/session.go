// Package session tracks the single in-flight analysis of a client and
// publishes its state to subscribers.
//
// A Session moves between three observable states:
//
//	Idle     no file, not loading, no result
//	Pending  file set, loading, no result
//	Settled  file set, not loading, result set
//
// Start always enters Pending, superseding whatever was in flight. The
// superseded request is not aborted; its result is dropped when it arrives.
// Clear always returns to Idle.
package session

import (
	"context"
	"sync"

	"github.com/helmcode/codelinter/pkg/model"
)

// Submitter performs one analysis round trip. Implementations must always
// return a non-nil Result.
type Submitter interface {
	Submit(ctx context.Context, file model.File) model.Result
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, file model.File) model.Result

func (f SubmitterFunc) Submit(ctx context.Context, file model.File) model.Result {
	return f(ctx, file)
}

// State names the three reachable snapshot shapes.
type State int

const (
	Idle State = iota
	Pending
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session fields.
type Snapshot struct {
	File    *model.File
	Result  model.Result
	Loading bool
}

// State derives the lifecycle state from the snapshot fields.
func (s Snapshot) State() State {
	switch {
	case s.Loading:
		return Pending
	case s.Result != nil:
		return Settled
	default:
		return Idle
	}
}

// Listener receives snapshots. It runs synchronously on the goroutine that
// caused the change and must not call Start, Clear or Subscribe.
type Listener func(Snapshot)

type subscriber struct {
	id int
	fn Listener
}

type Session struct {
	submitter Submitter
	ctx       context.Context

	// deliver serializes a mutation together with its notification so every
	// subscriber sees changes in the order they were made.
	deliver sync.Mutex

	mu      sync.Mutex
	file    *model.File
	result  model.Result
	loading bool
	seq     uint64
	nextID  int
	subs    []subscriber

	inflight sync.WaitGroup
}

// New creates an idle session. ctx is handed to every submission; it is not
// used to cancel superseded ones.
func New(ctx context.Context, submitter Submitter) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{submitter: submitter, ctx: ctx}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{Result: s.result, Loading: s.loading}
	if s.file != nil {
		f := *s.file
		snap.File = &f
	}
	return snap
}

// Start records file, clears the previous result and begins a submission.
// It returns once subscribers have seen the Pending snapshot; the result is
// delivered through a later notification.
func (s *Session) Start(file model.File) {
	s.deliver.Lock()
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.file = &file
	s.result = nil
	s.loading = true
	snap, subs := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()
	s.notify(snap, subs)
	s.deliver.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		result := s.submitter.Submit(s.ctx, file)
		s.settle(token, result)
	}()
}

// settle applies result if token still identifies the latest Start.
func (s *Session) settle(token uint64, result model.Result) {
	if result == nil {
		result = model.InternalErrorResult{Description: "analysis produced no result"}
	}

	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		return
	}
	s.result = result
	s.loading = false
	snap, subs := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(snap, subs)
}

// Clear resets the session to Idle. A submission still in flight will be
// ignored when it settles.
func (s *Session) Clear() {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.seq++
	s.file = nil
	s.result = nil
	s.loading = false
	snap, subs := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(snap, subs)
}

// Subscribe registers fn and immediately calls it with the current
// snapshot. The returned function removes the registration; fn is not
// notified of any change made after it returns. It is safe to call from
// within fn.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.deliver.Lock()
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	snap := s.snapshotLocked()
	s.mu.Unlock()
	fn(snap)
	s.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Session) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Session) listenersLocked() []subscriber {
	return append([]subscriber(nil), s.subs...)
}

func (s *Session) subscribed(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// notify calls every listener in registration order, skipping any removed
// by an earlier listener of the same round.
func (s *Session) notify(snap Snapshot, subs []subscriber) {
	for _, sub := range subs {
		if !s.subscribed(sub.id) {
			continue
		}
		sub.fn(snap)
	}
}

// AwaitSettled blocks until the session reaches Settled or ctx is done.
// It returns at once when the session is already settled.
func (s *Session) AwaitSettled(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		if snap.State() != Settled {
			return
		}
		select {
		case ch <- snap:
		default:
		}
	})
	defer unsubscribe()

	select {
	case snap := <-ch:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Wait blocks until every submission started so far has returned,
// including superseded ones.
func (s *Session) Wait() {
	s.inflight.Wait()
}
