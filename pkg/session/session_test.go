package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/helmcode/codelinter/pkg/client"
	"github.com/helmcode/codelinter/pkg/model"
)

// gate is a Submitter whose calls block until the test releases them by
// file name.
type gate struct {
	mu      sync.Mutex
	results map[string]chan model.Result
	started chan string
}

func newGate() *gate {
	return &gate{results: make(map[string]chan model.Result), started: make(chan string, 16)}
}

func (g *gate) ch(name string) chan model.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.results[name]
	if !ok {
		c = make(chan model.Result, 1)
		g.results[name] = c
	}
	return c
}

func (g *gate) Submit(ctx context.Context, file model.File) model.Result {
	g.started <- file.Name
	return <-g.ch(file.Name)
}

func (g *gate) release(name string, r model.Result) {
	g.ch(name) <- r
}

func (g *gate) awaitStarted(t *testing.T, name string) {
	t.Helper()
	select {
	case got := <-g.started:
		if got != name {
			t.Fatalf("started %q, want %q", got, name)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("submission of %q never started", name)
	}
}

// recorder collects every snapshot delivered to it.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) listen(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func file(name string) model.File {
	return model.File{Name: name, Data: []byte("class " + name + " {}")}
}

func awaitSettled(t *testing.T, s *Session) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.AwaitSettled(ctx)
	if err != nil {
		t.Fatalf("session never settled: %v", err)
	}
	return snap
}

func assertIdle(t *testing.T, snap Snapshot) {
	t.Helper()
	if snap.File != nil || snap.Result != nil || snap.Loading {
		t.Errorf("expected idle snapshot, got %+v", snap)
	}
	if snap.State() != Idle {
		t.Errorf("State() = %s, want idle", snap.State())
	}
}

func TestStart_PendingIsVisibleImmediately(t *testing.T) {
	g := newGate()
	s := New(context.Background(), g)

	s.Start(file("A"))
	snap := s.Snapshot()
	if !snap.Loading || snap.Result != nil || snap.File == nil || snap.File.Name != "A" {
		t.Fatalf("expected pending snapshot for A, got %+v", snap)
	}

	g.awaitStarted(t, "A")
	g.release("A", model.InternalErrorResult{Description: "a"})
	settled := awaitSettled(t, s)
	if settled.Loading || settled.Result == nil {
		t.Fatalf("expected settled snapshot, got %+v", settled)
	}

	s.Start(file("B"))
	snap = s.Snapshot()
	if !snap.Loading || snap.Result != nil {
		t.Errorf("previous result should be cleared on Start, got %+v", snap)
	}
	if snap.File.Name != "B" {
		t.Errorf("file = %q, want B", snap.File.Name)
	}

	g.awaitStarted(t, "B")
	g.release("B", model.NetworkErrorResult{})
	s.Wait()
}

func TestStart_RecencyWins(t *testing.T) {
	t.Run("older settles last", func(t *testing.T) {
		g := newGate()
		s := New(context.Background(), g)

		s.Start(file("A"))
		g.awaitStarted(t, "A")
		s.Start(file("B"))
		g.awaitStarted(t, "B")

		g.release("B", model.FileClientErrorResult{Description: "from B"})
		awaitSettled(t, s)
		g.release("A", model.FileClientErrorResult{Description: "from A"})
		s.Wait()

		snap := s.Snapshot()
		if got := model.Description(snap.Result); got != "from B" {
			t.Errorf("result = %q, want B's outcome", got)
		}
		if snap.File.Name != "B" {
			t.Errorf("file = %q, want B", snap.File.Name)
		}
	})

	t.Run("older settles first", func(t *testing.T) {
		g := newGate()
		s := New(context.Background(), g)

		s.Start(file("A"))
		g.awaitStarted(t, "A")
		s.Start(file("B"))
		g.awaitStarted(t, "B")

		g.release("A", model.FileClientErrorResult{Description: "from A"})
		// Give the stale settlement a chance to land before checking.
		time.Sleep(20 * time.Millisecond)
		if snap := s.Snapshot(); !snap.Loading || snap.Result != nil {
			t.Fatalf("stale settlement leaked into session: %+v", snap)
		}

		g.release("B", model.FileClientErrorResult{Description: "from B"})
		snap := awaitSettled(t, s)
		s.Wait()
		if got := model.Description(snap.Result); got != "from B" {
			t.Errorf("result = %q, want B's outcome", got)
		}
	})
}

func TestClear_Idempotent(t *testing.T) {
	g := newGate()
	s := New(context.Background(), g)

	// From idle.
	s.Clear()
	s.Clear()
	assertIdle(t, s.Snapshot())

	// From settled.
	s.Start(file("A"))
	g.awaitStarted(t, "A")
	g.release("A", model.NetworkErrorResult{})
	awaitSettled(t, s)
	for i := 0; i < 3; i++ {
		s.Clear()
		assertIdle(t, s.Snapshot())
	}

	// From pending; the late settlement must not resurrect the session.
	s.Start(file("B"))
	g.awaitStarted(t, "B")
	s.Clear()
	s.Clear()
	assertIdle(t, s.Snapshot())
	g.release("B", model.InternalErrorResult{Description: "late"})
	s.Wait()
	assertIdle(t, s.Snapshot())
}

func TestSnapshots_OnlyReachableCombinations(t *testing.T) {
	g := newGate()
	s := New(context.Background(), g)
	rec := &recorder{}
	s.Subscribe(rec.listen)

	s.Start(file("A"))
	g.awaitStarted(t, "A")
	s.Start(file("B"))
	g.awaitStarted(t, "B")
	g.release("A", model.NetworkErrorResult{})
	g.release("B", model.InternalErrorResult{Description: "b"})
	awaitSettled(t, s)
	s.Clear()
	s.Start(file("C"))
	g.awaitStarted(t, "C")
	g.release("C", model.CompilationErrorResult{Description: "c"})
	awaitSettled(t, s)
	s.Wait()

	snaps := rec.all()
	if len(snaps) == 0 {
		t.Fatal("no snapshots recorded")
	}
	for i, snap := range snaps {
		hasFile, hasResult := snap.File != nil, snap.Result != nil
		switch {
		case !hasFile && !snap.Loading && !hasResult:
		case hasFile && snap.Loading && !hasResult:
		case hasFile && !snap.Loading && hasResult:
		default:
			t.Errorf("snapshot %d has unreachable combination file=%v loading=%v result=%v",
				i, hasFile, snap.Loading, hasResult)
		}
	}

	wantStates := []State{Idle, Pending, Pending, Settled, Idle, Pending, Settled}
	if len(snaps) != len(wantStates) {
		t.Fatalf("got %d snapshots, want %d", len(snaps), len(wantStates))
	}
	for i, want := range wantStates {
		if got := snaps[i].State(); got != want {
			t.Errorf("snapshot %d state = %s, want %s", i, got, want)
		}
	}
}

func TestSubscribe(t *testing.T) {
	g := newGate()
	s := New(context.Background(), g)

	var mu sync.Mutex
	var order []string
	listener := func(name string) Listener {
		return func(Snapshot) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	unsubFirst := s.Subscribe(listener("first"))
	s.Subscribe(listener("second"))

	mu.Lock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("each subscriber should receive the current snapshot on subscribe, got %v", order)
	}
	order = nil
	mu.Unlock()

	s.Clear()
	mu.Lock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("notifications should follow registration order, got %v", order)
	}
	order = nil
	mu.Unlock()

	unsubFirst()
	unsubFirst()
	s.Clear()
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 1 || order[0] != "second" {
		t.Errorf("unsubscribed listener was still called: %v", order)
	}
}

func TestSubscribe_UnsubscribeFromListener(t *testing.T) {
	s := New(context.Background(), newGate())
	calls := 0
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(Snapshot) {
		calls++
		if calls == 2 {
			unsubscribe()
		}
	})
	s.Clear()
	s.Clear()
	s.Clear()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestAwaitSettled_ContextDone(t *testing.T) {
	g := newGate()
	s := New(context.Background(), g)
	s.Start(file("A"))
	g.awaitStarted(t, "A")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.AwaitSettled(ctx); err != context.DeadlineExceeded {
		t.Errorf("err = %v, want deadline exceeded", err)
	}

	g.release("A", model.NetworkErrorResult{})
	s.Wait()
}

func TestSettle_NilResultBecomesInternalError(t *testing.T) {
	s := New(context.Background(), SubmitterFunc(func(context.Context, model.File) model.Result { return nil }))
	s.Start(file("A"))
	snap := awaitSettled(t, s)
	if _, ok := snap.Result.(model.InternalErrorResult); !ok {
		t.Errorf("expected InternalErrorResult, got %#v", snap.Result)
	}
}

func TestSession_WithHTTPClient(t *testing.T) {
	const body = `{"type":"SuccessfulResult","spoon":{"problems":[{"type":"InCodeTransferProblem","description":"Unused variable","category":"Style","explanation":"...","priority":"INFO","filePath":"Main.java","displayPath":"Main.java","line":10,"column":5}]},"pmd":{"problems":[]},"spotbugs":{"problems":[]},"cpd":{"problems":[]},"compilation":{"diagnostics":[]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	defer srv.Close()

	s := New(context.Background(), client.New(srv.URL))
	s.Start(model.File{Name: "Main.java", Data: []byte("public class Main { void f() { int x; } }")})
	snap := awaitSettled(t, s)

	if snap.Loading {
		t.Error("expected loading=false after settlement")
	}
	ok, isOK := snap.Result.(model.SuccessfulResult)
	if !isOK {
		t.Fatalf("expected SuccessfulResult, got %#v", snap.Result)
	}
	if snap.Result.Kind() != model.ResultSuccessful {
		t.Errorf("kind = %s", snap.Result.Kind())
	}
	if len(ok.Spoon.Problems) != 1 {
		t.Fatalf("expected exactly one spoon problem, got %d", len(ok.Spoon.Problems))
	}
	if ok.Spoon.Problems[0].Priority != model.PriorityInfo {
		t.Errorf("priority = %s, want INFO", ok.Spoon.Problems[0].Priority)
	}
	if ok.ProblemCount() != 1 {
		t.Errorf("expected no problems from other tools, got %d total", ok.ProblemCount())
	}
}
