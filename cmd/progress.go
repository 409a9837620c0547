package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/helmcode/codelinter/pkg/session"
)

// progress shows a spinner while the session is loading. It is meant to
// be registered with Session.Subscribe.
type progress struct {
	mu sync.Mutex
	s  *spinner.Spinner
}

func newProgress(w io.Writer) *progress {
	return &progress{
		s: spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

func (p *progress) update(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if snap.State() == session.Pending {
		p.s.Suffix = fmt.Sprintf(" Analyzing %s...", snap.File.Name)
		p.s.Start()
		return
	}
	p.s.Stop()
}

func (p *progress) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.s.Stop()
}
