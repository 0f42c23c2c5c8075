package mapviewer

import (
	"errors"
	"sync"
)

// ErrDocumentUnavailable is reported when the embedded graphic has no
// accessible document (cross-origin or not yet parsed)
var ErrDocumentUnavailable = errors.New("mapviewer: embedded document unavailable")

// Load is a one-shot future for the embedded graphic's document. It settles
// once, through Resolve or Fail, and every callback registered with Then runs
// exactly once with the settled value.
type Load struct {
	mu        sync.Mutex
	settled   bool
	doc       Document
	err       error
	callbacks []func(Document, error)
}

// NewLoad creates an unsettled load future
func NewLoad() *Load {
	return &Load{}
}

// Resolve settles the future with a loaded document. A nil document settles
// it with ErrDocumentUnavailable. Returns false if already settled.
func (l *Load) Resolve(doc Document) bool {
	if doc == nil {
		return l.settle(nil, ErrDocumentUnavailable)
	}
	return l.settle(doc, nil)
}

// Fail settles the future with an error. Returns false if already settled.
func (l *Load) Fail(err error) bool {
	if err == nil {
		err = ErrDocumentUnavailable
	}
	return l.settle(nil, err)
}

func (l *Load) settle(doc Document, err error) bool {
	l.mu.Lock()
	if l.settled {
		l.mu.Unlock()
		return false
	}
	l.settled = true
	l.doc = doc
	l.err = err
	callbacks := l.callbacks
	l.callbacks = nil
	l.mu.Unlock()

	// Run callbacks outside the lock so they may register more
	for _, fn := range callbacks {
		fn(doc, err)
	}
	return true
}

// Then registers fn to run once the future settles. If it already has, fn
// runs immediately.
func (l *Load) Then(fn func(Document, error)) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if !l.settled {
		l.callbacks = append(l.callbacks, fn)
		l.mu.Unlock()
		return
	}
	doc, err := l.doc, l.err
	l.mu.Unlock()
	fn(doc, err)
}

// Settled reports whether Resolve or Fail has been called
func (l *Load) Settled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settled
}
