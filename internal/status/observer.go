package status

import (
	"sync"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

// ChanObserver forwards stages to a channel until closed.
type ChanObserver struct {
	ch   chan models.Stage
	done chan struct{}
	once sync.Once
}

// NewChanObserver returns an observer whose channel holds up to buffer stages.
func NewChanObserver(buffer int) *ChanObserver {
	return &ChanObserver{
		ch:   make(chan models.Stage, buffer),
		done: make(chan struct{}),
	}
}

// Notify blocks until stage is queued or the observer is closed.
func (o *ChanObserver) Notify(_ string, stage models.Stage) error {
	select {
	case <-o.done:
		return ErrObserverClosed
	default:
	}
	select {
	case o.ch <- stage:
		return nil
	case <-o.done:
		return ErrObserverClosed
	}
}

// C is the stream of delivered stages.
func (o *ChanObserver) C() <-chan models.Stage { return o.ch }

// Close makes further Notify calls fail, which unsubscribes the observer.
func (o *ChanObserver) Close() {
	o.once.Do(func() { close(o.done) })
}
