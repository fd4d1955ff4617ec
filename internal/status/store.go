// Package status holds the current processing stage of every document and
// pushes stage changes to observers.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

// ErrObserverClosed is returned by observers that no longer accept stages.
var ErrObserverClosed = errors.New("observer closed")

// Observer receives stage changes for one document id.
type Observer interface {
	Notify(id string, stage models.Stage) error
}

// Journal durably records every stage change, e.g. in Firestore.
type Journal interface {
	Record(ctx context.Context, id string, stage models.Stage) error
}

const journalTimeout = 10 * time.Second

// Store owns the stage of every document. Reads and writes are serialized by
// a single RWMutex; observer delivery happens on per-subscription goroutines
// so a slow observer never delays Update.
type Store struct {
	logger *slog.Logger

	mu      sync.RWMutex
	stages  map[string]models.Stage
	subs    map[string]*mailbox
	journal *mailbox
}

// Option configures a Store.
type Option func(*Store)

// WithJournal mirrors every update into j. Journal errors are logged.
func WithJournal(j Journal) Option {
	return func(s *Store) {
		s.journal = newMailbox(func(id string, stage models.Stage) error {
			ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
			defer cancel()
			return j.Record(ctx, id, stage)
		})
	}
}

// WithLogger sets the logger used for delivery and journal errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns an empty Store. The journal goroutine, if any, runs until Close.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		stages: make(map[string]models.Stage),
		subs:   make(map[string]*mailbox),
	}
	for _, o := range opts {
		o(s)
	}
	if s.journal != nil {
		go s.journal.run(func(id string, err error) bool {
			s.logger.Error("Failed to journal stage.", "documentId", id, "error", err)
			return true
		})
	}
	return s
}

// Get returns the current stage of id, or Unknown if it was never set.
func (s *Store) Get(id string) models.Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stage, ok := s.stages[id]; ok {
		return stage
	}
	return models.Unknown()
}

// Update overwrites the stage of id and queues a notification for its
// observer. It never blocks on delivery and never fails.
func (s *Store) Update(id string, stage models.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[id] = stage
	if box, ok := s.subs[id]; ok {
		box.push(id, stage)
	}
	if s.journal != nil {
		s.journal.push(id, stage)
	}
	s.logger.Debug("Stage updated.", "documentId", id, "stage", stage.String())
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	// Initial is the stage of the id when the subscription started. Every
	// later update is delivered to the observer.
	Initial models.Stage

	store *Store
	id    string
	box   *mailbox
}

// Active reports whether the observer is still registered. It turns false
// after a failed delivery, a newer Subscribe for the same id, or Cancel.
func (h *Subscription) Active() bool {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return h.store.subs[h.id] == h.box
}

// Cancel removes the observer unless it has already been replaced.
func (h *Subscription) Cancel() {
	h.store.remove(h.id, h.box)
}

// Subscribe registers obs as the only observer of id, replacing any previous one.
func (s *Store) Subscribe(id string, obs Observer) *Subscription {
	box := newMailbox(obs.Notify)

	s.mu.Lock()
	old := s.subs[id]
	s.subs[id] = box
	initial, ok := s.stages[id]
	s.mu.Unlock()
	if !ok {
		initial = models.Unknown()
	}

	if old != nil {
		old.stop()
	}
	go box.run(func(id string, err error) bool {
		s.logger.Warn("Dropping status observer after failed delivery.", "documentId", id, "error", err)
		s.remove(id, box)
		return false
	})
	return &Subscription{Initial: initial, store: s, id: id, box: box}
}

// Unsubscribe removes the observer of id, if any.
func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	box := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if box != nil {
		box.stop()
	}
}

// Subscribed reports whether id currently has an observer.
func (s *Store) Subscribed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subs[id]
	return ok
}

// Close stops every delivery goroutine.
func (s *Store) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]*mailbox)
	s.mu.Unlock()
	for _, box := range subs {
		box.stop()
	}
	if s.journal != nil {
		s.journal.stop()
	}
}

// remove deletes box only if it is still the registered observer for id.
func (s *Store) remove(id string, box *mailbox) {
	s.mu.Lock()
	if s.subs[id] == box {
		delete(s.subs, id)
	}
	s.mu.Unlock()
	box.stop()
}

type update struct {
	id    string
	stage models.Stage
}

// mailbox is an unbounded FIFO drained by one goroutine, so stages are
// delivered in update order.
type mailbox struct {
	deliver func(id string, stage models.Stage) error

	mu    sync.Mutex
	queue []update

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newMailbox(deliver func(string, models.Stage) error) *mailbox {
	return &mailbox{
		deliver: deliver,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (m *mailbox) push(id string, stage models.Stage) {
	m.mu.Lock()
	m.queue = append(m.queue, update{id: id, stage: stage})
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// run delivers queued updates until stopped. onErr decides whether delivery
// continues after a failure.
func (m *mailbox) run(onErr func(id string, err error) bool) {
	for {
		select {
		case <-m.done:
			return
		case <-m.wake:
		}
		for {
			u, ok := m.next()
			if !ok {
				break
			}
			if err := m.safeDeliver(u); err != nil && !onErr(u.id, err) {
				return
			}
			select {
			case <-m.done:
				return
			default:
			}
		}
	}
}

func (m *mailbox) next() (update, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return update{}, false
	}
	u := m.queue[0]
	m.queue = m.queue[1:]
	return u, true
}

func (m *mailbox) safeDeliver(u update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return m.deliver(u.id, u.stage)
}
