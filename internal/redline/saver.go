package redline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/redline/internal/core/review"
)

const saverBuffer = 64

// Saver persists review sessions off the hot path. Sessions are queued
// on a buffered channel consumed by a background goroutine; the store is
// last-write-wins per document, so replaying queued records in order is
// safe. When Start has not been called, Save degrades to a synchronous
// best-effort write. Persistence failures are logged, never propagated:
// the in-memory session stays authoritative.
type Saver struct {
	store review.Store
	log   zerolog.Logger

	mu      sync.Mutex
	running bool
	ch      chan review.Session
	done    chan struct{}
}

// NewSaver creates a saver over the given session store.
func NewSaver(store review.Store, log zerolog.Logger) *Saver {
	return &Saver{
		store: store,
		log:   log,
		ch:    make(chan review.Session, saverBuffer),
	}
}

// Start launches the background writer. The returned stop function
// flushes queued records and blocks until the writer exits. Calling
// Start twice returns a no-op stop for the second call.
func (s *Saver) Start(ctx context.Context) (stop func()) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return func() {}
	}
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx)

	return func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.running = false
		close(s.ch)
		s.mu.Unlock()

		<-s.done
	}
}

// Save queues the session for persistence. When the buffer is full the
// oldest queued record is dropped; a newer record for the same document
// supersedes it anyway.
func (s *Saver) Save(ctx context.Context, sess review.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.write(ctx, sess)
		return
	}

	select {
	case s.ch <- sess:
		return
	default:
	}

	select {
	case dropped := <-s.ch:
		s.log.Debug().Str("document_id", dropped.DocumentID).Msg("saver buffer full, dropped queued save")
	default:
	}

	select {
	case s.ch <- sess:
	default:
	}
}

// Delete removes the persisted record synchronously. Best-effort: a
// store failure is logged and swallowed.
func (s *Saver) Delete(ctx context.Context, documentID string) {
	if err := s.store.Delete(ctx, documentID); err != nil {
		s.log.Warn().Err(err).Str("document_id", documentID).Msg("failed to delete persisted session")
	}
}

func (s *Saver) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case sess, ok := <-s.ch:
			if !ok {
				return
			}
			s.write(ctx, sess)
		}
	}
}

// flush drains whatever is buffered after the context is gone.
func (s *Saver) flush() {
	for {
		select {
		case sess, ok := <-s.ch:
			if !ok {
				return
			}
			s.write(context.Background(), sess)
		default:
			return
		}
	}
}

func (s *Saver) write(ctx context.Context, sess review.Session) {
	if err := s.store.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).
			Str("document_id", sess.DocumentID).
			Str("session_id", sess.ID).
			Msg("failed to persist session")
	}
}
