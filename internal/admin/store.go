package admin

import (
	"sync"
	"time"

	"github.com/bmharper/quadtree-go"
)

// Snapshot is the published state of a simulation run.
type Snapshot struct {
	RunID         string         `json:"run_id"`
	Frame         int            `json:"frame"`
	Sprites       int            `json:"sprites"`
	Collisions    int            `json:"collisions"`
	FrameDuration time.Duration  `json:"frame_duration"`
	FPS           float64        `json:"fps"`
	UseQuadTree   bool           `json:"use_quadtree"`
	Tree          quadtree.Stats `json:"tree"`
	Time          time.Time      `json:"time"`
}

// Store holds the latest snapshot and rendered frame. The simulation writes
// to it, HTTP handlers read from it. The zero value is ready to use.
type Store struct {
	mu          sync.RWMutex
	snapshot    Snapshot
	hasSnapshot bool
	image       []byte
	subscribers map[chan Snapshot]struct{}
	closed      bool
}

func (s *Store) SetSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	s.hasSnapshot = true

	for ch := range s.subscribers {
		publish(ch, snap)
	}
}

func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.hasSnapshot
}

// SetImage stores an encoded PNG.
func (s *Store) SetImage(png []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = png
}

func (s *Store) Image() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.image, s.image != nil
}

// Subscribe returns a channel that receives every new snapshot, starting with
// the current one if any. Slow subscribers only get the latest snapshot. The
// returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	if s.subscribers == nil {
		s.subscribers = make(map[chan Snapshot]struct{})
	}
	s.subscribers[ch] = struct{}{}

	if s.hasSnapshot {
		ch <- s.snapshot
	}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}

func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Close closes every subscription. Later subscriptions are closed right away.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.closed = true
}

// publish must be called with the store lock held, which makes it the only
// sender on ch.
func publish(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
