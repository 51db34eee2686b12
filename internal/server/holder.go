package server

import (
	"sync"
	"time"

	"github.com/metroboard/metro/internal/config"
	"github.com/metroboard/metro/internal/plugin"
)

// Frame is one published view of the board. Frames are never modified
// after Publish.
type Frame struct {
	Version  uint64          `json:"version"`
	At       time.Time       `json:"at"`
	Snapshot plugin.Snapshot `json:"snapshot"`
	Config   config.Masked   `json:"-"`
	PNG      []byte          `json:"-"`
}

// Holder hands the latest frame from the scheduler goroutine to readers
type Holder struct {
	mu      sync.RWMutex
	latest  *Frame
	version uint64
	subs    map[chan struct{}]struct{}
}

// NewHolder creates an empty holder
func NewHolder() *Holder {
	return &Holder{subs: make(map[chan struct{}]struct{})}
}

// Publish stores a new frame and wakes subscribers
func (h *Holder) Publish(snap plugin.Snapshot, cfg config.Masked, png []byte, at time.Time) {
	h.mu.Lock()
	h.version++
	h.latest = &Frame{
		Version:  h.version,
		At:       at,
		Snapshot: snap,
		Config:   cfg,
		PNG:      append([]byte(nil), png...),
	}
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// Latest returns the newest frame, if any
func (h *Holder) Latest() (*Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.latest != nil
}

// Subscribe returns a channel signalled after each Publish. Signals
// coalesce; readers call Latest to get the frame.
func (h *Holder) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions
func (h *Holder) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
