package server

import (
	"sync"

	"github.com/dvcrn/weasel/internal/events"
	"github.com/dvcrn/weasel/internal/openpaths"
)

// hub fans point updates out to stream connections. A slow subscriber only
// ever holds the newest point.
type hub struct {
	mu     sync.Mutex
	subs   map[chan openpaths.Point]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[chan openpaths.Point]struct{})}
}

// add registers a subscriber. The channel is closed when the hub closes.
func (h *hub) add() chan openpaths.Point {
	ch := make(chan openpaths.Point, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

func (h *hub) remove(ch chan openpaths.Point) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *hub) broadcast(e events.PointUpdated) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- e.Point
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
