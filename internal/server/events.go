package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hlop3z/erdpad/internal/alerr"
)

// hub fans documents out to event-stream clients. Each client holds at most
// one pending document; a slow client skips straight to the latest one.
type hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan string]struct{})}
}

// subscribe registers a client and returns its channel and a cancel func.
func (h *hub) subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

// broadcast never blocks.
func (h *hub) broadcast(doc string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- doc:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- doc:
			default:
			}
		}
	}
}

// count returns the number of connected clients.
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writeEvent writes one server-sent event. Multi-line data is split into one
// data field per line.
func writeEvent(w http.ResponseWriter, event, data string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := w.Write([]byte(b.String()))
	return err
}

// handleEvents streams "document" events: the current diagram on connect,
// then the new diagram after every change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	ch, cancel := s.events.subscribe()
	defer cancel()

	s.mu.Lock()
	doc, err := s.designer.Document()
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(doc string) bool {
		if err := writeEvent(w, "document", doc); err != nil {
			return false
		}
		if err := rc.Flush(); err != nil {
			s.logger.Warn("event stream cannot flush", "error", alerr.Wrap(alerr.ErrServe, err, "flush failed"))
			return false
		}
		return true
	}

	if !send(doc) {
		return
	}
	for {
		select {
		case doc := <-ch:
			if !send(doc) {
				return
			}
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		}
	}
}
