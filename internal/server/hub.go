package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/groupcast/groupcast/internal/metrics"
)

// Stream is one live push connection tracked by the hub.
type Stream struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

// close signals the stream loop to exit and closes the socket. Safe to call
// from the read goroutine, the hub, and the handler defer concurrently.
func (st *Stream) close() {
	st.once.Do(func() {
		close(st.done)
		st.conn.Close()
	})
}

// Hub tracks live push connections so shutdown can close them in one place.
// It is created by the bootstrap component and handed to the server rather
// than accessed as a package-level singleton.
type Hub struct {
	mu      sync.Mutex
	streams map[*Stream]struct{}
	wg      sync.WaitGroup
	closed  bool
}

// NewHub creates an empty hub ready to track streams.
func NewHub() *Hub {
	return &Hub{streams: make(map[*Stream]struct{})}
}

// Add registers a newly upgraded connection. If the hub has already shut
// down the stream is returned pre-closed so the caller exits immediately.
func (h *Hub) Add(conn *websocket.Conn) *Stream {
	st := &Stream{conn: conn, done: make(chan struct{})}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		st.close()
		return st
	}
	h.streams[st] = struct{}{}
	h.wg.Add(1)
	n := len(h.streams)
	h.mu.Unlock()

	metrics.OpenStreams.Inc()
	slog.Debug("Stream registered", "open_streams", n)
	return st
}

// Remove unregisters a stream and closes it. Removing a stream that was
// never registered (hub already closed at Add time) is a no-op beyond the
// close itself.
func (h *Hub) Remove(st *Stream) {
	h.mu.Lock()
	_, registered := h.streams[st]
	if registered {
		delete(h.streams, st)
	}
	n := len(h.streams)
	h.mu.Unlock()

	st.close()
	if registered {
		h.wg.Done()
		metrics.OpenStreams.Dec()
		slog.Debug("Stream unregistered", "open_streams", n)
	}
}

// Shutdown closes every live stream and waits for their handlers to return,
// giving up after timeout. New streams added after Shutdown are closed on
// arrival.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.mu.Lock()
	h.closed = true
	streams := make([]*Stream, 0, len(h.streams))
	for st := range h.streams {
		streams = append(streams, st)
	}
	h.mu.Unlock()

	slog.Info("Closing open streams", "count", len(streams))
	for _, st := range streams {
		st.close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
