// Package sse implements a Server-Sent Events broker that tells browsers
// when the catalogue artifact was rebuilt.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventRebuilt = "catalog.rebuilt"
	EventReload  = "catalog.reload"
)

const (
	clientBuffer   = 64
	retryMillis    = 3000
	heartbeatEvery = 30 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Rebuild summarises one artifact rebuild.
type Rebuild struct {
	Included   int    `json:"included"`
	Skipped    int    `json:"skipped"`
	Collisions int    `json:"collisions"`
	Digest     string `json:"digest"`
}

// hub is the state owned by the broker loop.
type hub struct {
	clients    map[chan []byte]struct{}
	seq        uint64
	lastReload time.Time
	last       []byte // most recent rebuilt frame, replayed to new streams
}

// Broker fans events out to SSE clients.
//
// All state lives in hub and is touched only by the loop goroutine; public
// methods submit closures over ops.
type Broker struct {
	reloadMin time.Duration
	ops       chan func(*hub)
	stopped   chan struct{}
	closing   chan struct{}
	closed    atomic.Bool
}

// NewBroker creates a broker that sends at most one reload hint per
// reloadThrottle.
func NewBroker(reloadThrottle time.Duration) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = 2 * time.Second
	}
	b := &Broker{
		reloadMin: reloadThrottle,
		ops:       make(chan func(*hub), 256),
		stopped:   make(chan struct{}),
		closing:   make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case op := <-b.ops:
			op(h)
		case <-b.closing:
			for ch := range h.clients {
				close(ch)
			}
			h.clients = nil
			return
		}
	}
}

// do runs op on the loop. It reports false once the broker is closed.
func (b *Broker) do(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stopped:
		return false
	}
}

// call runs op on the loop and waits for it to finish.
func (b *Broker) call(op func(*hub)) bool {
	done := make(chan struct{})
	if !b.do(func(h *hub) { op(h); close(done) }) {
		return false
	}
	select {
	case <-done:
		return true
	case <-b.stopped:
		// The loop may have run op right before stopping.
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// frame encodes one event in wire format, numbering it with the next id.
func (h *hub) frame(event Event) []byte {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil
	}
	h.seq++
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, event.Type, payload))
}

// send delivers raw to every client, dropping it for clients whose buffer
// is full.
func (h *hub) send(raw []byte) {
	if raw == nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.closing)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The channel is
// closed when the client unsubscribes or the broker closes.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.call(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.call(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := 0
	b.call(func(h *hub) { n = len(h.clients) })
	return n
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(h *hub) { h.send(h.frame(event)) })
}

// PublishRebuild announces a rebuilt artifact. A reload hint follows unless
// one went out within the throttle window.
func (b *Broker) PublishRebuild(info Rebuild) {
	b.do(func(h *hub) {
		raw := h.frame(Event{Type: EventRebuilt, Data: info})
		h.last = raw
		h.send(raw)

		now := time.Now()
		if now.Sub(h.lastReload) < b.reloadMin {
			return
		}
		h.lastReload = now
		h.send(h.frame(Event{Type: EventReload, Data: map[string]string{"digest": info.Digest}}))
	})
}

// latest returns the most recent rebuilt frame, if any.
func (b *Broker) latest() []byte {
	var raw []byte
	b.call(func(h *hub) { raw = h.last })
	return raw
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A new stream
// starts with the retry hint and the latest rebuild, then receives events
// as they are published, with a comment line as heartbeat.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	if raw := b.latest(); raw != nil {
		_, _ = w.Write(raw)
	}
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
