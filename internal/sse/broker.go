// Package sse streams calendar changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Change kinds accepted by PublishEventChange.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// Stream event types besides event.<kind>.
const (
	TypeRemindersUpdated = "reminders.updated"
	TypeReminderDue      = "reminder.due"
)

const (
	clientBuffer = 64
	historySize  = 128
	heartbeat    = 25 * time.Second
)

// Event is one message on the stream.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type frame struct {
	seq uint64
	raw []byte
}

// hub is the state owned by the broker loop.
type hub struct {
	clients       map[chan []byte]struct{}
	seq           uint64
	history       []frame
	lastReminders time.Time
}

// Broker fans stream frames out to subscribers. Every frame carries a
// sequence id; the last historySize frames are kept so a reconnecting
// client sending Last-Event-ID gets what it missed.
//
// A single goroutine owns the hub. Callers hand it closures over ops.
type Broker struct {
	remindersMin time.Duration

	ops     chan func(*hub)
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. reminderThrottle is the minimum gap between two
// reminders.updated events.
func NewBroker(reminderThrottle time.Duration) *Broker {
	if reminderThrottle <= 0 {
		reminderThrottle = 2 * time.Second
	}
	b := &Broker{
		remindersMin: reminderThrottle,
		ops:          make(chan func(*hub), 256),
		stopCh:       make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stopCh:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
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
		return false
	}
}

func (h *hub) broadcast(ev Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	h.seq++
	f := frame{seq: h.seq, raw: fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", h.seq, ev.Type, payload)}
	h.history = append(h.history, f)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}
	for ch := range h.clients {
		select {
		case ch <- f.raw:
		default:
			// slow client, drop
		}
	}
}

// Close stops the loop and closes every subscriber channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client that receives frames published from now on.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeAfter(0)
}

// SubscribeAfter adds a client and queues the retained frames with a
// sequence id above lastID. Zero replays nothing.
func (b *Broker) SubscribeAfter(lastID uint64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	ok := b.call(func(h *hub) {
		h.clients[ch] = struct{}{}
		if lastID == 0 {
			return
		}
		for _, f := range h.history {
			if f.seq <= lastID {
				continue
			}
			select {
			case ch <- f.raw:
			default:
				return
			}
		}
	})
	if !ok {
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
func (b *Broker) Publish(ev Event) {
	b.do(func(h *hub) { h.broadcast(ev) })
}

// PublishEventChange publishes event.<kind> for the event id, followed by a
// reminders.updated at most once per throttle window. Unknown kinds are
// ignored.
func (b *Broker) PublishEventChange(kind, id string) {
	switch kind {
	case KindCreated, KindUpdated, KindDeleted:
	default:
		return
	}
	b.do(func(h *hub) {
		h.broadcast(Event{Type: "event." + kind, Data: map[string]string{"id": id}})
		if now := time.Now(); now.Sub(h.lastReminders) >= b.remindersMin {
			h.lastReminders = now
			h.broadcast(Event{Type: TypeRemindersUpdated, Data: map[string]string{}})
		}
	})
}

// ServeHTTP is the stream endpoint (GET /api/stream). A Last-Event-ID
// header replays retained frames; idle streams get a comment heartbeat.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	ch := b.SubscribeAfter(lastID)
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(heartbeat)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
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
