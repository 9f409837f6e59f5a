// Package events fans out change notifications from the service to connected
// dashboard streams.
package events

import (
	"context"
	"log"
	"sync"
	"time"
)

// Event types
const (
	JobCreated          = "job.created"
	JobUpdated          = "job.updated"
	JobsReordered       = "jobs.reordered"
	CandidateCreated    = "candidate.created"
	CandidateUpdated    = "candidate.updated"
	NoteAdded           = "note.added"
	AssessmentSaved     = "assessment.saved"
	AssessmentSubmitted = "assessment.submitted"
)

// Event tells subscribers that a record changed so they can refetch.
type Event struct {
	Type string    `json:"type"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
}

// Subscriber receives events on C until it is unsubscribed.
type Subscriber struct {
	C    <-chan Event
	send chan Event
}

// Hub broadcasts events to every subscriber. Slow subscribers are dropped
// rather than blocking publishers.
type Hub struct {
	subscribers map[*Subscriber]bool
	broadcast   chan Event
	register    chan *Subscriber
	unregister  chan *Subscriber
	mutex       sync.RWMutex
	bufferSize  int

	// done is closed when Run returns.
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		broadcast:   make(chan Event, 1024),
		register:    make(chan *Subscriber, 128),
		unregister:  make(chan *Subscriber, 128),
		bufferSize:  64,
		done:        make(chan struct{}),
	}
}

// Run delivers events until ctx is cancelled, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for s := range h.subscribers {
				delete(h.subscribers, s)
				close(s.send)
			}
			h.mutex.Unlock()
			h.stopOnce.Do(func() { close(h.done) })
			// Subscribers queued but never registered still need their channel closed.
			for {
				select {
				case s := <-h.register:
					close(s.send)
				default:
					return
				}
			}

		case s := <-h.register:
			h.mutex.Lock()
			h.subscribers[s] = true
			total := len(h.subscribers)
			h.mutex.Unlock()
			log.Printf("[events] subscriber connected | total=%d", total)

		case s := <-h.unregister:
			h.remove(s)

		case evt := <-h.broadcast:
			h.mutex.RLock()
			snapshot := make([]*Subscriber, 0, len(h.subscribers))
			for s := range h.subscribers {
				snapshot = append(snapshot, s)
			}
			h.mutex.RUnlock()

			for _, s := range snapshot {
				select {
				case s.send <- evt:
				default:
					h.remove(s)
				}
			}
		}
	}
}

func (h *Hub) remove(s *Subscriber) {
	h.mutex.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
	total := len(h.subscribers)
	h.mutex.Unlock()
	log.Printf("[events] subscriber disconnected | total=%d", total)
}

// Subscribe registers a new subscriber. After Run has returned the
// subscriber's channel is already closed.
func (h *Hub) Subscribe() *Subscriber {
	ch := make(chan Event, h.bufferSize)
	s := &Subscriber{C: ch, send: ch}
	select {
	case h.register <- s:
	case <-h.done:
		close(ch)
	}
	return s
}

// Unsubscribe removes s; its channel is closed by the hub. It does not block
// once Run has returned.
func (h *Hub) Unsubscribe(s *Subscriber) {
	if h == nil || s == nil {
		return
	}
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish queues an event for delivery. It never blocks; when the queue is full
// the event is dropped.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	select {
	case h.broadcast <- evt:
	default:
		log.Printf("[events] broadcast dropped | reason=buffer_full type=%s", evt.Type)
	}
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers)
}
