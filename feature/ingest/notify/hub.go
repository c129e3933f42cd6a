package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"results-ingest/feature/ingest/models"
)

// Message types sent through a Hub.
const (
	MessageCompetitorUpdated  = "competitor_updated"
	MessageCompetitorsUpdated = "competitors_updated"
	MessageWinnerChanged      = "winner_changed"
)

// DefaultBuffer is the subscriber buffer used when none is given.
const DefaultBuffer = 64

// Message is one notification delivered to hub subscribers.
type Message struct {
	Type         string             `json:"type"`
	EventID      uint               `json:"event_id,omitempty"`
	ClassID      uint               `json:"class_id,omitempty"`
	CompetitorID uint               `json:"competitor_id,omitempty"`
	Competitor   *models.Competitor `json:"competitor,omitempty"`
}

// Hub is an in-process pub/sub. Publishing never blocks: a subscriber whose
// buffer is full misses the message.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Message
	next    uint64
	buffer  int
	dropped atomic.Int64
}

// NewHub creates a Hub whose subscribers buffer up to buffer messages.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[uint64]chan Message), buffer: buffer}
}

// Subscribe returns a message channel and a function that closes it.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Message, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers msg to every subscriber with room in its buffer.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped because of full buffers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) PublishCompetitorUpdated(ctx context.Context, eventID uint, competitor *models.Competitor) error {
	h.Publish(Message{
		Type:         MessageCompetitorUpdated,
		EventID:      eventID,
		ClassID:      competitor.ClassID,
		CompetitorID: competitor.ID,
		Competitor:   competitor,
	})
	return nil
}

func (h *Hub) PublishCompetitorsUpdated(ctx context.Context, classID uint) error {
	h.Publish(Message{Type: MessageCompetitorsUpdated, ClassID: classID})
	return nil
}

// NotifyWinnerChanges is handled by WinnerTracker.
func (h *Hub) NotifyWinnerChanges(ctx context.Context, eventID uint) error {
	return nil
}
