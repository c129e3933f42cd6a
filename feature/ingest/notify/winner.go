package notify

import (
	"context"
	"fmt"
	"sync"

	"results-ingest/feature/ingest/models"
)

// ClassLister reads the classes of an event and their competitors.
type ClassLister interface {
	ListClasses(ctx context.Context, eventID uint) ([]models.Class, error)
	ListCompetitorsByClass(ctx context.Context, classID uint) ([]models.Competitor, error)
}

// WinnerTracker remembers the leader of every class and announces a
// winner_changed message on the hub whenever it moves.
type WinnerTracker struct {
	store   ClassLister
	hub     *Hub
	mu      sync.Mutex
	leaders map[uint]uint
}

// NewWinnerTracker creates a WinnerTracker publishing to hub.
func NewWinnerTracker(store ClassLister, hub *Hub) *WinnerTracker {
	return &WinnerTracker{store: store, hub: hub, leaders: make(map[uint]uint)}
}

// NotifyWinnerChanges recomputes the leader of each class of the event.
func (w *WinnerTracker) NotifyWinnerChanges(ctx context.Context, eventID uint) error {
	classes, err := w.store.ListClasses(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list classes: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, class := range classes {
		competitors, err := w.store.ListCompetitorsByClass(ctx, class.ID)
		if err != nil {
			return fmt.Errorf("failed to list competitors of class %d: %w", class.ID, err)
		}

		current, _ := leader(competitors)
		if w.leaders[class.ID] == current {
			continue
		}
		if current == 0 {
			delete(w.leaders, class.ID)
		} else {
			w.leaders[class.ID] = current
		}

		msg := Message{Type: MessageWinnerChanged, EventID: eventID, ClassID: class.ID, CompetitorID: current}
		for i := range competitors {
			if competitors[i].ID == current {
				msg.Competitor = &competitors[i]
				break
			}
		}
		w.hub.Publish(msg)
	}
	return nil
}

// Leader returns the last known leader of a class.
func (w *WinnerTracker) Leader(classID uint) (uint, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.leaders[classID]
	return id, ok
}

func (w *WinnerTracker) PublishCompetitorUpdated(context.Context, uint, *models.Competitor) error {
	return nil
}

func (w *WinnerTracker) PublishCompetitorsUpdated(context.Context, uint) error {
	return nil
}
