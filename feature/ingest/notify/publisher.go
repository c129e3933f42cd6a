package notify

import (
	"context"
	"fmt"

	"results-ingest/feature/ingest/models"

	"go.uber.org/zap"
)

// Publisher receives change notifications from ingestion.
type Publisher interface {
	PublishCompetitorUpdated(ctx context.Context, eventID uint, competitor *models.Competitor) error
	PublishCompetitorsUpdated(ctx context.Context, classID uint) error
	NotifyWinnerChanges(ctx context.Context, eventID uint) error
}

// Fanout forwards every notification to all of its publishers. Errors are
// logged and swallowed.
type Fanout struct {
	publishers []Publisher
	logger     *zap.Logger
}

// NewFanout combines publishers. Nil publishers are skipped.
func NewFanout(logger *zap.Logger, publishers ...Publisher) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fanout{logger: logger.Named("notify")}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

func (f *Fanout) PublishCompetitorUpdated(ctx context.Context, eventID uint, competitor *models.Competitor) error {
	for _, p := range f.publishers {
		f.check(p, "competitor updated", p.PublishCompetitorUpdated(ctx, eventID, competitor))
	}
	return nil
}

func (f *Fanout) PublishCompetitorsUpdated(ctx context.Context, classID uint) error {
	for _, p := range f.publishers {
		f.check(p, "competitors updated", p.PublishCompetitorsUpdated(ctx, classID))
	}
	return nil
}

func (f *Fanout) NotifyWinnerChanges(ctx context.Context, eventID uint) error {
	for _, p := range f.publishers {
		f.check(p, "winner changes", p.NotifyWinnerChanges(ctx, eventID))
	}
	return nil
}

func (f *Fanout) check(p Publisher, what string, err error) {
	if err == nil {
		return
	}
	f.logger.Warn("Notification failed",
		zap.String("notification", what),
		zap.String("publisher", fmt.Sprintf("%T", p)),
		zap.Error(err),
	)
}
