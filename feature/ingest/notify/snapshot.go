package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"results-ingest/core/storage"
	"results-ingest/feature/ingest/models"

	"github.com/minio/minio-go/v7"
)

// CompetitorLister reads the competitors of a class.
type CompetitorLister interface {
	ListCompetitorsByClass(ctx context.Context, classID uint) ([]models.Competitor, error)
}

// Snapshot is the document written for one class.
type Snapshot struct {
	EventID     uint       `json:"event_id"`
	ClassID     uint       `json:"class_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Standings   []Standing `json:"standings"`
}

// SnapshotPublisher writes the standings of every changed class to object
// storage as <prefix>/<event>/<class>.json.
type SnapshotPublisher struct {
	client storage.Client
	store  CompetitorLister
	bucket string
	region string
	prefix string

	mu      sync.Mutex
	ensured bool
	nowFunc func() time.Time
}

// NewSnapshotPublisher creates a SnapshotPublisher writing into bucket.
func NewSnapshotPublisher(client storage.Client, store CompetitorLister, cfg storage.Config, prefix string) *SnapshotPublisher {
	return &SnapshotPublisher{
		client:  client,
		store:   store,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		prefix:  prefix,
		nowFunc: time.Now,
	}
}

// ObjectName returns the key of a class snapshot.
func (p *SnapshotPublisher) ObjectName(eventID, classID uint) string {
	return path.Join(p.prefix, strconv.FormatUint(uint64(eventID), 10), strconv.FormatUint(uint64(classID), 10)+".json")
}

func (p *SnapshotPublisher) PublishCompetitorsUpdated(ctx context.Context, classID uint) error {
	competitors, err := p.store.ListCompetitorsByClass(ctx, classID)
	if err != nil {
		return fmt.Errorf("failed to list competitors of class %d: %w", classID, err)
	}
	if len(competitors) == 0 {
		return nil
	}

	if err := p.ensureBucket(ctx); err != nil {
		return err
	}

	snap := Snapshot{
		EventID:     competitors[0].EventID,
		ClassID:     classID,
		GeneratedAt: p.nowFunc().UTC(),
		Standings:   Standings(competitors),
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := p.ObjectName(snap.EventID, classID)
	_, err = p.client.PutObject(ctx, p.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", name, err)
	}
	return nil
}

func (p *SnapshotPublisher) ensureBucket(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ensured {
		return nil
	}
	if err := storage.EnsureBucket(ctx, p.client, p.bucket, p.region); err != nil {
		return err
	}
	p.ensured = true
	return nil
}

func (p *SnapshotPublisher) PublishCompetitorUpdated(context.Context, uint, *models.Competitor) error {
	return nil
}

func (p *SnapshotPublisher) NotifyWinnerChanges(context.Context, uint) error {
	return nil
}
