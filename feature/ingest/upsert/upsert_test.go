package upsert_test

import (
	"context"
	"sync"
	"testing"

	"results-ingest/core/database"
	"results-ingest/feature/ingest/identity"
	"results-ingest/feature/ingest/models"
	"results-ingest/feature/ingest/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, *repository.GormRepository) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db, repository.New(db, 1)
}

func newResolver() *identity.Resolver {
	return identity.NewResolver(identity.DefaultTypes, zap.NewNop())
}

type recordingPublisher struct {
	mu      sync.Mutex
	updated []models.Competitor
}

func (p *recordingPublisher) PublishCompetitorUpdated(ctx context.Context, eventID uint, c *models.Competitor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, *c)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updated)
}

func ptr[T any](v T) *T { return &v }
