package cmd

import (
	"fmt"

	"results-ingest/core/config"
	"results-ingest/core/database"
	"results-ingest/core/logger"
	"results-ingest/core/metrics"
	"results-ingest/core/storage"
	"results-ingest/feature/ingest"
	"results-ingest/feature/ingest/notify"
	"results-ingest/feature/ingest/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services is everything a command needs to ingest feeds.
type services struct {
	db      *gorm.DB
	repo    *repository.GormRepository
	hub     *notify.Hub
	metrics *metrics.Metrics
	ingest  *ingest.Service
}

// buildServices connects the database and assembles the ingestion service.
// Snapshot publishing is only wired when enabled in the configuration.
func buildServices(cfg *config.Config, l *zap.Logger, m *metrics.Metrics) (*services, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slots := cfg.Database.MaxOpenConns
	if cfg.Database.Driver == database.DriverSQLite {
		slots = 1
	}
	repo := repository.New(db, slots)

	hub := notify.NewHub(notify.DefaultBuffer)
	publishers := []notify.Publisher{hub, notify.NewWinnerTracker(repo, hub)}

	if cfg.Ingest.SnapshotsEnabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		publishers = append(publishers, notify.NewSnapshotPublisher(client, repo, cfg.Storage, cfg.Ingest.SnapshotPrefix))
		l.Info("Standings snapshots enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	fanout := notify.NewFanout(logger.Component(l, "notify"), publishers...)
	svc := ingest.NewService(repo, fanout, m, l, ingest.OptionsFromConfig(cfg.Ingest))

	return &services{db: db, repo: repo, hub: hub, metrics: m, ingest: svc}, nil
}
