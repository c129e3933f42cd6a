package upsert

import (
	"context"
	"fmt"
	"math"
	"strings"

	"results-ingest/core/database"
	"results-ingest/core/metrics"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/identity"
	"results-ingest/feature/ingest/models"

	"go.uber.org/zap"
)

// CompetitorStore is the persistence a CompetitorUpserter needs.
type CompetitorStore interface {
	FindCompetitor(ctx context.Context, eventID uint, systemKey string) (*models.Competitor, error)
	CreateCompetitor(ctx context.Context, competitor *models.Competitor) error
	UpdateCompetitor(ctx context.Context, id uint, updates map[string]any) error
	CreateProtocol(ctx context.Context, entry *models.Protocol) error
}

// UpdatePublisher is told about every competitor that changed.
type UpdatePublisher interface {
	PublishCompetitorUpdated(ctx context.Context, eventID uint, competitor *models.Competitor) error
}

// CompetitorInput is one competitor entry of a feed.
type CompetitorInput struct {
	EventID      uint
	ClassID      uint
	Person       extract.PersonRecord
	Organisation *extract.OrganisationRecord
	Start        *extract.StartRecord
	Result       *extract.ResultRecord
	TeamID       *uint
	Leg          *int
	Author       string
}

// CompetitorOutcome reports what an upsert did.
type CompetitorOutcome struct {
	ID uint
	// Updated is true when the competitor was created or any tracked field changed.
	Updated bool
	Created bool
	// GeneratedKey is set when the person had no identifier and the
	// competitor is keyed by class and name only.
	GeneratedKey bool
}

// CompetitorUpserter creates or updates competitors and writes one audit
// entry per changed field.
type CompetitorUpserter struct {
	store     CompetitorStore
	resolver  *identity.Resolver
	publisher UpdatePublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCompetitorUpserter creates a CompetitorUpserter. publisher and m may be nil.
func NewCompetitorUpserter(store CompetitorStore, resolver *identity.Resolver, publisher UpdatePublisher, m *metrics.Metrics, logger *zap.Logger) *CompetitorUpserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetitorUpserter{store: store, resolver: resolver, publisher: publisher, metrics: m, logger: logger}
}

// UpsertCompetitor merges in into the stored competitor with the same system
// key. Fields the feed leaves out keep their stored values.
func (u *CompetitorUpserter) UpsertCompetitor(ctx context.Context, in CompetitorInput) (CompetitorOutcome, error) {
	if strings.TrimSpace(in.Person.Family) == "" && strings.TrimSpace(in.Person.Given) == "" && len(in.Person.IDs) == 0 {
		return CompetitorOutcome{}, fmt.Errorf("%w: person has neither name nor identifier", ErrMalformed)
	}

	registration := u.resolver.ResolveKey(in.ClassID, in.Person, identity.KeyRegistration)
	systemKey := u.resolver.ResolveKey(in.ClassID, in.Person, identity.KeySystem)

	stored, err := u.store.FindCompetitor(ctx, in.EventID, systemKey)
	if err != nil && !database.IsNotFound(err) {
		return CompetitorOutcome{}, fmt.Errorf("failed to look up competitor %s: %w", systemKey, err)
	}

	incoming := candidate(in, registration, systemKey, stored)

	if stored == nil {
		outcome, err := u.create(ctx, in, incoming)
		if database.KindOf(err) != database.KindDuplicate {
			outcome.GeneratedKey = outcome.ID != 0 && identity.IsFallback(systemKey)
			return outcome, err
		}
		// Created concurrently by another entry or process; merge into it instead.
		stored, err = u.store.FindCompetitor(ctx, in.EventID, systemKey)
		if err != nil {
			return CompetitorOutcome{}, fmt.Errorf("failed to look up competitor %s: %w", systemKey, err)
		}
		incoming = candidate(in, registration, systemKey, stored)
	}

	out, err := u.update(ctx, in, stored, incoming)
	out.GeneratedKey = out.ID != 0 && identity.IsFallback(systemKey)
	return out, err
}

func (u *CompetitorUpserter) create(ctx context.Context, in CompetitorInput, c *models.Competitor) (CompetitorOutcome, error) {
	if err := u.store.CreateCompetitor(ctx, c); err != nil {
		return CompetitorOutcome{}, fmt.Errorf("failed to create competitor %s: %w", c.SystemKey, err)
	}

	name := c.FullName()
	u.audit(ctx, in, c.ID, models.ChangeCreate, nil, &name)

	return CompetitorOutcome{ID: c.ID, Updated: true, Created: true}, nil
}

func (u *CompetitorUpserter) update(ctx context.Context, in CompetitorInput, stored, incoming *models.Competitor) (CompetitorOutcome, error) {
	merged, changes := mergeCompetitor(stored, incoming)
	if len(changes) == 0 {
		return CompetitorOutcome{ID: stored.ID}, nil
	}

	if err := u.store.UpdateCompetitor(ctx, stored.ID, updatePayload(changes)); err != nil {
		return CompetitorOutcome{}, fmt.Errorf("failed to update competitor %d: %w", stored.ID, err)
	}

	// Only changes that reached the store are audited.
	for _, ch := range changes {
		u.audit(ctx, in, stored.ID, ch.field.change, ch.field.format(ch.previous), ch.field.format(ch.next))
	}

	if u.publisher != nil {
		if err := u.publisher.PublishCompetitorUpdated(ctx, in.EventID, &merged); err != nil {
			u.logger.Warn("Failed to publish competitor update", zap.Uint("competitor_id", stored.ID), zap.Error(err))
		}
	}

	return CompetitorOutcome{ID: stored.ID, Updated: true}, nil
}

func (u *CompetitorUpserter) audit(ctx context.Context, in CompetitorInput, competitorID uint, change models.ChangeType, previous, next *string) {
	entry := &models.Protocol{
		EventID:       in.EventID,
		CompetitorID:  competitorID,
		Origin:        models.OriginIngestion,
		Type:          string(change),
		PreviousValue: previous,
		NewValue:      next,
		Author:        in.Author,
	}
	if err := u.store.CreateProtocol(ctx, entry); err != nil {
		u.metrics.AuditFailed()
		u.logger.Error("Failed to write audit entry",
			zap.Uint("competitor_id", competitorID),
			zap.String("type", string(change)),
			zap.Error(err),
		)
		return
	}
	u.metrics.AuditWritten(string(change))
}

// candidate builds the competitor as described by the feed alone.
func candidate(in CompetitorInput, registration, systemKey string, stored *models.Competitor) *models.Competitor {
	c := &models.Competitor{
		EventID:      in.EventID,
		ClassID:      in.ClassID,
		TeamID:       in.TeamID,
		Leg:          in.Leg,
		FirstName:    strings.TrimSpace(in.Person.Given),
		LastName:     strings.TrimSpace(in.Person.Family),
		Nationality:  strings.TrimSpace(in.Person.Nationality),
		Registration: registration,
		SystemKey:    systemKey,
	}
	if in.Organisation != nil {
		c.Organisation = strings.TrimSpace(in.Organisation.Name)
		c.ShortName = strings.TrimSpace(in.Organisation.ShortName)
	}

	if s := in.Start; s != nil {
		c.StartTime = s.StartTime
		c.Card = s.Card
		c.BibNumber = nonEmpty(s.BibNumber)
	}
	if r := in.Result; r != nil {
		if r.StartTime != nil {
			c.StartTime = r.StartTime
		}
		if r.Card != nil {
			c.Card = r.Card
		}
		if bib := nonEmpty(r.BibNumber); bib != nil {
			c.BibNumber = bib
		}
		c.FinishTime = r.FinishTime
		if r.Time != nil {
			elapsed := int(math.Round(*r.Time))
			c.ElapsedTime = &elapsed
		}
	}

	c.Status = string(resultStatus(in.Result, stored))
	return c
}

// resultStatus honours a recognized explicit status. Otherwise a finish time
// means OK, then the stored status applies, then Inactive.
func resultStatus(result *extract.ResultRecord, stored *models.Competitor) models.ResultStatus {
	if result != nil && result.Status != "" {
		if s, ok := models.ParseStatus(result.Status); ok {
			return s
		}
	}
	switch {
	case result != nil && result.FinishTime != nil:
		return models.StatusOK
	case stored != nil && stored.Status != "":
		return models.ResultStatus(stored.Status)
	default:
		return models.StatusInactive
	}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
