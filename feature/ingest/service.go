package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"results-ingest/core/config"
	"results-ingest/core/database"
	"results-ingest/core/metrics"
	"results-ingest/core/reconcile"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/identity"
	"results-ingest/feature/ingest/models"
	"results-ingest/feature/ingest/notify"
	"results-ingest/feature/ingest/repository"
	"results-ingest/feature/ingest/splits"
	"results-ingest/feature/ingest/upsert"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tunes a Service.
type Options struct {
	Concurrency int
	// Author is recorded on audit entries when the caller names none.
	Author string
	Retry  reconcile.RetryPolicy
	Tx     database.TxOptions
	Types  identity.Types
}

// OptionsFromConfig maps the ingest configuration section to Options.
func OptionsFromConfig(cfg config.IngestConfig) Options {
	return Options{
		Concurrency: cfg.Concurrency,
		Author:      cfg.Author,
		Retry: reconcile.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxJitter:   cfg.RetryJitter,
		},
		Tx: database.TxOptions{MaxWait: cfg.TxMaxWait, Timeout: cfg.TxTimeout},
		Types: identity.Types{
			Registration: cfg.RegistrationIDType,
			System:       cfg.SystemIDType,
			External:     cfg.ExternalIDType,
		},
	}
}

// Service applies feeds to the store.
type Service struct {
	repo        repository.Repository
	classes     *upsert.ClassUpserter
	teams       *upsert.TeamUpserter
	competitors *upsert.CompetitorUpserter
	splits      *splits.Controller
	publisher   notify.Publisher
	metrics     *metrics.Metrics
	opts        Options
	logger      *zap.Logger
}

// NewService creates a Service. publisher and m may be nil.
func NewService(repo repository.Repository, publisher notify.Publisher, m *metrics.Metrics, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = reconcile.DefaultConcurrency
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = reconcile.DefaultRetryPolicy
	}
	if opts.Author == "" {
		opts.Author = models.OriginIngestion
	}
	if publisher == nil {
		publisher = notify.NewFanout(logger)
	}

	logger = logger.Named("ingest")
	return &Service{
		repo:        repo,
		classes:     upsert.NewClassUpserter(repo, logger),
		teams:       upsert.NewTeamUpserter(repo),
		competitors: upsert.NewCompetitorUpserter(repo, identity.NewResolver(opts.Types, logger), publisher, m, logger),
		splits: splits.NewController(repo, logger,
			splits.WithRetryPolicy(opts.Retry),
			splits.WithTxOptions(opts.Tx),
			splits.WithMetrics(m),
		),
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		logger:    logger,
	}
}

// entryJob is one feed entry together with the class it was filed under.
type entryJob struct {
	index   int
	classID uint
	entry   extract.Entry
}

type splitJob struct {
	index        int
	classID      uint
	competitorID uint
	splits       []extract.SplitRecord
}

// Ingest reconciles feed into event eventID. Record level failures are
// listed in the report; only a failure to read the stored classes aborts.
func (s *Service) Ingest(ctx context.Context, eventID uint, feed *extract.Feed, author string) (*Report, error) {
	if feed == nil {
		return nil, fmt.Errorf("%w: empty feed", upsert.ErrMalformed)
	}
	if strings.TrimSpace(author) == "" {
		author = s.opts.Author
	}

	start := time.Now()
	defer func() { s.metrics.ObserveIngest(string(feed.Kind), time.Since(start)) }()

	report := &Report{UploadID: uuid.NewString(), Kind: feed.Kind, Failures: []Failure{}}
	l := s.logger.With(
		zap.String("upload_id", report.UploadID),
		zap.Uint("event_id", eventID),
		zap.String("kind", string(feed.Kind)),
	)

	classIDs, err := s.upsertClasses(ctx, eventID, feed.Sections, report)
	if err != nil {
		return nil, err
	}

	var jobs []entryJob
	for i, section := range feed.Sections {
		if classIDs[i] == 0 {
			continue
		}
		for _, e := range section.Entries {
			jobs = append(jobs, entryJob{index: len(jobs), classID: classIDs[i], entry: e})
		}
	}

	changed := make(map[uint]struct{})
	outcomes := s.upsertEntries(ctx, eventID, author, jobs, report, l)
	for i, out := range outcomes {
		if out.Updated {
			changed[jobs[i].classID] = struct{}{}
		}
	}

	if feed.Kind == extract.KindResults {
		var splitJobs []splitJob
		for i, job := range jobs {
			if outcomes[i].ID == 0 || job.entry.Result == nil {
				continue
			}
			splitJobs = append(splitJobs, splitJob{
				index:        job.index,
				classID:      job.classID,
				competitorID: outcomes[i].ID,
				splits:       job.entry.Result.Splits,
			})
		}
		for _, classID := range s.reconcileSplits(ctx, splitJobs, report) {
			changed[classID] = struct{}{}
		}
	}

	s.announce(ctx, eventID, feed.Kind, changed, l)

	l.Info("Feed ingested",
		zap.Int("classes", report.Classes),
		zap.Int("created", report.Competitors.Created),
		zap.Int("updated", report.Competitors.Updated),
		zap.Int("splits_changed", report.Splits.Changed),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("took", time.Since(start)),
	)
	return report, nil
}

// upsertClasses returns the class id of every section, zero where it failed.
func (s *Service) upsertClasses(ctx context.Context, eventID uint, sections []extract.ClassSection, report *Report) ([]uint, error) {
	stored, err := s.repo.ListClasses(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes of event %d: %w", eventID, err)
	}
	index := upsert.NewClassIndex(stored)

	ids := make([]uint, len(sections))
	created := make([]bool, len(sections))
	batch := reconcile.ForEach(ctx, sections, s.opts.Concurrency, func(ctx context.Context, i int, section extract.ClassSection) error {
		out, err := s.classes.UpsertClass(ctx, eventID, section.Class, index, upsert.CourseExtra(section.Course))
		if err != nil {
			return err
		}
		ids[i], created[i] = out.ID, out.Created
		return nil
	})

	for _, f := range batch.Failures {
		s.metrics.RecordProcessed(SectionClass, metrics.OutcomeFailed)
		report.fail(SectionClass, f.Index, sections[f.Index].Class.Name, f.Err)
	}
	for i, id := range ids {
		if id == 0 {
			continue
		}
		report.Classes++
		if created[i] {
			s.metrics.RecordProcessed(SectionClass, metrics.OutcomeCreated)
		} else {
			s.metrics.RecordProcessed(SectionClass, metrics.OutcomeUpdated)
		}
	}
	return ids, nil
}

func (s *Service) upsertEntries(ctx context.Context, eventID uint, author string, jobs []entryJob, report *Report, l *zap.Logger) []upsert.CompetitorOutcome {
	outcomes := make([]upsert.CompetitorOutcome, len(jobs))
	batch := reconcile.ForEach(ctx, jobs, s.opts.Concurrency, func(ctx context.Context, i int, job entryJob) error {
		out, err := s.upsertEntry(ctx, eventID, author, job)
		if err != nil {
			return err
		}
		outcomes[i] = out
		return nil
	})

	for _, f := range batch.Failures {
		job := jobs[f.Index]
		key := entryKey(job.entry)
		if errors.Is(f.Err, upsert.ErrMalformed) {
			l.Warn("Skipping malformed entry", zap.Int("index", job.index), zap.String("key", key), zap.Error(f.Err))
		} else {
			l.Error("Failed to upsert competitor", zap.Int("index", job.index), zap.String("key", key), zap.Error(f.Err))
		}
		s.metrics.RecordProcessed(SectionCompetitor, metrics.OutcomeFailed)
		report.fail(SectionCompetitor, job.index, key, f.Err)
	}

	for _, out := range outcomes {
		if out.GeneratedKey {
			report.Competitors.GeneratedKeys++
		}
		switch {
		case out.ID == 0:
		case out.Created:
			report.Competitors.Created++
			s.metrics.RecordProcessed(SectionCompetitor, metrics.OutcomeCreated)
		case out.Updated:
			report.Competitors.Updated++
			s.metrics.RecordProcessed(SectionCompetitor, metrics.OutcomeUpdated)
		default:
			report.Competitors.Unchanged++
			s.metrics.RecordProcessed(SectionCompetitor, metrics.OutcomeUnchanged)
		}
	}
	return outcomes
}

func (s *Service) upsertEntry(ctx context.Context, eventID uint, author string, job entryJob) (upsert.CompetitorOutcome, error) {
	e := job.entry
	if e.Person == nil {
		return upsert.CompetitorOutcome{}, fmt.Errorf("%w: entry has no person", upsert.ErrMalformed)
	}

	var teamID *uint
	if e.Team != nil {
		organisation := e.Team.Organisation
		if organisation == nil {
			organisation = e.Organisation
		}
		id, err := s.teams.UpsertTeam(ctx, eventID, job.classID, *e.Team, organisation)
		if err != nil {
			return upsert.CompetitorOutcome{}, err
		}
		teamID = &id
	}

	return s.competitors.UpsertCompetitor(ctx, upsert.CompetitorInput{
		EventID:      eventID,
		ClassID:      job.classID,
		Person:       *e.Person,
		Organisation: e.Organisation,
		Start:        e.Start,
		Result:       e.Result,
		TeamID:       teamID,
		Leg:          e.Leg,
		Author:       author,
	})
}

// reconcileSplits returns the classes whose splits changed.
func (s *Service) reconcileSplits(ctx context.Context, jobs []splitJob, report *Report) []uint {
	changed := make([]bool, len(jobs))
	batch := reconcile.ForEach(ctx, jobs, s.opts.Concurrency, func(ctx context.Context, i int, job splitJob) error {
		summary, err := s.splits.Reconcile(ctx, job.competitorID, job.splits)
		if err != nil {
			return err
		}
		changed[i] = summary.ChangeMade
		return nil
	})

	for _, f := range batch.Failures {
		job := jobs[f.Index]
		report.fail(SectionSplits, job.index, fmt.Sprintf("competitor %d", job.competitorID), f.Err)
	}

	var classes []uint
	for i, job := range jobs {
		if batch.Failed(i) {
			continue
		}
		if changed[i] {
			report.Splits.Changed++
			classes = append(classes, job.classID)
		} else {
			report.Splits.Unchanged++
		}
	}
	return classes
}

// announce publishes every changed class once, in id order.
func (s *Service) announce(ctx context.Context, eventID uint, kind extract.Kind, changed map[uint]struct{}, l *zap.Logger) {
	classes := make([]uint, 0, len(changed))
	for id := range changed {
		classes = append(classes, id)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	for _, classID := range classes {
		if err := s.publisher.PublishCompetitorsUpdated(ctx, classID); err != nil {
			l.Warn("Failed to publish class update", zap.Uint("class_id", classID), zap.Error(err))
		}
	}
	if kind == extract.KindResults {
		if err := s.publisher.NotifyWinnerChanges(ctx, eventID); err != nil {
			l.Warn("Failed to notify winner changes", zap.Error(err))
		}
	}
}

// Protocol returns the audit trail of a competitor of the event.
func (s *Service) Protocol(ctx context.Context, eventID, competitorID uint) ([]models.Protocol, error) {
	c, err := s.repo.GetCompetitor(ctx, competitorID)
	if err != nil {
		return nil, err
	}
	if c.EventID != eventID {
		return nil, &database.Error{Op: "get competitor", Kind: database.KindNotFound, Err: fmt.Errorf("competitor %d is not part of event %d", competitorID, eventID)}
	}
	return s.repo.ListProtocol(ctx, eventID, competitorID)
}

func entryKey(e extract.Entry) string {
	if e.Person == nil {
		return ""
	}
	return strings.TrimSpace(e.Person.Family + " " + e.Person.Given)
}
