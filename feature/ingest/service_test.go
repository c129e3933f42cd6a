package ingest_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"results-ingest/core/database"
	"results-ingest/core/reconcile"
	"results-ingest/feature/ingest"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/models"
	"results-ingest/feature/ingest/notify"
	"results-ingest/feature/ingest/repository"

	"github.com/stretchr/testify/assert"
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

type recordingPublisher struct {
	mu         sync.Mutex
	competitor int
	classes    []uint
	winners    []uint
}

func (p *recordingPublisher) PublishCompetitorUpdated(ctx context.Context, eventID uint, c *models.Competitor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.competitor++
	return nil
}

func (p *recordingPublisher) PublishCompetitorsUpdated(ctx context.Context, classID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classes = append(p.classes, classID)
	return nil
}

func (p *recordingPublisher) NotifyWinnerChanges(ctx context.Context, eventID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.winners = append(p.winners, eventID)
	return nil
}

func newService(repo repository.Repository, pub notify.Publisher) *ingest.Service {
	return ingest.NewService(repo, pub, nil, zap.NewNop(), ingest.Options{
		Retry: reconcile.RetryPolicy{MaxAttempts: 6, BaseDelay: time.Millisecond},
	})
}

func ptr[T any](v T) *T { return &v }

func runner(family, given, id string, elapsed float64, splits ...extract.SplitRecord) extract.Entry {
	finish := time.Date(2024, 4, 13, 11, 0, 0, 0, time.UTC)
	return extract.Entry{
		Person:       &extract.PersonRecord{Family: family, Given: given, IDs: []extract.Identifier{{Type: "ORIS", Value: id}}},
		Organisation: &extract.OrganisationRecord{Name: "SK Praga", ShortName: "PGP"},
		Result: &extract.ResultRecord{
			FinishTime: &finish,
			Time:       ptr(elapsed),
			Status:     "OK",
			Splits:     splits,
		},
	}
}

func split(code string, t float64) extract.SplitRecord {
	return extract.SplitRecord{ControlCode: code, Time: &t}
}

func resultFeed() *extract.Feed {
	return &extract.Feed{
		Kind: extract.KindResults,
		Sections: []extract.ClassSection{{
			Class: extract.ClassRecord{ExternalID: "11", Name: "H21"},
			Entries: []extract.Entry{
				runner("Novák", "Jan", "1001", 3723, split("31", 300), split("32", 640)),
				runner("Dvořák", "Petr", "1002", 3650, split("31", 280), split("32", 600)),
			},
		}},
	}
}

func TestIngest_ResultFeed(t *testing.T) {
	_, repo := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()

	report, err := svc.Ingest(ctx, 1, resultFeed(), "timing-pc")
	require.NoError(t, err)

	assert.Equal(t, extract.KindResults, report.Kind)
	assert.Equal(t, 1, report.Classes)
	assert.Equal(t, ingest.CompetitorCounts{Created: 2}, report.Competitors)
	assert.Equal(t, ingest.SplitCounts{Changed: 2}, report.Splits)
	assert.Empty(t, report.Failures)

	classes, err := repo.ListClasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, models.SexMale, classes[0].Sex)

	jan, err := repo.FindCompetitor(ctx, 1, "1001")
	require.NoError(t, err)
	splits, err := repo.ListSplits(ctx, jan.ID)
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, 640, *splits[1].Time)

	entries, err := repo.ListProtocol(ctx, 1, jan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "timing-pc", entries[0].Author)

	assert.Equal(t, []uint{classes[0].ID}, pub.classes)
	assert.Equal(t, []uint{1}, pub.winners)
}

func TestIngest_ReuploadChangesNothing(t *testing.T) {
	_, repo := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, 1, resultFeed(), "")
	require.NoError(t, err)

	report, err := svc.Ingest(ctx, 1, resultFeed(), "")
	require.NoError(t, err)
	assert.Equal(t, ingest.CompetitorCounts{Unchanged: 2}, report.Competitors)
	assert.Equal(t, ingest.SplitCounts{Unchanged: 2}, report.Splits)

	assert.Len(t, pub.classes, 1, "an unchanged class is not announced again")
	assert.Len(t, pub.winners, 2)
	assert.Zero(t, pub.competitor)
}

func TestIngest_SplitCorrection(t *testing.T) {
	_, repo := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := newService(repo, pub)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, 1, resultFeed(), "")
	require.NoError(t, err)

	feed := resultFeed()
	feed.Sections[0].Entries[0].Result.Splits = []extract.SplitRecord{split("31", 300), split("33", 900)}
	report, err := svc.Ingest(ctx, 1, feed, "")
	require.NoError(t, err)
	assert.Equal(t, ingest.SplitCounts{Changed: 1, Unchanged: 1}, report.Splits)
	assert.Equal(t, 2, report.Competitors.Unchanged)
	assert.Len(t, pub.classes, 2, "a split change alone announces the class")

	jan, err := repo.FindCompetitor(ctx, 1, "1001")
	require.NoError(t, err)
	splits, err := repo.ListSplits(ctx, jan.ID)
	require.NoError(t, err)
	codes := []int{}
	for _, s := range splits {
		codes = append(codes, s.ControlCode)
	}
	assert.Equal(t, []int{31, 33}, codes)
}

func TestIngest_BatchResilience(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := newService(repo, &recordingPublisher{})

	section := extract.ClassSection{Class: extract.ClassRecord{Name: "D21"}}
	for i := 0; i < 10; i++ {
		e := runner("Runner", fmt.Sprint(i), fmt.Sprint(2000+i), float64(3000+i))
		if i == 3 {
			e.Person = nil
		}
		section.Entries = append(section.Entries, e)
	}
	feed := &extract.Feed{Kind: extract.KindResults, Sections: []extract.ClassSection{section}}

	report, err := svc.Ingest(context.Background(), 1, feed, "")
	require.NoError(t, err)

	assert.Equal(t, 9, report.Competitors.Created)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, ingest.SectionCompetitor, report.Failures[0].Section)
	assert.Equal(t, 3, report.Failures[0].Index)
	assert.True(t, report.Failures[0].Malformed)

	classes, err := repo.ListClasses(context.Background(), 1)
	require.NoError(t, err)
	competitors, err := repo.ListCompetitorsByClass(context.Background(), classes[0].ID)
	require.NoError(t, err)
	assert.Len(t, competitors, 9)
}

func TestIngest_CourseAndGeneratedKeys(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := newService(repo, &recordingPublisher{})
	ctx := context.Background()

	anonymous := runner("Svobodová", "Eva", "", 3900)
	anonymous.Person.IDs = nil
	feed := &extract.Feed{Kind: extract.KindResults, Sections: []extract.ClassSection{{
		Class:   extract.ClassRecord{ExternalID: "12", Name: "D21", Climb: ptr(180.0)},
		Course:  &extract.CourseRecord{Length: ptr(8.2), Climb: ptr(999.0), Controls: ptr(16)},
		Entries: []extract.Entry{anonymous, runner("Nováková", "Jana", "1003", 3800)},
	}}}

	report, err := svc.Ingest(ctx, 1, feed, "")
	require.NoError(t, err)
	assert.Equal(t, ingest.CompetitorCounts{Created: 2, GeneratedKeys: 1}, report.Competitors)

	report, err = svc.Ingest(ctx, 1, feed, "")
	require.NoError(t, err)
	assert.Equal(t, ingest.CompetitorCounts{Unchanged: 2, GeneratedKeys: 1}, report.Competitors)

	classes, err := repo.ListClasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 8.2, *classes[0].Length)
	assert.Equal(t, 180.0, *classes[0].Climb, "the class record wins over its course")
	assert.Equal(t, 16, *classes[0].Controls)
}

func TestIngest_InvalidClassSkipsItsEntries(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := newService(repo, &recordingPublisher{})

	feed := &extract.Feed{Kind: extract.KindStarts, Sections: []extract.ClassSection{
		{Class: extract.ClassRecord{}, Entries: []extract.Entry{runner("Novák", "Jan", "1001", 0)}},
		{Class: extract.ClassRecord{Name: "H21"}, Entries: []extract.Entry{runner("Dvořák", "Petr", "1002", 0)}},
	}}

	report, err := svc.Ingest(context.Background(), 1, feed, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Classes)
	assert.Equal(t, 1, report.Competitors.Created)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, ingest.SectionClass, report.Failures[0].Section)
	assert.Equal(t, 0, report.Failures[0].Index)
}

func TestIngest_StartListLeavesSplitsAlone(t *testing.T) {
	_, repo := setupTestDB(t)
	pub := &recordingPublisher{}
	svc := newService(repo, pub)

	feed := resultFeed()
	feed.Kind = extract.KindStarts

	report, err := svc.Ingest(context.Background(), 1, feed, "")
	require.NoError(t, err)
	assert.Equal(t, ingest.SplitCounts{}, report.Splits)
	assert.Empty(t, pub.winners)
	assert.Len(t, pub.classes, 1)
}

func TestIngest_RelayTeams(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := newService(repo, &recordingPublisher{})
	ctx := context.Background()

	team := &extract.TeamRecord{Name: "Praga 1", BibNumber: "201", Organisation: &extract.OrganisationRecord{Name: "SK Praga"}}
	first := runner("Novák", "Jan", "1001", 2400)
	first.Team, first.Leg = team, ptr(1)
	second := runner("Dvořák", "Petr", "1002", 2500)
	second.Team, second.Leg = team, ptr(2)

	feed := &extract.Feed{Kind: extract.KindResults, Sections: []extract.ClassSection{
		{Class: extract.ClassRecord{Name: "Relay"}, Entries: []extract.Entry{first, second}},
	}}
	_, err := svc.Ingest(ctx, 1, feed, "")
	require.NoError(t, err)

	stored, err := repo.FindTeamByBib(ctx, 1, "201")
	require.NoError(t, err)
	assert.Equal(t, "SK Praga", stored.Organisation)

	for _, key := range []string{"1001", "1002"} {
		c, err := repo.FindCompetitor(ctx, 1, key)
		require.NoError(t, err)
		require.NotNil(t, c.TeamID)
		assert.Equal(t, stored.ID, *c.TeamID)
	}
}

func TestService_Protocol(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := newService(repo, &recordingPublisher{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, 1, resultFeed(), "")
	require.NoError(t, err)
	jan, err := repo.FindCompetitor(ctx, 1, "1001")
	require.NoError(t, err)

	entries, err := svc.Protocol(ctx, 1, jan.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(models.ChangeCreate), entries[0].Type)
	assert.Equal(t, models.OriginIngestion, entries[0].Author, "default author")

	_, err = svc.Protocol(ctx, 2, jan.ID)
	assert.True(t, database.IsNotFound(err))

	_, err = svc.Protocol(ctx, 1, 999)
	assert.True(t, database.IsNotFound(err))
}

func TestIngest_NilFeed(t *testing.T) {
	_, repo := setupTestDB(t)
	_, err := newService(repo, nil).Ingest(context.Background(), 1, nil, "")
	assert.Error(t, err)
}
