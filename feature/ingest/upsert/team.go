package upsert

import (
	"context"
	"fmt"
	"strings"

	"results-ingest/core/database"
	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/models"

	"golang.org/x/sync/singleflight"
)

// TeamStore is the persistence a TeamUpserter needs.
type TeamStore interface {
	FindTeamByBib(ctx context.Context, eventID uint, bib string) (*models.Team, error)
	FindTeamByName(ctx context.Context, classID uint, name string) (*models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error
}

// TeamUpserter creates or updates relay teams without auditing them.
// Concurrent upserts of the same team share one store round trip.
type TeamUpserter struct {
	store TeamStore
	group singleflight.Group
}

// NewTeamUpserter creates a TeamUpserter.
func NewTeamUpserter(store TeamStore) *TeamUpserter {
	return &TeamUpserter{store: store}
}

// UpsertTeam returns the id of the team, keyed by event and bib number, or
// by class and name for teams without a bib.
func (u *TeamUpserter) UpsertTeam(ctx context.Context, eventID, classID uint, rec extract.TeamRecord, organisation *extract.OrganisationRecord) (uint, error) {
	bib := strings.TrimSpace(rec.BibNumber)
	name := strings.TrimSpace(rec.Name)
	if bib == "" && name == "" {
		return 0, fmt.Errorf("%w: team has neither bib nor name", ErrMalformed)
	}

	key := fmt.Sprintf("bib|%d|%s", eventID, bib)
	if bib == "" {
		key = fmt.Sprintf("name|%d|%s", classID, name)
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		id, err := u.upsert(ctx, eventID, classID, bib, name, organisation)
		if database.KindOf(err) == database.KindDuplicate {
			// Another writer created it between our lookup and insert.
			id, err = u.upsert(ctx, eventID, classID, bib, name, organisation)
		}
		return id, err
	})
	if err != nil {
		return 0, err
	}
	return v.(uint), nil
}

func (u *TeamUpserter) upsert(ctx context.Context, eventID, classID uint, bib, name string, organisation *extract.OrganisationRecord) (uint, error) {
	team, err := u.find(ctx, eventID, classID, bib, name)
	if err != nil && !database.IsNotFound(err) {
		return 0, fmt.Errorf("failed to look up team %q: %w", name, err)
	}

	created := team == nil
	if created {
		team = &models.Team{EventID: eventID}
		if bib != "" {
			team.BibNumber = &bib
		}
	}
	team.ClassID = classID
	if name != "" {
		team.Name = name
	}
	if organisation != nil {
		if organisation.Name != "" {
			team.Organisation = organisation.Name
		}
		if organisation.ShortName != "" {
			team.ShortName = organisation.ShortName
		}
	}

	if created {
		err = u.store.CreateTeam(ctx, team)
	} else {
		err = u.store.UpdateTeam(ctx, team)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save team %q: %w", name, err)
	}
	return team.ID, nil
}

func (u *TeamUpserter) find(ctx context.Context, eventID, classID uint, bib, name string) (*models.Team, error) {
	if bib != "" {
		return u.store.FindTeamByBib(ctx, eventID, bib)
	}
	return u.store.FindTeamByName(ctx, classID, name)
}
