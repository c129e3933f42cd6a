package upsert_test

import (
	"context"
	"sync"
	"testing"

	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/upsert"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTeam_ByBib(t *testing.T) {
	_, repo := setupTestDB(t)
	u := upsert.NewTeamUpserter(repo)
	ctx := context.Background()

	id, err := u.UpsertTeam(ctx, 1, 4, extract.TeamRecord{Name: "Praga 1", BibNumber: "201"}, &extract.OrganisationRecord{Name: "SK Praga", ShortName: "PGP"})
	require.NoError(t, err)

	// Renamed in a later feed; the bib keeps the identity.
	again, err := u.UpsertTeam(ctx, 1, 4, extract.TeamRecord{Name: "SK Praga 1", BibNumber: "201"}, nil)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	team, err := repo.FindTeamByBib(ctx, 1, "201")
	require.NoError(t, err)
	assert.Equal(t, "SK Praga 1", team.Name)
	assert.Equal(t, "PGP", team.ShortName)
}

func TestUpsertTeam_ByNameWithoutBib(t *testing.T) {
	_, repo := setupTestDB(t)
	u := upsert.NewTeamUpserter(repo)
	ctx := context.Background()

	a, err := u.UpsertTeam(ctx, 1, 4, extract.TeamRecord{Name: "Lokomotiva"}, nil)
	require.NoError(t, err)
	b, err := u.UpsertTeam(ctx, 1, 4, extract.TeamRecord{Name: " Lokomotiva "}, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := u.UpsertTeam(ctx, 1, 5, extract.TeamRecord{Name: "Lokomotiva"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, other, "names are scoped to the class")
}

func TestUpsertTeam_ConcurrentSameBib(t *testing.T) {
	_, repo := setupTestDB(t)
	u := upsert.NewTeamUpserter(repo)

	var wg sync.WaitGroup
	ids := make([]uint, 6)
	errs := make([]error, 6)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = u.UpsertTeam(context.Background(), 1, 4, extract.TeamRecord{Name: "Praga 1", BibNumber: "201"}, nil)
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestUpsertTeam_Malformed(t *testing.T) {
	u := upsert.NewTeamUpserter(nil)
	_, err := u.UpsertTeam(context.Background(), 1, 4, extract.TeamRecord{}, nil)
	assert.ErrorIs(t, err, upsert.ErrMalformed)
}
