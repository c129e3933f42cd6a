package notify

import (
	"sort"

	"results-ingest/feature/ingest/models"
)

// Standing is one row of a class result list.
type Standing struct {
	// Rank is zero for competitors without a valid result.
	Rank         int    `json:"rank"`
	CompetitorID uint   `json:"competitor_id"`
	Name         string `json:"name"`
	Organisation string `json:"organisation,omitempty"`
	Status       string `json:"status"`
	ElapsedTime  *int   `json:"elapsed_time,omitempty"`
}

func ranked(c models.Competitor) bool {
	return c.Status == string(models.StatusOK) && c.ElapsedTime != nil
}

// Standings orders competitors by elapsed time. Competitors without an OK
// result follow, by name. Equal times share a rank.
func Standings(competitors []models.Competitor) []Standing {
	sorted := append([]models.Competitor(nil), competitors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ranked(a) != ranked(b) {
			return ranked(a)
		}
		if ranked(a) && *a.ElapsedTime != *b.ElapsedTime {
			return *a.ElapsedTime < *b.ElapsedTime
		}
		if a.FullName() != b.FullName() {
			return a.FullName() < b.FullName()
		}
		return a.ID < b.ID
	})

	out := make([]Standing, len(sorted))
	for i, c := range sorted {
		s := Standing{
			CompetitorID: c.ID,
			Name:         c.FullName(),
			Organisation: c.Organisation,
			Status:       c.Status,
			ElapsedTime:  c.ElapsedTime,
		}
		if ranked(c) {
			s.Rank = i + 1
			if i > 0 && out[i-1].Rank > 0 && *out[i-1].ElapsedTime == *c.ElapsedTime {
				s.Rank = out[i-1].Rank
			}
		}
		out[i] = s
	}
	return out
}

// leader returns the first ranked competitor, if any.
func leader(competitors []models.Competitor) (uint, bool) {
	s := Standings(competitors)
	if len(s) == 0 || s[0].Rank == 0 {
		return 0, false
	}
	return s[0].CompetitorID, true
}
