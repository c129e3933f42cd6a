package ingest

import (
	"errors"

	"results-ingest/feature/ingest/extract"
	"results-ingest/feature/ingest/upsert"
)

// Report sections.
const (
	SectionClass      = "class"
	SectionCompetitor = "competitor"
	SectionSplits     = "splits"
)

// Report summarizes one ingested feed. A feed with failures is still
// applied for every record that succeeded.
type Report struct {
	// UploadID identifies this ingestion in logs.
	UploadID    string           `json:"upload_id"`
	Kind        extract.Kind     `json:"kind"`
	Classes     int              `json:"classes"`
	Competitors CompetitorCounts `json:"competitors"`
	Splits      SplitCounts      `json:"splits"`
	Failures    []Failure        `json:"failures"`
}

type CompetitorCounts struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	// GeneratedKeys counts competitors matched by class and name because the
	// feed gave no identifier. Namesakes in one class share such a key.
	GeneratedKeys int `json:"generated_keys"`
}

type SplitCounts struct {
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}

// Failure is one record that could not be applied.
type Failure struct {
	Section string `json:"section"`
	// Index is the position of the record within its section of the feed.
	Index     int    `json:"index"`
	Key       string `json:"key,omitempty"`
	Reason    string `json:"reason"`
	Malformed bool   `json:"malformed"`
}

func (r *Report) fail(section string, index int, key string, err error) {
	r.Failures = append(r.Failures, Failure{
		Section:   section,
		Index:     index,
		Key:       key,
		Reason:    err.Error(),
		Malformed: errors.Is(err, upsert.ErrMalformed),
	})
}
