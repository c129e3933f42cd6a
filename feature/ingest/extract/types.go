package extract

import "time"

// Kind is the document type of a feed.
type Kind string

const (
	KindResults Kind = "results"
	KindStarts  Kind = "starts"
	KindClasses Kind = "classes"
)

// Feed is the flat candidate data of one feed document.
type Feed struct {
	Kind     Kind           `json:"kind"`
	Event    EventRecord    `json:"event"`
	Sections []ClassSection `json:"sections"`
}

// EventRecord identifies the event as named by the timing software.
type EventRecord struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ClassSection groups the entries of one class.
type ClassSection struct {
	Class ClassRecord `json:"class"`
	// Course is the Course element next to the class, when present.
	Course  *CourseRecord `json:"course,omitempty"`
	Entries []Entry       `json:"entries"`
}

// CourseRecord is course metadata given outside the class element.
type CourseRecord struct {
	Length   *float64 `json:"length,omitempty"`
	Climb    *float64 `json:"climb,omitempty"`
	Controls *int     `json:"controls,omitempty"`
}

// ClassRecord is a class with its optional course metadata.
type ClassRecord struct {
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name"`
	// Sex is the explicit sex attribute, empty when the feed has none.
	Sex      string   `json:"sex,omitempty"`
	Length   *float64 `json:"length,omitempty"`
	Climb    *float64 `json:"climb,omitempty"`
	Controls *int     `json:"controls,omitempty"`
}

// Entry is one competitor record. Person is nil when the feed carried no
// person data; such entries are reported as malformed by the caller.
type Entry struct {
	Person       *PersonRecord       `json:"person,omitempty"`
	Organisation *OrganisationRecord `json:"organisation,omitempty"`
	Start        *StartRecord        `json:"start,omitempty"`
	Result       *ResultRecord       `json:"result,omitempty"`
	Team         *TeamRecord         `json:"team,omitempty"`
	Leg          *int                `json:"leg,omitempty"`
}

// Identifier is one typed external id of a person.
type Identifier struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

type PersonRecord struct {
	Given       string       `json:"given"`
	Family      string       `json:"family"`
	IDs         []Identifier `json:"ids,omitempty"`
	Nationality string       `json:"nationality,omitempty"`
}

type OrganisationRecord struct {
	Name      string `json:"name,omitempty"`
	ShortName string `json:"short_name,omitempty"`
}

// TeamRecord is a relay team shared by its member entries.
type TeamRecord struct {
	Name         string              `json:"name"`
	BibNumber    string              `json:"bib_number,omitempty"`
	Organisation *OrganisationRecord `json:"organisation,omitempty"`
}

type StartRecord struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	BibNumber string     `json:"bib_number,omitempty"`
	Card      *int       `json:"card,omitempty"`
}

type ResultRecord struct {
	StartTime  *time.Time `json:"start_time,omitempty"`
	FinishTime *time.Time `json:"finish_time,omitempty"`
	// Time is the elapsed time in seconds.
	Time      *float64      `json:"time,omitempty"`
	Status    string        `json:"status,omitempty"`
	BibNumber string        `json:"bib_number,omitempty"`
	Card      *int          `json:"card,omitempty"`
	Splits    []SplitRecord `json:"splits,omitempty"`
}

// SplitRecord is a raw split as found in the feed. ControlCode may not be
// numeric; normalization is left to the split ledger.
type SplitRecord struct {
	ControlCode string   `json:"control_code"`
	Time        *float64 `json:"time,omitempty"`
}
