package models

import "time"

// Sex categories of a class.
const (
	SexMale   = "M"
	SexFemale = "F"
	SexMixed  = "B"
)

// OriginIngestion marks audit entries written while importing a feed.
const OriginIngestion = "ingestion"

// Class is a competition category of one event.
type Class struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"not null;uniqueIndex:idx_class_event_external;index" json:"event_id"`
	ExternalID *string   `gorm:"size:64;uniqueIndex:idx_class_event_external" json:"external_id,omitempty"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Sex        string    `gorm:"size:1;not null;default:B" json:"sex"`
	Length     *float64  `json:"length,omitempty"`
	Climb      *float64  `json:"climb,omitempty"`
	Controls   *int      `json:"controls,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Team is a relay team. Bib numbers are unique within an event.
type Team struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventID      uint      `gorm:"not null;uniqueIndex:idx_team_event_bib" json:"event_id"`
	ClassID      uint      `gorm:"not null;index" json:"class_id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Organisation string    `gorm:"size:128" json:"organisation"`
	ShortName    string    `gorm:"size:32" json:"short_name"`
	BibNumber    *string   `gorm:"size:32;uniqueIndex:idx_team_event_bib" json:"bib_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Competitor is one person competing in a class, optionally as a team member.
type Competitor struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EventID      uint       `gorm:"not null;uniqueIndex:idx_competitor_event_system_key" json:"event_id"`
	ClassID      uint       `gorm:"not null;index" json:"class_id"`
	TeamID       *uint      `gorm:"index" json:"team_id,omitempty"`
	Leg          *int       `json:"leg,omitempty"`
	FirstName    string     `gorm:"size:64" json:"first_name"`
	LastName     string     `gorm:"size:64;not null" json:"last_name"`
	Nationality  string     `gorm:"size:8" json:"nationality"`
	Registration string     `gorm:"size:80;index" json:"registration"`
	SystemKey    string     `gorm:"size:80;not null;uniqueIndex:idx_competitor_event_system_key" json:"system_key"`
	Card         *int       `json:"card,omitempty"`
	Organisation string     `gorm:"size:128" json:"organisation"`
	ShortName    string     `gorm:"size:32" json:"short_name"`
	BibNumber    *string    `gorm:"size:32" json:"bib_number,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	FinishTime   *time.Time `json:"finish_time,omitempty"`
	// ElapsedTime is in seconds.
	ElapsedTime *int      `json:"elapsed_time,omitempty"`
	Status      string    `gorm:"size:32;not null;default:Inactive" json:"status"`
	LateStart   bool      `gorm:"not null;default:false" json:"late_start"`
	Note        *string   `gorm:"size:255" json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName is "<last> <first>", the form recorded when a competitor is created.
func (c Competitor) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return c.LastName + " " + c.FirstName
}

// Split is the time a competitor punched one control.
type Split struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	CompetitorID uint `gorm:"not null;uniqueIndex:idx_split_competitor_control" json:"competitor_id"`
	ControlCode  int  `gorm:"not null;uniqueIndex:idx_split_competitor_control" json:"control_code"`
	// Time is in seconds from the start. Nil means the control was punched without a time.
	Time *int `json:"time"`
}

// Protocol is one append-only audit entry of a competitor field change.
type Protocol struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventID       uint      `gorm:"not null;index" json:"event_id"`
	CompetitorID  uint      `gorm:"not null;index" json:"competitor_id"`
	Origin        string    `gorm:"size:32;not null" json:"origin"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	PreviousValue *string   `gorm:"size:255" json:"previous_value"`
	NewValue      *string   `gorm:"size:255" json:"new_value"`
	Author        string    `gorm:"size:128" json:"author"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// All lists the models managed by migrations.
func All() []any {
	return []any{&Class{}, &Team{}, &Competitor{}, &Split{}, &Protocol{}}
}
