package upsert

import (
	"strconv"
	"strings"
	"time"

	"results-ingest/core/utils"
	"results-ingest/feature/ingest/models"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindTime
	kindRef
)

// trackedField describes one audited competitor field. The same schema drives
// change detection, the audit entry and the column update.
type trackedField struct {
	name   string
	column string
	kind   fieldKind
	change models.ChangeType
	// get returns the raw value, nil when the field is unset.
	get func(c *models.Competitor) any
	// set stores a raw value previously returned by get.
	set func(c *models.Competitor, v any)
}

var trackedFields = []trackedField{
	{
		name: "class", column: "class_id", kind: kindRef, change: models.ChangeClass,
		get: func(c *models.Competitor) any { return refOrNil(c.ClassID) },
		set: func(c *models.Competitor, v any) { c.ClassID = v.(uint) },
	},
	{
		name: "firstname", column: "first_name", kind: kindString, change: models.ChangeName,
		get: func(c *models.Competitor) any { return c.FirstName },
		set: func(c *models.Competitor, v any) { c.FirstName = v.(string) },
	},
	{
		name: "lastname", column: "last_name", kind: kindString, change: models.ChangeName,
		get: func(c *models.Competitor) any { return c.LastName },
		set: func(c *models.Competitor, v any) { c.LastName = v.(string) },
	},
	{
		name: "nationality", column: "nationality", kind: kindString, change: models.ChangeNationality,
		get: func(c *models.Competitor) any { return c.Nationality },
		set: func(c *models.Competitor, v any) { c.Nationality = v.(string) },
	},
	{
		name: "registration", column: "registration", kind: kindString, change: models.ChangeRegistration,
		get: func(c *models.Competitor) any { return c.Registration },
		set: func(c *models.Competitor, v any) { c.Registration = v.(string) },
	},
	{
		name: "organisation", column: "organisation", kind: kindString, change: models.ChangeOrganisation,
		get: func(c *models.Competitor) any { return c.Organisation },
		set: func(c *models.Competitor, v any) { c.Organisation = v.(string) },
	},
	{
		name: "shortName", column: "short_name", kind: kindString, change: models.ChangeShortName,
		get: func(c *models.Competitor) any { return c.ShortName },
		set: func(c *models.Competitor, v any) { c.ShortName = v.(string) },
	},
	{
		name: "bibNumber", column: "bib_number", kind: kindString, change: models.ChangeBib,
		get: func(c *models.Competitor) any { return derefOrNil(c.BibNumber) },
		set: func(c *models.Competitor, v any) { c.BibNumber = ptrTo(v.(string)) },
	},
	{
		name: "startTime", column: "start_time", kind: kindTime, change: models.ChangeStartTime,
		get: func(c *models.Competitor) any { return derefOrNil(c.StartTime) },
		set: func(c *models.Competitor, v any) { c.StartTime = ptrTo(v.(time.Time)) },
	},
	{
		name: "finishTime", column: "finish_time", kind: kindTime, change: models.ChangeFinishTime,
		get: func(c *models.Competitor) any { return derefOrNil(c.FinishTime) },
		set: func(c *models.Competitor, v any) { c.FinishTime = ptrTo(v.(time.Time)) },
	},
	{
		name: "elapsedTime", column: "elapsed_time", kind: kindNumber, change: models.ChangeElapsedTime,
		get: func(c *models.Competitor) any { return derefOrNil(c.ElapsedTime) },
		set: func(c *models.Competitor, v any) { c.ElapsedTime = ptrTo(v.(int)) },
	},
	{
		name: "card", column: "card", kind: kindNumber, change: models.ChangeCard,
		get: func(c *models.Competitor) any { return derefOrNil(c.Card) },
		set: func(c *models.Competitor, v any) { c.Card = ptrTo(v.(int)) },
	},
	{
		name: "status", column: "status", kind: kindString, change: models.ChangeStatus,
		get: func(c *models.Competitor) any { return c.Status },
		set: func(c *models.Competitor, v any) { c.Status = v.(string) },
	},
	{
		name: "teamId", column: "team_id", kind: kindRef, change: models.ChangeTeam,
		get: func(c *models.Competitor) any { return derefOrNil(c.TeamID) },
		set: func(c *models.Competitor, v any) { c.TeamID = ptrTo(v.(uint)) },
	},
	{
		name: "leg", column: "leg", kind: kindNumber, change: models.ChangeLeg,
		get: func(c *models.Competitor) any { return derefOrNil(c.Leg) },
		set: func(c *models.Competitor, v any) { c.Leg = ptrTo(v.(int)) },
	},
}

// normalize maps a raw value to a comparable form. ok is false when the value
// counts as absent.
func (f trackedField) normalize(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	switch f.kind {
	case kindString:
		s := strings.TrimSpace(utils.ToString(v))
		return s, s != ""
	case kindNumber:
		n, ok := utils.ToFloat(v)
		return n, ok
	case kindTime:
		t, ok := v.(time.Time)
		if !ok || t.IsZero() {
			return nil, false
		}
		return t.UTC().Truncate(time.Millisecond).UnixMilli(), true
	case kindRef:
		id, ok := v.(uint)
		return id, ok && id != 0
	}
	return nil, false
}

// format renders a raw value for the audit protocol.
func (f trackedField) format(v any) *string {
	if _, ok := f.normalize(v); !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case time.Time:
		s = t.UTC().Format(time.RFC3339)
	case uint:
		s = strconv.FormatUint(uint64(t), 10)
	default:
		s = strings.TrimSpace(utils.ToString(t))
	}
	return &s
}

// fieldChange is one detected difference of a tracked field.
type fieldChange struct {
	field    trackedField
	previous any
	next     any
}

// mergeCompetitor applies every present incoming value that differs from the
// stored one onto merged. Absent incoming values keep the stored value.
func mergeCompetitor(stored, incoming *models.Competitor) (merged models.Competitor, changes []fieldChange) {
	merged = *stored
	for _, f := range trackedFields {
		next := f.get(incoming)
		nextNorm, present := f.normalize(next)
		if !present {
			continue
		}
		prev := f.get(stored)
		if prevNorm, ok := f.normalize(prev); ok && prevNorm == nextNorm {
			continue
		}
		changes = append(changes, fieldChange{field: f, previous: prev, next: next})
		f.set(&merged, next)
	}
	return merged, changes
}

// updatePayload maps the changed fields to their column values.
func updatePayload(changes []fieldChange) map[string]any {
	updates := make(map[string]any, len(changes))
	for _, c := range changes {
		updates[c.field.column] = c.next
	}
	return updates
}

func refOrNil(id uint) any {
	if id == 0 {
		return nil
	}
	return id
}

func derefOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrTo[T any](v T) *T {
	return &v
}
