package extract

import (
	"errors"
	"fmt"
	"strings"

	"results-ingest/core/utils"
)

// ErrUnknownDocument is returned for trees that are not a result, start or class list.
var ErrUnknownDocument = errors.New("unrecognized feed document")

type documentShape struct {
	root    string
	kind    Kind
	section string
	person  string
	team    string
	member  string
	payload string
}

var shapes = []documentShape{
	{root: "ResultList", kind: KindResults, section: "ClassResult", person: "PersonResult", team: "TeamResult", member: "TeamMemberResult", payload: "Result"},
	{root: "StartList", kind: KindStarts, section: "ClassStart", person: "PersonStart", team: "TeamStart", member: "TeamMemberStart", payload: "Start"},
	{root: "ClassList", kind: KindClasses, section: "Class"},
}

// Extract turns a generic parsed feed tree into flat candidate records.
// The tree may be the document element itself or a map holding it.
func Extract(tree map[string]any) (*Feed, error) {
	if tree == nil {
		return nil, ErrUnknownDocument
	}

	for _, shape := range shapes {
		doc, ok := lookup(tree, shape.root)
		if !ok {
			continue
		}
		return extractDocument(first(doc), shape), nil
	}

	return nil, fmt.Errorf("%w: expected one of ResultList, StartList, ClassList", ErrUnknownDocument)
}

func extractDocument(root any, shape documentShape) *Feed {
	feed := &Feed{
		Kind: shape.kind,
		Event: EventRecord{
			ID:   textOf(child(root, "Event"), "Id"),
			Name: textOf(child(root, "Event"), "Name"),
		},
	}

	for _, node := range children(root, shape.section) {
		if shape.kind == KindClasses {
			feed.Sections = append(feed.Sections, ClassSection{Class: classRecord(node)})
			continue
		}

		section := ClassSection{
			Class:  classRecord(child(node, "Class")),
			Course: courseRecord(child(node, "Course")),
		}
		for _, p := range children(node, shape.person) {
			section.Entries = append(section.Entries, entry(p, shape.payload, nil))
		}
		for _, t := range children(node, shape.team) {
			team := teamRecord(t)
			for _, m := range children(t, shape.member) {
				e := entry(m, shape.payload, team)
				if e.Organisation == nil {
					e.Organisation = team.Organisation
				}
				section.Entries = append(section.Entries, e)
			}
		}
		feed.Sections = append(feed.Sections, section)
	}
	return feed
}

// classRecord reads a class. Course metadata may sit on the class itself or
// on its own Course child.
func classRecord(node any) ClassRecord {
	rec := ClassRecord{
		ExternalID: textOf(node, "Id"),
		Name:       textOf(node, "Name"),
		Sex:        strings.ToUpper(attr(node, "sex")),
	}

	for _, course := range []any{child(node, "Course"), node} {
		if course == nil {
			continue
		}
		if rec.Length == nil {
			rec.Length = floatOf(course, "Length")
		}
		if rec.Climb == nil {
			rec.Climb = floatOf(course, "Climb")
		}
		if rec.Controls == nil {
			rec.Controls = intOf(course, "NumberOfControls")
		}
	}
	return rec
}

func courseRecord(node any) *CourseRecord {
	if node == nil {
		return nil
	}
	c := &CourseRecord{
		Length:   floatOf(node, "Length"),
		Climb:    floatOf(node, "Climb"),
		Controls: intOf(node, "NumberOfControls"),
	}
	if c.Length == nil && c.Climb == nil && c.Controls == nil {
		return nil
	}
	return c
}

func entry(node any, payload string, team *TeamRecord) Entry {
	e := Entry{
		Person:       personRecord(child(node, "Person")),
		Organisation: organisationRecord(child(node, "Organisation")),
		Team:         team,
	}

	// Relay members may carry one payload per leg; the first one is used.
	p := child(node, payload)
	if p == nil {
		return e
	}
	e.Leg = intOf(p, "Leg")
	if e.Leg == nil {
		e.Leg = intOf(node, "Leg")
	}

	switch payload {
	case "Result":
		e.Result = resultRecord(p)
	case "Start":
		e.Start = &StartRecord{
			StartTime: timeOf(p, "StartTime"),
			BibNumber: textOf(p, "BibNumber"),
			Card:      cardOf(p),
		}
	}
	return e
}

func personRecord(node any) *PersonRecord {
	if node == nil {
		return nil
	}
	name := child(node, "Name")
	p := &PersonRecord{
		Given:       textOf(name, "Given"),
		Family:      textOf(name, "Family"),
		Nationality: nationality(child(node, "Nationality")),
	}
	for _, id := range children(node, "Id") {
		value := text(id)
		if value == "" {
			continue
		}
		p.IDs = append(p.IDs, Identifier{Type: attr(id, "type"), Value: value})
	}
	if p.Given == "" && p.Family == "" && len(p.IDs) == 0 {
		return nil
	}
	return p
}

func nationality(node any) string {
	if code := attr(node, "code"); code != "" {
		return code
	}
	return text(node)
}

func organisationRecord(node any) *OrganisationRecord {
	if node == nil {
		return nil
	}
	o := &OrganisationRecord{
		Name:      textOf(node, "Name"),
		ShortName: textOf(node, "ShortName"),
	}
	if o.Name == "" && o.ShortName == "" {
		return nil
	}
	return o
}

func teamRecord(node any) *TeamRecord {
	return &TeamRecord{
		Name:         textOf(node, "Name"),
		BibNumber:    textOf(node, "BibNumber"),
		Organisation: organisationRecord(child(node, "Organisation")),
	}
}

func resultRecord(node any) *ResultRecord {
	r := &ResultRecord{
		StartTime:  timeOf(node, "StartTime"),
		FinishTime: timeOf(node, "FinishTime"),
		Time:       floatOf(node, "Time"),
		Status:     textOf(node, "Status"),
		BibNumber:  textOf(node, "BibNumber"),
		Card:       cardOf(node),
	}
	for _, s := range children(node, "SplitTime") {
		split := SplitRecord{ControlCode: textOf(s, "ControlCode")}
		if !strings.EqualFold(attr(s, "status"), "Missing") {
			split.Time = floatOf(s, "Time")
		}
		r.Splits = append(r.Splits, split)
	}
	return r
}

// cardOf returns the first numeric control card number.
func cardOf(node any) *int {
	for _, key := range []string{"ControlCard", "SICard", "Card"} {
		for _, c := range children(node, key) {
			if n, ok := utils.ToInt(text(c)); ok {
				return &n
			}
		}
	}
	return nil
}
