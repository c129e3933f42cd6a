package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	return tree
}

const resultListJSON = `{
  "ResultList": {
    "Event": {"Id": "7012", "Name": "Spring Cup"},
    "ClassResult": [
      {
        "Class": {"Id": "11", "Name": "H21", "$": {"sex": "m"}},
        "Course": {"Length": "10500", "Climb": "320", "NumberOfControls": "18"},
        "PersonResult": [
          {
            "Person": {
              "Id": [{"_": "CZE-4711", "$": {"type": "CZE"}}, {"_": "99881", "$": {"type": "ORIS"}}],
              "Name": {"Family": "Novák", "Given": "Jan"},
              "Nationality": {"$": {"code": "CZE"}}
            },
            "Organisation": {"Name": "SK Praga", "ShortName": "PGP"},
            "Result": {
              "BibNumber": "101",
              "StartTime": "2024-04-13T10:00:00+02:00",
              "FinishTime": "2024-04-13T11:02:03+02:00",
              "Time": "3723",
              "Status": "OK",
              "ControlCard": {"_": "123456", "$": {"punchingSystem": "SI"}},
              "SplitTime": [
                {"ControlCode": "31", "Time": "300"},
                {"ControlCode": "32", "Time": "640.0"},
                {"ControlCode": "33", "$": {"status": "Missing"}}
              ]
            }
          },
          {
            "Organisation": {"Name": "No Person Club"},
            "Result": {"Status": "DNS"}
          }
        ]
      },
      {
        "Class": {"Id": "12", "Name": "D21"},
        "PersonResult": {
          "Person": {"Name": {"Family": "Svobodová", "Given": "Eva"}},
          "Result": {"Status": "DidNotStart"}
        }
      }
    ]
  }
}`

func TestExtract_ResultList(t *testing.T) {
	feed, err := Extract(decode(t, resultListJSON))
	require.NoError(t, err)

	assert.Equal(t, KindResults, feed.Kind)
	assert.Equal(t, EventRecord{ID: "7012", Name: "Spring Cup"}, feed.Event)
	require.Len(t, feed.Sections, 2)

	h21 := feed.Sections[0]
	assert.Equal(t, "11", h21.Class.ExternalID)
	assert.Equal(t, "H21", h21.Class.Name)
	assert.Equal(t, "M", h21.Class.Sex)
	assert.Nil(t, h21.Class.Length, "the sibling course is reported separately")
	require.NotNil(t, h21.Course)
	require.NotNil(t, h21.Course.Length)
	assert.Equal(t, 10500.0, *h21.Course.Length)
	require.NotNil(t, h21.Course.Controls)
	assert.Equal(t, 18, *h21.Course.Controls)

	require.Len(t, h21.Entries, 2)
	jan := h21.Entries[0]
	require.NotNil(t, jan.Person)
	assert.Equal(t, "Jan", jan.Person.Given)
	assert.Equal(t, "Novák", jan.Person.Family)
	assert.Equal(t, "CZE", jan.Person.Nationality)
	assert.Equal(t, []Identifier{{Type: "CZE", Value: "CZE-4711"}, {Type: "ORIS", Value: "99881"}}, jan.Person.IDs)
	assert.Equal(t, "PGP", jan.Organisation.ShortName)

	require.NotNil(t, jan.Result)
	assert.Equal(t, "101", jan.Result.BibNumber)
	assert.Equal(t, "OK", jan.Result.Status)
	require.NotNil(t, jan.Result.Card)
	assert.Equal(t, 123456, *jan.Result.Card)
	require.NotNil(t, jan.Result.FinishTime)
	assert.Equal(t, time.Date(2024, 4, 13, 9, 2, 3, 0, time.UTC), *jan.Result.FinishTime)
	require.NotNil(t, jan.Result.Time)
	assert.Equal(t, 3723.0, *jan.Result.Time)

	require.Len(t, jan.Result.Splits, 3)
	assert.Equal(t, "32", jan.Result.Splits[1].ControlCode)
	assert.Equal(t, 640.0, *jan.Result.Splits[1].Time)
	assert.Nil(t, jan.Result.Splits[2].Time)

	// Kept so the batch can report it.
	assert.Nil(t, h21.Entries[1].Person)
	assert.Equal(t, "DNS", h21.Entries[1].Result.Status)

	d21 := feed.Sections[1]
	assert.Empty(t, d21.Class.Sex)
	assert.Nil(t, d21.Course)
	require.Len(t, d21.Entries, 1)
	assert.Equal(t, "Svobodová", d21.Entries[0].Person.Family)
}

func TestExtract_StartListFlattenedAttributes(t *testing.T) {
	tree := decode(t, `{
	  "startlist": {
	    "classstart": {
	      "class": {"name": "D45", "@sex": "F"},
	      "personstart": {
	        "person": {"id": {"#text": "55", "@type": "QuickEvent"}, "name": {"family": "Malá", "given": "Ida"}},
	        "start": {"starttime": "2024-04-13T09:30:00Z", "bibnumber": 7, "controlcard": "8001234"}
	      }
	    }
	  }
	}`)

	feed, err := Extract(tree)
	require.NoError(t, err)
	assert.Equal(t, KindStarts, feed.Kind)
	require.Len(t, feed.Sections, 1)

	sec := feed.Sections[0]
	assert.Equal(t, "F", sec.Class.Sex)
	require.Len(t, sec.Entries, 1)

	e := sec.Entries[0]
	assert.Equal(t, []Identifier{{Type: "QuickEvent", Value: "55"}}, e.Person.IDs)
	require.NotNil(t, e.Start)
	assert.Equal(t, "7", e.Start.BibNumber)
	assert.Equal(t, 8001234, *e.Start.Card)
	assert.Equal(t, time.Date(2024, 4, 13, 9, 30, 0, 0, time.UTC), *e.Start.StartTime)
	assert.Nil(t, e.Result)
}

func TestExtract_Relay(t *testing.T) {
	tree := decode(t, `{
	  "ResultList": {
	    "ClassResult": {
	      "Class": {"Name": "Relay M"},
	      "TeamResult": {
	        "Name": "Praga 1",
	        "BibNumber": "201",
	        "Organisation": {"Name": "SK Praga"},
	        "TeamMemberResult": [
	          {"Person": {"Name": {"Family": "A", "Given": "One"}}, "Result": {"Leg": "1", "Status": "OK"}},
	          {"Person": {"Name": {"Family": "B", "Given": "Two"}}, "Result": {"Leg": "2", "Status": "OK"}}
	        ]
	      }
	    }
	  }
	}`)

	feed, err := Extract(tree)
	require.NoError(t, err)
	entries := feed.Sections[0].Entries
	require.Len(t, entries, 2)

	assert.Same(t, entries[0].Team, entries[1].Team)
	assert.Equal(t, "201", entries[0].Team.BibNumber)
	assert.Equal(t, 2, *entries[1].Leg)
	assert.Equal(t, "SK Praga", entries[1].Organisation.Name)
}

func TestExtract_ClassList(t *testing.T) {
	tree := decode(t, `{"ClassList": {"Class": [{"Id": "1", "Name": "H21"}, {"Id": "2", "Name": "D21"}]}}`)

	feed, err := Extract(tree)
	require.NoError(t, err)
	assert.Equal(t, KindClasses, feed.Kind)
	require.Len(t, feed.Sections, 2)
	assert.Equal(t, "D21", feed.Sections[1].Class.Name)
	assert.Empty(t, feed.Sections[1].Entries)
}

func TestExtract_Unknown(t *testing.T) {
	_, err := Extract(map[string]any{"EntryList": map[string]any{}})
	assert.ErrorIs(t, err, ErrUnknownDocument)

	_, err = Extract(nil)
	assert.ErrorIs(t, err, ErrUnknownDocument)
}
