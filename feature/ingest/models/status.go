package models

import (
	"strings"
	"unicode"
)

// ResultStatus is the state of a competitor's result.
type ResultStatus string

const (
	StatusOK                 ResultStatus = "OK"
	StatusFinished           ResultStatus = "Finished"
	StatusMissingPunch       ResultStatus = "MissingPunch"
	StatusDisqualified       ResultStatus = "Disqualified"
	StatusDidNotFinish       ResultStatus = "DidNotFinish"
	StatusActive             ResultStatus = "Active"
	StatusInactive           ResultStatus = "Inactive"
	StatusOverTime           ResultStatus = "OverTime"
	StatusSportingWithdrawal ResultStatus = "SportingWithdrawal"
	StatusNotCompeting       ResultStatus = "NotCompeting"
	StatusMoved              ResultStatus = "Moved"
	StatusMovedUp            ResultStatus = "MovedUp"
	StatusDidNotStart        ResultStatus = "DidNotStart"
	StatusDidNotEnter        ResultStatus = "DidNotEnter"
	StatusCancelled          ResultStatus = "Cancelled"
)

var statusLookup = func() map[string]ResultStatus {
	all := []ResultStatus{
		StatusOK, StatusFinished, StatusMissingPunch, StatusDisqualified,
		StatusDidNotFinish, StatusActive, StatusInactive, StatusOverTime,
		StatusSportingWithdrawal, StatusNotCompeting, StatusMoved, StatusMovedUp,
		StatusDidNotStart, StatusDidNotEnter, StatusCancelled,
	}
	m := make(map[string]ResultStatus, len(all)+10)
	for _, s := range all {
		m[normalizeToken(string(s))] = s
	}
	// Short codes used by timing software.
	m["dns"] = StatusDidNotStart
	m["dnf"] = StatusDidNotFinish
	m["dsq"] = StatusDisqualified
	m["disq"] = StatusDisqualified
	m["mp"] = StatusMissingPunch
	m["nc"] = StatusNotCompeting
	m["ot"] = StatusOverTime
	m["sw"] = StatusSportingWithdrawal
	m["dne"] = StatusDidNotEnter
	return m
}()

func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// ParseStatus matches a token against the known statuses and their short
// codes, ignoring case, whitespace and punctuation.
func ParseStatus(token string) (ResultStatus, bool) {
	s, ok := statusLookup[normalizeToken(token)]
	return s, ok
}
