package models

import (
	"errors"
	"strings"
)

var ErrUnknownStatus = errors.New("unknown status")

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusActive   Status = "active"
	StatusResisted Status = "resisted"
	StatusGaveIn   Status = "gave_in"
	StatusTimedOut Status = "timed_out"
)

// Terminal reports whether s is one of the resolved states.
func (s Status) Terminal() bool {
	switch s {
	case StatusResisted, StatusGaveIn, StatusTimedOut:
		return true
	}
	return false
}

// Title is the human form used in notes and listings.
func (s Status) Title() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusResisted:
		return "Resisted"
	case StatusGaveIn:
		return "Gave in"
	case StatusTimedOut:
		return "Timed out"
	}
	return string(s)
}

// ParseStatus accepts the stored form plus a few spellings typed by hand
// ("gave-in", "gavein", "timeout").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "active":
		return StatusActive, nil
	case "resisted":
		return StatusResisted, nil
	case "gave_in", "gavein":
		return StatusGaveIn, nil
	case "timed_out", "timedout", "timeout":
		return StatusTimedOut, nil
	}
	return "", ErrUnknownStatus
}

// Filter selects which resolved entries a history page shows.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterResisted Filter = "resisted"
	FilterGaveIn   Filter = "gave_in"
	FilterTimedOut Filter = "timed_out"
)

// Matches is the pure filter predicate over an entry's status.
func (f Filter) Matches(e *Entry) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterResisted:
		return e.Status == StatusResisted
	case FilterGaveIn:
		return e.Status == StatusGaveIn
	case FilterTimedOut:
		return e.Status == StatusTimedOut
	}
	return false
}

func ParseFilter(s string) (Filter, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return FilterAll, nil
	}
	st, err := ParseStatus(s)
	if err != nil || !st.Terminal() {
		return "", ErrUnknownStatus
	}
	return Filter(st), nil
}
