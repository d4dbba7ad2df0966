// Package records describes the owner-scoped public record format shared by
// the record store server and its clients: record kinds, deterministic record
// names, field keys, tag sanitization and loosely-typed field decoding.
package records

import (
	"strings"
	"time"
)

// Type is the record kind.
type Type string

const (
	TypeCravingEvent Type = "CravingEvent"
	TypePreferences  Type = "Preferences"
)

// Valid reports whether t is a known record kind.
func (t Type) Valid() bool {
	switch t {
	case TypeCravingEvent, TypePreferences:
		return true
	}
	return false
}

// EventRecordPrefix prefixes every craving event record name.
const EventRecordPrefix = string(TypeCravingEvent) + "_"

// EventRecordName derives the record name for an event id. The mapping is
// deterministic so a repeated create for the same event collides.
func EventRecordName(eventID string) string {
	return EventRecordPrefix + eventID
}

// EventIDFromName is the inverse of EventRecordName.
func EventIDFromName(name string) (string, bool) {
	id, ok := strings.CutPrefix(name, EventRecordPrefix)
	return id, ok && id != ""
}

// Craving event field keys.
const (
	FieldEventID   = "eventId"
	FieldUpdatedAt = "updatedAt"
	FieldTags      = "tags"
	FieldNote      = "note"
	FieldIntensity = "intensity"
	FieldDeviceID  = "deviceId"
)

// Record is one owner-scoped entry of the public store.
//
// Owner is assigned by the server from the caller's identity and never
// changes afterwards. OccurredAt is the query and sort key; a zero value means
// the record carries no occurrence time.
type Record struct {
	Name       string
	Type       Type
	Owner      string
	OccurredAt time.Time
	Fields     map[string]any
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Query selects records of one kind owned by Owner, optionally only those that
// occurred strictly after Since. Results are ordered by OccurredAt descending.
type Query struct {
	Type  Type
	Owner string
	Since *time.Time
	Limit int
}

// String returns the string field key, or "" when absent or not a string.
func (r *Record) String(key string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	s, _ := r.Fields[key].(string)
	return s
}

// Time parses an RFC 3339 string field.
func (r *Record) Time(key string) (time.Time, bool) {
	s := r.String(key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Int reads a numeric field. Values decoded from JSON arrive as float64.
func (r *Record) Int(key string) (int, bool) {
	if r == nil || r.Fields == nil {
		return 0, false
	}
	switch v := r.Fields[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// FormatTime renders timestamps the way string fields store them.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
