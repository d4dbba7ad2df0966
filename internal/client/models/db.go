// Package models defines the client-side data model of the urge tracker:
// entries, their tags and resolution statuses, and history filters.
package models

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"github.com/google/uuid"
)

// TimeoutAfter is how long an urge may stay active before it counts as
// timed out. A timed-out entry is always resolved at CreatedAt+TimeoutAfter.
const TimeoutAfter = 24 * time.Hour

// Tag is an emoji with its display label. Only the emoji identifies a tag
// and only the emoji ever leaves the device.
type Tag struct {
	Label string
	Emoji string
}

// Entry is one tracked urge.
//
// Status is StatusActive exactly when ResolvedAt is nil. RemoteID links the
// entry to its remote event record; it is set once and never cleared.
type Entry struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	ResolvedAt *time.Time
	Status     Status
	Tags       []Tag
	RemoteID   string
}

// Linked reports whether the entry already has a remote record.
func (e *Entry) Linked() bool {
	return e.RemoteID != ""
}

// Emojis returns the tag emojis in display order.
func (e *Entry) Emojis() []string {
	out := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		out = append(out, t.Emoji)
	}
	return out
}

// TagIndex returns the position of emoji in e.Tags, or -1. Emojis compare
// in normalized form.
func (e *Entry) TagIndex(emoji string) int {
	emoji = records.NormalizeTag(emoji)
	return slices.IndexFunc(e.Tags, func(t Tag) bool { return records.NormalizeTag(t.Emoji) == emoji })
}

// Clone returns a deep copy safe to hand out of the owning goroutine.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Tags = slices.Clone(e.Tags)
	if e.ResolvedAt != nil {
		at := *e.ResolvedAt
		cp.ResolvedAt = &at
	}
	return &cp
}

// DedupeTags normalizes emojis and drops repeated ones, keeping the first
// occurrence.
func DedupeTags(tags []Tag) []Tag {
	seen := make(map[string]struct{}, len(tags))
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		t.Emoji = records.NormalizeTag(t.Emoji)
		if t.Emoji == "" {
			continue
		}
		if _, ok := seen[t.Emoji]; ok {
			continue
		}
		seen[t.Emoji] = struct{}{}
		out = append(out, t)
	}
	return out
}
