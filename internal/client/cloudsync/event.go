package cloudsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/client"
	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/google/uuid"
)

// BuildEvent converts a resolved entry to its remote form. Only emojis leave
// the device; labels appear in the note for a human reader.
func BuildEvent(e *models.Entry, deviceID string, now time.Time) client.Event {
	labels := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		if t.Label != "" {
			labels = append(labels, t.Label)
		} else {
			labels = append(labels, t.Emoji)
		}
	}

	note := e.Status.Title()
	if len(labels) > 0 {
		note = fmt.Sprintf("%s: %s", note, strings.Join(labels, ", "))
	}

	updated := now
	if e.ResolvedAt != nil {
		updated = *e.ResolvedAt
	}

	return client.Event{
		ID:         EventID(e),
		OccurredAt: e.CreatedAt,
		UpdatedAt:  updated,
		Tags:       e.Emojis(),
		Note:       note,
		DeviceID:   deviceID,
	}
}

// EventID is the remote event id of e: its link when present, else its own
// id, so other devices can map the event back to the same local id.
func EventID(e *models.Entry) string {
	if e.RemoteID != "" {
		return e.RemoteID
	}
	return e.ID.String()
}

// TagResolver turns emojis into labeled tags.
type TagResolver interface {
	Tags(emojis []string) []models.Tag
}

// EventToEntry materializes a remote event as a resolved local entry. Remote
// history is always treated as resisted.
func EventToEntry(ev client.Event, labels TagResolver) *models.Entry {
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		id = uuid.New()
	}

	resolved := ev.UpdatedAt
	if resolved.IsZero() || resolved.Before(ev.OccurredAt) {
		resolved = ev.OccurredAt
	}
	resolved = resolved.UTC()

	return &models.Entry{
		ID:         id,
		CreatedAt:  ev.OccurredAt.UTC(),
		ResolvedAt: &resolved,
		Status:     models.StatusResisted,
		Tags:       models.DedupeTags(labels.Tags(ev.Tags)),
		RemoteID:   ev.ID,
	}
}
