package cloudsync

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/client"
	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type staticLabels map[string]string

func (s staticLabels) Tags(emojis []string) []models.Tag {
	out := make([]models.Tag, 0, len(emojis))
	for _, e := range emojis {
		l, ok := s[e]
		if !ok {
			l = e
		}
		out = append(out, models.Tag{Emoji: e, Label: l})
	}
	return out
}

func TestBuildEvent(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	resolved := created.Add(24 * time.Hour)
	e := &models.Entry{
		ID:         uuid.New(),
		CreatedAt:  created,
		ResolvedAt: &resolved,
		Status:     models.StatusTimedOut,
		Tags:       []models.Tag{{Emoji: "🚬", Label: "Smoking"}, {Emoji: "🦄"}},
	}
	now := created.Add(48 * time.Hour)

	ev := BuildEvent(e, "dev", now)
	assert.Equal(t, e.ID.String(), ev.ID)
	assert.Equal(t, []string{"🚬", "🦄"}, ev.Tags)
	assert.Equal(t, "Timed out: Smoking, 🦄", ev.Note)
	assert.Equal(t, "dev", ev.DeviceID)
	assert.True(t, created.Equal(ev.OccurredAt))
	assert.True(t, resolved.Equal(ev.UpdatedAt))

	e.ResolvedAt = nil
	e.Tags = nil
	e.RemoteID = "linked-id"
	ev = BuildEvent(e, "dev", now)
	assert.Equal(t, "linked-id", ev.ID)
	assert.Equal(t, "Timed out", ev.Note)
	assert.True(t, now.Equal(ev.UpdatedAt))
}

func TestEventToEntry(t *testing.T) {
	id := uuid.New()
	occurred := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	e := EventToEntry(client.Event{
		ID:         id.String(),
		OccurredAt: occurred,
		UpdatedAt:  occurred.Add(time.Minute),
		Tags:       []string{"🚬", "🧋"},
	}, staticLabels{"🚬": "Cigs"})

	assert.Equal(t, id, e.ID)
	assert.Equal(t, id.String(), e.RemoteID)
	assert.Equal(t, models.StatusResisted, e.Status)
	assert.True(t, occurred.Equal(e.CreatedAt))
	assert.True(t, occurred.Add(time.Minute).Equal(*e.ResolvedAt))
	assert.Equal(t, []models.Tag{{Emoji: "🚬", Label: "Cigs"}, {Emoji: "🧋", Label: "🧋"}}, e.Tags)

	odd := EventToEntry(client.Event{ID: "not-a-uuid", OccurredAt: occurred}, staticLabels{})
	assert.NotEqual(t, uuid.Nil, odd.ID)
	assert.Equal(t, "not-a-uuid", odd.RemoteID)
	assert.True(t, occurred.Equal(*odd.ResolvedAt))
}

func TestCanAdminister(t *testing.T) {
	cases := []struct {
		name     string
		identity string
		policy   AdminPolicy
		want     bool
	}{
		{"admin build", "", AdminPolicy{AdminBuild: true}, true},
		{"listed identity", "alice", AdminPolicy{Identities: []string{"bob", "alice"}}, true},
		{"unlisted identity", "carol", AdminPolicy{Identities: []string{"alice"}}, false},
		{"anonymous", "", AdminPolicy{Identities: []string{""}}, false},
		{"empty policy", "alice", AdminPolicy{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAdminister(tc.identity, tc.policy))
		})
	}
}
