package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"resisted", StatusResisted},
		{" Gave-In ", StatusGaveIn},
		{"gavein", StatusGaveIn},
		{"timeout", StatusTimedOut},
		{"timed out", StatusTimedOut},
		{"active", StatusActive},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStatus("maybe")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusResisted.Terminal())
	assert.True(t, StatusGaveIn.Terminal())
	assert.True(t, StatusTimedOut.Terminal())
	assert.False(t, Status("weird").Terminal())
}

func TestFilter_Matches(t *testing.T) {
	resisted := &Entry{Status: StatusResisted}
	gaveIn := &Entry{Status: StatusGaveIn}

	assert.True(t, FilterAll.Matches(resisted))
	assert.True(t, FilterAll.Matches(gaveIn))
	assert.True(t, FilterResisted.Matches(resisted))
	assert.False(t, FilterResisted.Matches(gaveIn))
	assert.True(t, FilterGaveIn.Matches(gaveIn))
	assert.False(t, FilterTimedOut.Matches(gaveIn))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("ALL")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("gave-in")
	require.NoError(t, err)
	assert.Equal(t, FilterGaveIn, f)

	_, err = ParseFilter("active")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestEntry_CloneIsDeep(t *testing.T) {
	at := time.Now()
	e := &Entry{ID: uuid.New(), ResolvedAt: &at, Status: StatusResisted, Tags: []Tag{{"Smoking", "🚬"}}}

	cp := e.Clone()
	cp.Tags[0].Label = "changed"
	*cp.ResolvedAt = at.Add(time.Hour)

	assert.Equal(t, "Smoking", e.Tags[0].Label)
	assert.Equal(t, at, *e.ResolvedAt)
	assert.Nil(t, (*Entry)(nil).Clone())
}

func TestEntry_Helpers(t *testing.T) {
	e := &Entry{Tags: []Tag{{"Smoking", "🚬"}, {"Gaming", "🎮"}}}
	assert.Equal(t, []string{"🚬", "🎮"}, e.Emojis())
	assert.Equal(t, 1, e.TagIndex("🎮"))
	assert.Equal(t, -1, e.TagIndex("🍺"))
	assert.False(t, e.Linked())
	e.RemoteID = "x"
	assert.True(t, e.Linked())
}

func TestTags_CompareNormalized(t *testing.T) {
	decomposed, precomposed := "caf\u0065\u0301", "caf\u00e9"

	got := DedupeTags([]Tag{{"A", decomposed}, {"B", precomposed}})
	assert.Equal(t, []Tag{{"A", precomposed}}, got)

	e := &Entry{Tags: []Tag{{"A", precomposed}}}
	assert.Equal(t, 0, e.TagIndex(decomposed))
}

func TestDedupeTags(t *testing.T) {
	in := []Tag{{"A", "🚬"}, {"", ""}, {"B", "🚬"}, {"C", "🎮"}}
	assert.Equal(t, []Tag{{"A", "🚬"}, {"C", "🎮"}}, DedupeTags(in))
}
