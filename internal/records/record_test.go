package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecordName_RoundTrip(t *testing.T) {
	name := EventRecordName("5f1c1f8e-2f0b-4a57-9d1c-3c3f1f0b8a11")
	assert.Equal(t, "CravingEvent_5f1c1f8e-2f0b-4a57-9d1c-3c3f1f0b8a11", name)

	id, ok := EventIDFromName(name)
	require.True(t, ok)
	assert.Equal(t, "5f1c1f8e-2f0b-4a57-9d1c-3c3f1f0b8a11", id)

	_, ok = EventIDFromName("Preferences_x")
	assert.False(t, ok)
	_, ok = EventIDFromName(EventRecordPrefix)
	assert.False(t, ok)
}

func TestRecord_FieldAccessors(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 123, time.UTC)
	r := &Record{Fields: map[string]any{
		FieldEventID:   "e1",
		FieldUpdatedAt: FormatTime(at),
		FieldIntensity: 4.0,
		FieldNote:      17,
	}}

	assert.Equal(t, "e1", r.String(FieldEventID))
	assert.Equal(t, "", r.String(FieldNote))

	got, ok := r.Time(FieldUpdatedAt)
	require.True(t, ok)
	assert.True(t, at.Equal(got))

	n, ok := r.Int(FieldIntensity)
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = r.Int(FieldDeviceID)
	assert.False(t, ok)

	var nilRec *Record
	assert.Equal(t, "", nilRec.String(FieldEventID))
}

func TestType_Valid(t *testing.T) {
	assert.True(t, TypeCravingEvent.Valid())
	assert.True(t, TypePreferences.Valid())
	assert.False(t, Type("WindowState").Valid())
}
