package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/records"
)

const (
	prefLabelOverrides  = "labelOverrides"
	prefDefaultTagOrder = "defaultTagOrder"
	prefUpdatedAt       = "updatedAt"
	prefDeviceID        = "deviceId"
)

// Preferences is the single per-owner preferences document.
type Preferences struct {
	LabelOverrides  map[string]string
	DefaultTagOrder []string
	UpdatedAt       time.Time
	DeviceID        string
}

func (s *RecordStore) SavePreferences(ctx context.Context, p Preferences) error {
	if _, err := s.owner(); err != nil {
		return err
	}

	overrides := make(map[string]any, len(p.LabelOverrides))
	for k, v := range p.LabelOverrides {
		overrides[k] = v
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	doc := map[string]any{
		prefLabelOverrides:  overrides,
		prefDefaultTagOrder: records.SanitizeTags(p.DefaultTagOrder),
		prefUpdatedAt:       records.FormatTime(updated),
	}
	if p.DeviceID != "" {
		doc[prefDeviceID] = p.DeviceID
	}
	return s.api.PutSettings(ctx, records.TypePreferences, doc)
}

// FetchPreferences returns the stored document; found is false when the
// owner never saved one.
func (s *RecordStore) FetchPreferences(ctx context.Context) (p Preferences, found bool, err error) {
	if _, err := s.owner(); err != nil {
		return Preferences{}, false, err
	}

	doc, err := s.api.GetSettings(ctx, records.TypePreferences)
	if errors.Is(err, ErrNotFound) {
		return Preferences{}, false, nil
	}
	if err != nil {
		return Preferences{}, false, err
	}
	return decodePreferences(doc), true, nil
}

func decodePreferences(doc map[string]any) Preferences {
	p := Preferences{LabelOverrides: map[string]string{}}
	if m, ok := doc[prefLabelOverrides].(map[string]any); ok {
		for k, v := range m {
			if s, ok := v.(string); ok {
				p.LabelOverrides[k] = s
			}
		}
	}
	p.DefaultTagOrder = records.DecodeTags(doc[prefDefaultTagOrder])
	if s, ok := doc[prefUpdatedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			p.UpdatedAt = t
		}
	}
	p.DeviceID, _ = doc[prefDeviceID].(string)
	return p
}
