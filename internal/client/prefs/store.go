// Package prefs keeps the client's small persisted preferences on top of the
// metadata key-value table. Values are JSON except the sync cursor, which is
// an RFC 3339 timestamp.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/dmitrijs2005/urgekeeper/internal/client/repositories/metadata"
	"github.com/google/uuid"
)

const (
	keyEntryPrefix       = "entry/"
	keyTagOrder          = "tag_order"
	keyDefaultTagOrder   = "default_tag_order"
	keyHiddenTags        = "hidden_tags"
	keyDefaultHiddenTags = "default_hidden_tags"
	keyLabelOverrides    = "label_overrides"
	keySyncCursor        = "sync_cursor"
	keyDeviceID          = "device_id"
	keyLastUsedTags      = "last_used_tags"

	// KeyLegacyLabelOverrides held overrides before label_overrides existed.
	KeyLegacyLabelOverrides = "customTagLabels"
)

type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.repo.Set(ctx, key, raw)
}

func (s *Store) stringList(ctx context.Context, key string) ([]string, error) {
	var out []string
	if _, err := s.getJSON(ctx, key, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TagOrder returns the emoji display order saved for one entry.
func (s *Store) TagOrder(ctx context.Context, id uuid.UUID) ([]string, error) {
	return s.stringList(ctx, entryKey(id, keyTagOrder))
}

func (s *Store) SetTagOrder(ctx context.Context, id uuid.UUID, order []string) error {
	return s.setJSON(ctx, entryKey(id, keyTagOrder), order)
}

// DefaultTagOrder seeds the display order of new entries.
func (s *Store) DefaultTagOrder(ctx context.Context) ([]string, error) {
	return s.stringList(ctx, keyDefaultTagOrder)
}

func (s *Store) SetDefaultTagOrder(ctx context.Context, order []string) error {
	return s.setJSON(ctx, keyDefaultTagOrder, order)
}

func (s *Store) HiddenTags(ctx context.Context, id uuid.UUID) ([]string, error) {
	return s.stringList(ctx, entryKey(id, keyHiddenTags))
}

func (s *Store) SetHiddenTags(ctx context.Context, id uuid.UUID, hidden []string) error {
	return s.setJSON(ctx, entryKey(id, keyHiddenTags), hidden)
}

func (s *Store) DefaultHiddenTags(ctx context.Context) ([]string, error) {
	return s.stringList(ctx, keyDefaultHiddenTags)
}

func (s *Store) SetDefaultHiddenTags(ctx context.Context, hidden []string) error {
	return s.setJSON(ctx, keyDefaultHiddenTags, hidden)
}

// DeleteEntryPrefs removes every per-entry preference of id.
func (s *Store) DeleteEntryPrefs(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.DeletePrefix(ctx, entryPrefix(id))
	return err
}

func entryPrefix(id uuid.UUID) string {
	return keyEntryPrefix + id.String() + "/"
}

func entryKey(id uuid.UUID, name string) string {
	return entryPrefix(id) + name
}

// LabelOverrides returns the emoji to label override table, never nil.
func (s *Store) LabelOverrides(ctx context.Context) (map[string]string, error) {
	return s.labelTable(ctx, keyLabelOverrides)
}

func (s *Store) SetLabelOverrides(ctx context.Context, m map[string]string) error {
	return s.setJSON(ctx, keyLabelOverrides, m)
}

// LegacyLabelOverrides returns the deprecated table and whether it exists.
func (s *Store) LegacyLabelOverrides(ctx context.Context) (map[string]string, bool, error) {
	raw, err := s.repo.Get(ctx, KeyLegacyLabelOverrides)
	if err != nil || raw == nil {
		return nil, false, err
	}
	m, err := s.labelTable(ctx, KeyLegacyLabelOverrides)
	return m, true, err
}

func (s *Store) DeleteLegacyLabelOverrides(ctx context.Context) error {
	return s.repo.Delete(ctx, KeyLegacyLabelOverrides)
}

func (s *Store) labelTable(ctx context.Context, key string) (map[string]string, error) {
	m := map[string]string{}
	if _, err := s.getJSON(ctx, key, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// SyncCursor returns the last merged occurrence time, or nil when nothing
// was merged yet.
func (s *Store) SyncCursor(ctx context.Context) (*time.Time, error) {
	raw, err := s.repo.Get(ctx, keySyncCursor)
	if err != nil || len(raw) == 0 {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", keySyncCursor, err)
	}
	return &t, nil
}

func (s *Store) SetSyncCursor(ctx context.Context, t time.Time) error {
	return s.repo.Set(ctx, keySyncCursor, []byte(t.UTC().Format(time.RFC3339Nano)))
}

func (s *Store) ResetSyncCursor(ctx context.Context) error {
	return s.repo.Delete(ctx, keySyncCursor)
}

// DeviceID returns the per-install device id, creating it on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	raw, err := s.repo.Get(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if len(raw) > 0 {
		return string(raw), nil
	}
	id := uuid.NewString()
	if err := s.repo.Set(ctx, keyDeviceID, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}

// LastUsedTags is the tag set a new active entry starts with.
func (s *Store) LastUsedTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if _, err := s.getJSON(ctx, keyLastUsedTags, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Store) SetLastUsedTags(ctx context.Context, tags []models.Tag) error {
	return s.setJSON(ctx, keyLastUsedTags, tags)
}
