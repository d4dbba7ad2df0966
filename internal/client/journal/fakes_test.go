package journal

import (
	"context"
	"errors"
	"sort"

	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/google/uuid"
)

var errDisk = errors.New("disk error")

type memEntries struct {
	rows      map[uuid.UUID]*models.Entry
	upsertErr error
}

func newMemEntries() *memEntries {
	return &memEntries{rows: map[uuid.UUID]*models.Entry{}}
}

func (m *memEntries) Upsert(_ context.Context, e *models.Entry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[e.ID] = e.Clone()
	return nil
}

func (m *memEntries) GetAll(context.Context) ([]*models.Entry, error) {
	out := make([]*models.Entry, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memEntries) DeleteByID(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *memEntries) DeleteResolved(context.Context) error {
	for id, e := range m.rows {
		if e.Status != models.StatusActive {
			delete(m.rows, id)
		}
	}
	return nil
}

type memPrefs struct {
	lastUsed []models.Tag
	order    map[uuid.UUID][]string
	hidden   map[uuid.UUID][]string
	deleted  []uuid.UUID
}

func newMemPrefs() *memPrefs {
	return &memPrefs{order: map[uuid.UUID][]string{}, hidden: map[uuid.UUID][]string{}}
}

func (p *memPrefs) LastUsedTags(context.Context) ([]models.Tag, error) { return p.lastUsed, nil }

func (p *memPrefs) SetLastUsedTags(_ context.Context, tags []models.Tag) error {
	p.lastUsed = tags
	return nil
}

func (p *memPrefs) SetTagOrder(_ context.Context, id uuid.UUID, order []string) error {
	p.order[id] = order
	return nil
}

func (p *memPrefs) SetHiddenTags(_ context.Context, id uuid.UUID, hidden []string) error {
	p.hidden[id] = hidden
	return nil
}

func (p *memPrefs) DeleteEntryPrefs(_ context.Context, id uuid.UUID) error {
	p.deleted = append(p.deleted, id)
	delete(p.order, id)
	delete(p.hidden, id)
	return nil
}

type recordingNotifier struct {
	resolved []*models.Entry
	changed  []*models.Entry
}

func (n *recordingNotifier) EntryResolved(e *models.Entry)      { n.resolved = append(n.resolved, e) }
func (n *recordingNotifier) HistoryTagsChanged(e *models.Entry) { n.changed = append(n.changed, e) }
