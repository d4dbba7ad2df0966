// Package journal is the client's authoritative collection of urge entries:
// the active working set, the resolved history and the paginated, filtered
// view over that history.
//
// A Repository is not safe for concurrent use. The client confines it to the
// owner loop (package owner); everything else reaches it through that loop.
// Every mutation is written to the local database first and applied in memory
// only when the write succeeded.
package journal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/dmitrijs2005/urgekeeper/internal/client/repositories/entries"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"github.com/google/uuid"
)

// PageSize is how many history entries one page of the view adds.
const PageSize = 20

var (
	ErrNotFound      = errors.New("entry not found")
	ErrNotActive     = errors.New("entry is already resolved")
	ErrNotTerminal   = errors.New("status does not resolve an entry")
	ErrAlreadyLinked = errors.New("entry is linked to another remote event")
)

// Prefs is the slice of the preference store the journal needs.
type Prefs interface {
	LastUsedTags(ctx context.Context) ([]models.Tag, error)
	SetLastUsedTags(ctx context.Context, tags []models.Tag) error
	SetTagOrder(ctx context.Context, id uuid.UUID, order []string) error
	SetHiddenTags(ctx context.Context, id uuid.UUID, hidden []string) error
	DeleteEntryPrefs(ctx context.Context, id uuid.UUID) error
}

// Notifier learns about changes that must reach the remote store. Calls
// happen on the goroutine that owns the repository, after the change is
// durable, and receive copies.
type Notifier interface {
	EntryResolved(e *models.Entry)
	HistoryTagsChanged(e *models.Entry)
}

type Repository struct {
	store    entries.Repository
	prefs    Prefs
	notifier Notifier
	now      func() time.Time

	active  []*models.Entry
	history []*models.Entry

	filter models.Filter
	pages  int
	page   []*models.Entry
}

func New(store entries.Repository, prefs Prefs) *Repository {
	return &Repository{
		store:  store,
		prefs:  prefs,
		now:    time.Now,
		filter: models.FilterAll,
		pages:  1,
	}
}

// SetNotifier installs n. A nil notifier disables notifications.
func (r *Repository) SetNotifier(n Notifier) {
	r.notifier = n
}

// Load replaces the in-memory state with what the database holds.
func (r *Repository) Load(ctx context.Context) error {
	all, err := r.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}

	r.active = r.active[:0]
	r.history = r.history[:0]
	for _, e := range all {
		if e.Status == models.StatusActive {
			r.active = append(r.active, e)
		} else {
			r.history = append(r.history, e)
		}
	}
	r.ResetPagination()
	return nil
}

// Active returns the active entries, newest first.
func (r *Repository) Active() []*models.Entry {
	return cloneAll(r.active)
}

// History returns every resolved entry, newest first.
func (r *Repository) History() []*models.Entry {
	return cloneAll(r.history)
}

// Get returns a copy of the entry with id from either collection.
func (r *Repository) Get(id uuid.UUID) (*models.Entry, bool) {
	if e, _, _ := r.find(id); e != nil {
		return e.Clone(), true
	}
	return nil, false
}

// CreateActive starts a new urge carrying the last used tag set.
func (r *Repository) CreateActive(ctx context.Context) (*models.Entry, error) {
	tags, err := r.prefs.LastUsedTags(ctx)
	if err != nil {
		return nil, err
	}

	e := &models.Entry{
		ID:        uuid.New(),
		CreatedAt: r.now().UTC(),
		Status:    models.StatusActive,
		Tags:      models.DedupeTags(tags),
	}
	if err := r.store.Upsert(ctx, e); err != nil {
		return nil, err
	}

	r.active = slices.Insert(r.active, 0, e)
	return e.Clone(), nil
}

// Resolve moves an active entry to the history. A timed-out entry resolves
// at CreatedAt+TimeoutAfter whatever at says.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID, status models.Status, at time.Time) (*models.Entry, error) {
	if !status.Terminal() {
		return nil, ErrNotTerminal
	}

	cur, inActive, _ := r.find(id)
	if cur == nil {
		return nil, ErrNotFound
	}
	if !inActive {
		return nil, ErrNotActive
	}

	if status == models.StatusTimedOut {
		at = cur.CreatedAt.Add(models.TimeoutAfter)
	}
	at = at.UTC()

	next := cur.Clone()
	next.Status = status
	next.ResolvedAt = &at

	if err := r.store.Upsert(ctx, next); err != nil {
		return nil, err
	}
	if err := r.prefs.SetLastUsedTags(ctx, next.Tags); err != nil {
		return nil, err
	}

	r.active = slices.DeleteFunc(r.active, func(e *models.Entry) bool { return e.ID == id })
	r.insertHistory(next)
	r.rebuildPage()

	if r.notifier != nil {
		r.notifier.EntryResolved(next.Clone())
	}
	return next.Clone(), nil
}

// Delete removes an active entry and its per-entry preferences. Resolved
// entries are never deleted one by one.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	cur, inActive, _ := r.find(id)
	if cur == nil {
		return ErrNotFound
	}
	if !inActive {
		return ErrNotActive
	}

	if err := r.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := r.prefs.DeleteEntryPrefs(ctx, id); err != nil {
		return err
	}

	r.active = slices.DeleteFunc(r.active, func(e *models.Entry) bool { return e.ID == id })
	return nil
}

// ToggleTag removes tag from the entry when its emoji is present and appends
// it otherwise.
func (r *Repository) ToggleTag(ctx context.Context, id uuid.UUID, tag models.Tag) (*models.Entry, error) {
	return r.mutateTags(ctx, id, func(e *models.Entry) bool {
		if i := e.TagIndex(tag.Emoji); i >= 0 {
			e.Tags = slices.Delete(e.Tags, i, i+1)
			return true
		}
		e.Tags = append(e.Tags, tag)
		return true
	})
}

// AddCustomTag appends tag unless the entry already carries its emoji.
func (r *Repository) AddCustomTag(ctx context.Context, id uuid.UUID, tag models.Tag) (*models.Entry, error) {
	if tag.Emoji == "" {
		return nil, fmt.Errorf("add tag: empty emoji")
	}
	return r.mutateTags(ctx, id, func(e *models.Entry) bool {
		if e.TagIndex(tag.Emoji) >= 0 {
			return false
		}
		e.Tags = append(e.Tags, tag)
		return true
	})
}

// ReorderTags sorts the entry's tags by order. Emojis missing from order
// keep their relative position after the ordered ones; unknown emojis in
// order are ignored.
func (r *Repository) ReorderTags(ctx context.Context, id uuid.UUID, order []string) (*models.Entry, error) {
	e, err := r.mutateTags(ctx, id, func(e *models.Entry) bool {
		reordered := reorder(e.Tags, order)
		if slices.Equal(reordered, e.Tags) {
			return false
		}
		e.Tags = reordered
		return true
	})
	if err != nil {
		return nil, err
	}
	if err := r.prefs.SetTagOrder(ctx, id, e.Emojis()); err != nil {
		return nil, err
	}
	return e, nil
}

// SetHiddenTags stores which emojis the entry hides from its tag picker.
func (r *Repository) SetHiddenTags(ctx context.Context, id uuid.UUID, hidden []string) error {
	if e, _, _ := r.find(id); e == nil {
		return ErrNotFound
	}
	return r.prefs.SetHiddenTags(ctx, id, hidden)
}

func (r *Repository) mutateTags(ctx context.Context, id uuid.UUID, fn func(*models.Entry) bool) (*models.Entry, error) {
	cur, inActive, idx := r.find(id)
	if cur == nil {
		return nil, ErrNotFound
	}

	next := cur.Clone()
	if !fn(next) {
		return next, nil
	}
	next.Tags = models.DedupeTags(next.Tags)

	if err := r.store.Upsert(ctx, next); err != nil {
		return nil, err
	}

	if inActive {
		r.active[idx] = next
		return next.Clone(), nil
	}

	r.history[idx] = next
	r.rebuildPage()
	if r.notifier != nil {
		r.notifier.HistoryTagsChanged(next.Clone())
	}
	return next.Clone(), nil
}

// Link records the remote event id of an entry. Linking is set once: the
// same id again is a no-op and a different one is ErrAlreadyLinked.
func (r *Repository) Link(ctx context.Context, id uuid.UUID, remoteID string) error {
	cur, inActive, idx := r.find(id)
	if cur == nil {
		return ErrNotFound
	}
	switch cur.RemoteID {
	case remoteID:
		return nil
	case "":
	default:
		return ErrAlreadyLinked
	}

	next := cur.Clone()
	next.RemoteID = remoteID
	if err := r.store.Upsert(ctx, next); err != nil {
		return err
	}

	if inActive {
		r.active[idx] = next
	} else {
		r.history[idx] = next
		r.rebuildPage()
	}
	return nil
}

// Knows reports whether eventID is already represented locally, either as
// an entry's remote id or, when it parses as a UUID, as an entry's own id.
func (r *Repository) Knows(eventID string) bool {
	local, parseErr := uuid.Parse(eventID)
	match := func(e *models.Entry) bool {
		if eventID != "" && e.RemoteID == eventID {
			return true
		}
		return parseErr == nil && e.ID == local
	}
	return slices.ContainsFunc(r.history, match) || slices.ContainsFunc(r.active, match)
}

// MergeRemote inserts resolved entries that arrived from the remote store,
// skipping any already known by remote id or local id. When anything was
// added the view goes back to its first page. It returns how many entries
// were added.
func (r *Repository) MergeRemote(ctx context.Context, incoming []*models.Entry) (int, error) {
	added := 0
	for _, e := range incoming {
		if e == nil || !e.Status.Terminal() || e.ResolvedAt == nil {
			continue
		}
		if r.Knows(e.RemoteID) || r.Knows(e.ID.String()) {
			continue
		}

		next := e.Clone()
		next.Tags = models.DedupeTags(next.Tags)
		if err := r.store.Upsert(ctx, next); err != nil {
			if added > 0 {
				r.ResetPagination()
			}
			return added, err
		}
		r.insertHistory(next)
		added++
	}

	if added > 0 {
		r.ResetPagination()
	}
	return added, nil
}

// ClearHistory drops every resolved entry locally. Active entries stay.
func (r *Repository) ClearHistory(ctx context.Context) error {
	if err := r.store.DeleteResolved(ctx); err != nil {
		return err
	}
	r.history = nil
	r.ResetPagination()
	return nil
}

// UnlinkedResolved returns resolved entries that never reached the remote
// store, oldest first.
func (r *Repository) UnlinkedResolved() []*models.Entry {
	var out []*models.Entry
	for i := len(r.history) - 1; i >= 0; i-- {
		if !r.history[i].Linked() {
			out = append(out, r.history[i].Clone())
		}
	}
	return out
}

// find returns the stored pointer for id, whether it sits in the active set
// and its index there or in the history.
func (r *Repository) find(id uuid.UUID) (*models.Entry, bool, int) {
	for i, e := range r.active {
		if e.ID == id {
			return e, true, i
		}
	}
	for i, e := range r.history {
		if e.ID == id {
			return e, false, i
		}
	}
	return nil, false, -1
}

// insertHistory keeps the history ordered by creation time, newest first.
func (r *Repository) insertHistory(e *models.Entry) {
	i, _ := slices.BinarySearchFunc(r.history, e, func(a, b *models.Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	r.history = slices.Insert(r.history, i, e)
}

func reorder(tags []models.Tag, order []string) []models.Tag {
	out := make([]models.Tag, 0, len(tags))
	used := make([]bool, len(tags))
	for _, emoji := range order {
		emoji = records.NormalizeTag(emoji)
		for i, t := range tags {
			if !used[i] && records.NormalizeTag(t.Emoji) == emoji {
				out = append(out, t)
				used[i] = true
				break
			}
		}
	}
	for i, t := range tags {
		if !used[i] {
			out = append(out, t)
		}
	}
	return out
}

func cloneAll(in []*models.Entry) []*models.Entry {
	out := make([]*models.Entry, 0, len(in))
	for _, e := range in {
		out = append(out, e.Clone())
	}
	return out
}
