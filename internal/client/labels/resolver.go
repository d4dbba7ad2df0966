package labels

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
)

// OverrideStore persists the override table. *prefs.Store implements it.
type OverrideStore interface {
	LabelOverrides(ctx context.Context) (map[string]string, error)
	SetLabelOverrides(ctx context.Context, m map[string]string) error
	LegacyLabelOverrides(ctx context.Context) (map[string]string, bool, error)
	DeleteLegacyLabelOverrides(ctx context.Context) error
}

// Resolver keeps the override table in memory and writes every change
// through to the store before applying it.
type Resolver struct {
	store OverrideStore

	mu        sync.RWMutex
	overrides map[string]string
}

func NewResolver(store OverrideStore) *Resolver {
	return &Resolver{store: store, overrides: map[string]string{}}
}

// Load reads the override table and folds the legacy table into it once.
// Legacy values never replace an existing override; the legacy key is
// deleted afterwards. It returns how many overrides the legacy table added.
func (r *Resolver) Load(ctx context.Context) (int, error) {
	current, err := r.store.LabelOverrides(ctx)
	if err != nil {
		return 0, fmt.Errorf("load label overrides: %w", err)
	}

	legacy, found, err := r.store.LegacyLabelOverrides(ctx)
	if err != nil {
		return 0, fmt.Errorf("load legacy label overrides: %w", err)
	}

	added := 0
	if found {
		added = mergeMissing(current, legacy)
		if added > 0 {
			if err := r.store.SetLabelOverrides(ctx, current); err != nil {
				return 0, err
			}
		}
		if err := r.store.DeleteLegacyLabelOverrides(ctx); err != nil {
			return 0, err
		}
	}

	r.mu.Lock()
	r.overrides = current
	r.mu.Unlock()
	return added, nil
}

// LabelFor returns the override when present and non-blank, else the
// catalog label. ok is false when neither exists.
func (r *Resolver) LabelFor(emoji string) (label string, ok bool) {
	emoji = normalizeEmoji(emoji)
	r.mu.RLock()
	o := r.overrides[emoji]
	r.mu.RUnlock()
	if strings.TrimSpace(o) != "" {
		return o, true
	}
	return DefaultLabel(emoji)
}

// DisplayLabel is LabelFor with the emoji itself as the last resort.
func (r *Resolver) DisplayLabel(emoji string) string {
	if l, ok := r.LabelFor(emoji); ok {
		return l
	}
	return emoji
}

// Tags turns emojis into tags with resolved labels, keeping order.
func (r *Resolver) Tags(emojis []string) []models.Tag {
	out := make([]models.Tag, 0, len(emojis))
	for _, e := range emojis {
		out = append(out, models.Tag{Emoji: e, Label: r.DisplayLabel(e)})
	}
	return out
}

// SaveLabel records label for emoji. Catalog emojis only keep an override
// that differs from the default; choosing the default again drops it. A
// blank label changes nothing.
func (r *Resolver) SaveLabel(ctx context.Context, emoji, label string) error {
	emoji = normalizeEmoji(emoji)
	label = strings.TrimSpace(label)
	if emoji == "" || label == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.overrides)
	if def, ok := DefaultLabel(emoji); ok && def == label {
		if _, had := next[emoji]; !had {
			return nil
		}
		delete(next, emoji)
	} else {
		if next[emoji] == label {
			return nil
		}
		next[emoji] = label
	}

	if err := r.store.SetLabelOverrides(ctx, next); err != nil {
		return err
	}
	r.overrides = next
	return nil
}

func (r *Resolver) RemoveOverride(ctx context.Context, emoji string) error {
	emoji = normalizeEmoji(emoji)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.overrides[emoji]; !ok {
		return nil
	}
	next := maps.Clone(r.overrides)
	delete(next, emoji)
	if err := r.store.SetLabelOverrides(ctx, next); err != nil {
		return err
	}
	r.overrides = next
	return nil
}

// Overrides returns a copy of the override table.
func (r *Resolver) Overrides() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.overrides)
}

// MergeOverrides adds entries of m for emojis without an override. Existing
// overrides are never replaced. It returns the number of added entries.
func (r *Resolver) MergeOverrides(ctx context.Context, m map[string]string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.overrides)
	added := mergeMissing(next, m)
	if added == 0 {
		return 0, nil
	}
	if err := r.store.SetLabelOverrides(ctx, next); err != nil {
		return 0, err
	}
	r.overrides = next
	return added, nil
}

func mergeMissing(dst, src map[string]string) int {
	added := 0
	for emoji, label := range src {
		emoji = normalizeEmoji(emoji)
		label = strings.TrimSpace(label)
		if emoji == "" || label == "" {
			continue
		}
		if _, ok := dst[emoji]; ok {
			continue
		}
		dst[emoji] = label
		added++
	}
	return added
}

func normalizeEmoji(e string) string {
	return records.NormalizeTag(e)
}
