package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/cloudsync"
	"github.com/dmitrijs2005/urgekeeper/internal/client/labels"
	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/google/uuid"
)

var (
	errNoEntry        = errors.New("no matching entry")
	errAmbiguousEntry = errors.New("id prefix matches several entries")
)

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

// now is a test seam for the resolution time.
var now = time.Now

// onLoop runs fn on the owner loop and returns its error.
func (a *App) onLoop(ctx context.Context, fn func() error) error {
	var ferr error
	if err := a.loop.Do(ctx, func() { ferr = fn() }); err != nil {
		return err
	}
	return ferr
}

// lookup turns a listing number or an id prefix into an entry id. It reads
// the journal and must run on the owner loop.
func (a *App) lookup(ref string) (uuid.UUID, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(a.listing) {
			return uuid.Nil, fmt.Errorf("%w: #%d", errNoEntry, n)
		}
		return a.listing[n-1], nil
	}

	ref = strings.ToLower(ref)
	var found []uuid.UUID
	for _, e := range append(a.journal.Active(), a.journal.History()...) {
		if strings.HasPrefix(e.ID.String(), ref) {
			found = append(found, e.ID)
		}
	}
	switch len(found) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", errNoEntry, ref)
	case 1:
		return found[0], nil
	default:
		return uuid.Nil, errAmbiguousEntry
	}
}

func (a *App) tag(emoji string) models.Tag {
	return models.Tag{Emoji: emoji, Label: a.labels.DisplayLabel(emoji)}
}

func (a *App) New(ctx context.Context) error {
	var e *models.Entry
	err := a.onLoop(ctx, func() (err error) {
		e, err = a.journal.CreateActive(ctx)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Started %s %s\n", shortID(e.ID), formatTags(e.Tags))
	return nil
}

func (a *App) Resolve(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("resolve <ref> <resisted|gave_in|timed_out>")
	}
	status, err := models.ParseStatus(args[1])
	if err != nil {
		return err
	}

	var e *models.Entry
	err = a.onLoop(ctx, func() error {
		id, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		e, err = a.journal.Resolve(ctx, id, status, now())
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s after %s\n", shortID(e.ID), e.Status.Title(), e.ResolvedAt.Sub(e.CreatedAt).Round(time.Second))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <ref>")
	}
	var id uuid.UUID
	err := a.onLoop(ctx, func() (err error) {
		if id, err = a.lookup(args[0]); err != nil {
			return err
		}
		return a.journal.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", shortID(id))
	return nil
}

func (a *App) Tag(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("tag <ref> <emoji>")
	}
	return a.editTags(ctx, args[0], func(id uuid.UUID) (*models.Entry, error) {
		return a.journal.ToggleTag(ctx, id, a.tag(args[1]))
	})
}

// AddTag adds an emoji to an entry. A label given with it becomes the
// emoji's override so other devices show the same label.
func (a *App) AddTag(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("addtag <ref> <emoji> [label]")
	}
	if len(args) > 2 {
		if err := a.labels.SaveLabel(ctx, args[1], strings.Join(args[2:], " ")); err != nil {
			return err
		}
		a.coord.PreferencesChanged()
	}
	t := a.tag(args[1])
	return a.editTags(ctx, args[0], func(id uuid.UUID) (*models.Entry, error) {
		return a.journal.AddCustomTag(ctx, id, t)
	})
}

// Reorder sorts an entry's tags and keeps the order as the default for new
// entries, which is shared with other devices.
func (a *App) Reorder(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("reorder <ref> <emoji>...")
	}
	order := args[1:]
	err := a.editTags(ctx, args[0], func(id uuid.UUID) (*models.Entry, error) {
		e, err := a.journal.ReorderTags(ctx, id, order)
		if err != nil {
			return nil, err
		}
		return e, a.prefs.SetDefaultTagOrder(ctx, order)
	})
	if err != nil {
		return err
	}
	a.coord.PreferencesChanged()
	return nil
}

func (a *App) editTags(ctx context.Context, ref string, fn func(uuid.UUID) (*models.Entry, error)) error {
	var e *models.Entry
	err := a.onLoop(ctx, func() error {
		id, err := a.lookup(ref)
		if err != nil {
			return err
		}
		e, err = fn(id)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", shortID(e.ID), formatTags(e.Tags))
	return nil
}

func (a *App) Hide(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usageError("hide <ref> <emoji>...")
	}
	return a.onLoop(ctx, func() error {
		id, err := a.lookup(args[0])
		if err != nil {
			return err
		}
		return a.journal.SetHiddenTags(ctx, id, args[1:])
	})
}

// List prints the active entries followed by the current history page and
// numbers them for later reference.
func (a *App) List(ctx context.Context) error {
	var (
		active, page []*models.Entry
		filter       models.Filter
		more         bool
	)
	err := a.onLoop(ctx, func() error {
		active = a.journal.Active()
		page = a.journal.Page()
		filter = a.journal.Filter()
		more = a.journal.HasMore()
		return nil
	})
	if err != nil {
		return err
	}

	a.listing = a.listing[:0]
	n := 0
	if len(active) > 0 {
		fmt.Fprintln(a.out, "Active:")
		for _, e := range active {
			n++
			a.listing = append(a.listing, e.ID)
			fmt.Fprintf(a.out, "%3d. %s  since %s  %s\n", n, shortID(e.ID), formatTime(e.CreatedAt), formatTags(e.Tags))
		}
	}

	if filter == "" {
		filter = models.FilterAll
	}
	fmt.Fprintf(a.out, "History (%s):\n", filter)
	if len(page) == 0 {
		fmt.Fprintln(a.out, "  nothing yet")
	}
	for _, e := range page {
		n++
		a.listing = append(a.listing, e.ID)
		mark := " "
		if e.Linked() {
			mark = "☁"
		}
		fmt.Fprintf(a.out, "%3d. %s %s %-9s %s  %s\n", n, shortID(e.ID), mark, e.Status.Title(), formatTime(*e.ResolvedAt), formatTags(e.Tags))
	}
	if more {
		fmt.Fprintln(a.out, "  (more)")
	}
	return nil
}

func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("filter <all|resisted|gave_in|timed_out>")
	}
	f, err := models.ParseFilter(args[0])
	if err != nil {
		return err
	}
	if err := a.onLoop(ctx, func() error { a.journal.SetFilter(f); return nil }); err != nil {
		return err
	}
	return a.List(ctx)
}

func (a *App) More(ctx context.Context) error {
	var loaded bool
	if err := a.onLoop(ctx, func() error { loaded = a.journal.LoadMore(); return nil }); err != nil {
		return err
	}
	if !loaded {
		fmt.Fprintln(a.out, "No more entries")
		return nil
	}
	return a.List(ctx)
}

func (a *App) Label(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("label <emoji> <label>")
	}
	if err := a.labels.SaveLabel(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	a.coord.PreferencesChanged()
	fmt.Fprintf(a.out, "%s %s\n", args[0], a.labels.DisplayLabel(args[0]))
	return nil
}

func (a *App) Unlabel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("unlabel <emoji>")
	}
	if err := a.labels.RemoveOverride(ctx, args[0]); err != nil {
		return err
	}
	a.coord.PreferencesChanged()
	fmt.Fprintf(a.out, "%s %s\n", args[0], a.labels.DisplayLabel(args[0]))
	return nil
}

// Labels prints the built-in catalog followed by overrides for emojis the
// catalog does not know.
func (a *App) Labels(ctx context.Context) error {
	seen := map[string]bool{}
	for _, t := range labels.DefaultCatalog() {
		seen[t.Emoji] = true
		fmt.Fprintf(a.out, "%s %s\n", t.Emoji, a.labels.DisplayLabel(t.Emoji))
	}

	var custom []string
	for emoji := range a.labels.Overrides() {
		if !seen[emoji] {
			custom = append(custom, emoji)
		}
	}
	sort.Strings(custom)
	for _, emoji := range custom {
		fmt.Fprintf(a.out, "%s %s (custom)\n", emoji, a.labels.DisplayLabel(emoji))
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if !a.coord.Online() {
		return cloudsync.ErrOffline
	}
	n, err := a.coord.Poll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Merged %d entries from other devices\n", n)
	return nil
}

func (a *App) ClearLocal(ctx context.Context) error {
	if err := a.coord.ClearLocalHistory(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local history cleared")
	return nil
}

func (a *App) ClearRemote(ctx context.Context) error {
	n, err := a.coord.ClearRemoteHistory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d remote events\n", n)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id, ok := a.store.Identity()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in, running local only")
		return nil
	}
	admin := ""
	if a.coord.CanAdminister() {
		admin = " (admin)"
	}
	fmt.Fprintf(a.out, "%s%s\n", id, admin)
	return nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func formatTags(tags []models.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, strings.TrimSpace(t.Emoji+" "+t.Label))
	}
	return strings.Join(parts, ", ")
}
