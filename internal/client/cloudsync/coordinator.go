package cloudsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/client"
	"github.com/dmitrijs2005/urgekeeper/internal/client/journal"
	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/dmitrijs2005/urgekeeper/internal/client/owner"
	"github.com/dmitrijs2005/urgekeeper/internal/client/syncqueue"
	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultFetchLimit   = 200

	preferencesKey = "preferences"
)

var (
	ErrNotPermitted = errors.New("admin operation not permitted")
	ErrOffline      = errors.New("remote store not configured")
)

// RemoteStore is the part of client.RecordStore the coordinator drives.
type RemoteStore interface {
	Identity() (string, bool)
	AppendEvent(ctx context.Context, ev client.Event) error
	UpdateEvent(ctx context.Context, ev client.Event) error
	FetchHistory(ctx context.Context, since *time.Time, limit int) ([]client.Event, error)
	ClearHistory(ctx context.Context) (int, error)
	SavePreferences(ctx context.Context, p client.Preferences) error
	FetchPreferences(ctx context.Context) (client.Preferences, bool, error)
}

// Labels is the label resolver as seen by the coordinator.
type Labels interface {
	TagResolver
	Overrides() map[string]string
	MergeOverrides(ctx context.Context, m map[string]string) (int, error)
}

// Prefs holds the persisted sync cursor and the default tag order.
type Prefs interface {
	SyncCursor(ctx context.Context) (*time.Time, error)
	SetSyncCursor(ctx context.Context, t time.Time) error
	ResetSyncCursor(ctx context.Context) error
	DefaultTagOrder(ctx context.Context) ([]string, error)
	SetDefaultTagOrder(ctx context.Context, order []string) error
}

type Config struct {
	PollInterval time.Duration
	FetchLimit   int
	DeviceID     string
	Admin        AdminPolicy
	Logger       logging.Logger
}

type Coordinator struct {
	remote RemoteStore
	repo   *journal.Repository
	loop   *owner.Loop
	labels Labels
	prefs  Prefs
	queue  *syncqueue.Executor
	cfg    Config
	logger logging.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	started  atomic.Bool
	polling  atomic.Bool
	stopTick chan struct{}

	// mu orders background goroutine starts against Stop.
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func New(remote RemoteStore, repo *journal.Repository, loop *owner.Loop, labels Labels, prefs Prefs, queue *syncqueue.Executor, cfg Config) *Coordinator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		remote:   remote,
		repo:     repo,
		loop:     loop,
		labels:   labels,
		prefs:    prefs,
		queue:    queue,
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "cloudsync"),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		stopTick: make(chan struct{}),
	}
}

// Online reports whether the remote store has an account to sync with.
func (c *Coordinator) Online() bool {
	_, ok := c.remote.Identity()
	return ok
}

// Start reconciles, pulls preferences, polls once and then keeps polling on
// the configured interval. Only the first call has an effect; it reports
// false when the coordinator stays local only.
func (c *Coordinator) Start(ctx context.Context) bool {
	if !c.Online() {
		c.logger.Info(ctx, "sync disabled, no account")
		return false
	}
	if !c.started.CompareAndSwap(false, true) {
		return true
	}

	c.Reconcile(ctx)
	if err := c.PullPreferences(ctx); err != nil {
		c.logger.Warn(ctx, "preferences pull failed", "error", err)
	}
	c.TriggerPoll()

	c.spawn(c.tick)
	return true
}

func (c *Coordinator) tick() {
	t := time.NewTicker(c.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.TriggerPoll()
		case <-c.stopTick:
			return
		case <-c.ctx.Done():
			return
		}
	}
}

// Stop ends polling, lets queued pushes run once and waits for in-flight
// work. It must be called while the owner loop is still running.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	close(c.stopTick)
	c.queue.Stop()
	c.wg.Wait()
	c.cancel()
}

// EntryResolved implements journal.Notifier.
func (c *Coordinator) EntryResolved(e *models.Entry) {
	if !c.Online() {
		return
	}
	c.enqueuePush(e.ID)
	c.TriggerPoll()
}

// HistoryTagsChanged implements journal.Notifier. Entries that were never
// linked are skipped; their pending append carries the latest tags.
func (c *Coordinator) HistoryTagsChanged(e *models.Entry) {
	if !c.Online() {
		return
	}
	if !e.Linked() {
		c.logger.Debug(c.ctx, "tag edit on unlinked entry not synced", "entry", e.ID)
		return
	}
	c.enqueuePush(e.ID)
}

// PreferencesChanged schedules a push of the preferences document.
func (c *Coordinator) PreferencesChanged() {
	if !c.Online() {
		return
	}
	err := c.queue.Submit(c.ctx, preferencesKey, syncqueue.JobFunc(c.PushPreferences))
	if err != nil {
		c.logger.Warn(c.ctx, "preferences push not queued", "error", err)
	}
}

func (c *Coordinator) enqueuePush(id uuid.UUID) {
	job := syncqueue.JobFunc(func(ctx context.Context) error {
		return c.push(ctx, id)
	})
	if err := c.queue.Submit(c.ctx, id.String(), job); err != nil {
		c.logger.Warn(c.ctx, "push not queued", "entry", id, "error", err)
	}
}

// push sends the current state of one entry.
func (c *Coordinator) push(ctx context.Context, id uuid.UUID) error {
	var (
		e  *models.Entry
		ok bool
	)
	if err := c.loop.Do(ctx, func() { e, ok = c.repo.Get(id) }); err != nil {
		return err
	}
	if !ok || !e.Status.Terminal() {
		return nil
	}

	ev := BuildEvent(e, c.cfg.DeviceID, c.now())

	if e.Linked() {
		err := c.remote.UpdateEvent(ctx, ev)
		pushesTotal.WithLabelValues("update", result(err)).Inc()
		return err
	}

	err := c.remote.AppendEvent(ctx, ev)
	pushesTotal.WithLabelValues("append", result(err)).Inc()
	if err != nil {
		return err
	}

	var linkErr error
	if err := c.loop.Do(ctx, func() { linkErr = c.repo.Link(ctx, id, ev.ID) }); err != nil {
		return err
	}
	if linkErr != nil && !errors.Is(linkErr, journal.ErrNotFound) {
		c.logger.Error(ctx, "link failed", "entry", id, "error", linkErr)
	}

	c.TriggerPoll()
	return nil
}

// Reconcile queues every resolved entry that never reached the remote store.
func (c *Coordinator) Reconcile(ctx context.Context) int {
	var pending []*models.Entry
	if err := c.loop.Do(ctx, func() { pending = c.repo.UnlinkedResolved() }); err != nil {
		c.logger.Warn(ctx, "reconcile skipped", "error", err)
		return 0
	}
	for _, e := range pending {
		c.enqueuePush(e.ID)
	}
	if len(pending) > 0 {
		c.logger.Info(ctx, "re-queued unsynced entries", "count", len(pending))
	}
	return len(pending)
}

// TriggerPoll starts a poll in the background unless one is running.
func (c *Coordinator) TriggerPoll() {
	if !c.Online() {
		return
	}
	c.spawn(func() {
		if _, err := c.Poll(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn(c.ctx, "poll failed", "error", err)
		}
	})
}

// spawn runs fn in a goroutine Stop waits for. After Stop it does nothing
// and reports false.
func (c *Coordinator) spawn(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
	return true
}

// Poll fetches events newer than the cursor and merges the unknown ones. It
// returns the number of entries added; a concurrent call returns 0 at once.
func (c *Coordinator) Poll(ctx context.Context) (int, error) {
	if !c.polling.CompareAndSwap(false, true) {
		c.logger.Debug(ctx, "poll already in flight")
		return 0, nil
	}
	defer c.polling.Store(false)

	added, err := c.poll(ctx)
	pollsTotal.WithLabelValues(result(err)).Inc()
	return added, err
}

func (c *Coordinator) poll(ctx context.Context) (int, error) {
	cursor, err := c.prefs.SyncCursor(ctx)
	if err != nil {
		return 0, err
	}

	events, err := c.remote.FetchHistory(ctx, cursor, c.cfg.FetchLimit)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	newest := events[0].OccurredAt
	for _, ev := range events[1:] {
		if ev.OccurredAt.After(newest) {
			newest = ev.OccurredAt
		}
	}

	var (
		added    int
		mergeErr error
	)
	err = c.loop.Do(ctx, func() {
		fresh := make([]*models.Entry, 0, len(events))
		for _, ev := range events {
			if c.repo.Knows(ev.ID) {
				continue
			}
			fresh = append(fresh, EventToEntry(ev, c.labels))
		}
		added, mergeErr = c.repo.MergeRemote(ctx, fresh)
		if mergeErr != nil {
			return
		}

		// re-read: an admin reset may have happened while fetching
		current, err := c.prefs.SyncCursor(ctx)
		if err != nil {
			mergeErr = err
			return
		}
		if current == nil || newest.After(*current) {
			mergeErr = c.prefs.SetSyncCursor(ctx, newest)
		}
	})
	if err != nil {
		return 0, err
	}

	mergedTotal.Add(float64(added))
	if added > 0 {
		c.logger.Info(ctx, "merged remote events", "added", added, "fetched", len(events))
	}
	return added, mergeErr
}

// PushPreferences uploads the label overrides and default tag order.
func (c *Coordinator) PushPreferences(ctx context.Context) error {
	if !c.Online() {
		return ErrOffline
	}
	order, err := c.prefs.DefaultTagOrder(ctx)
	if err != nil {
		return err
	}
	return c.remote.SavePreferences(ctx, client.Preferences{
		LabelOverrides:  c.labels.Overrides(),
		DefaultTagOrder: order,
		UpdatedAt:       c.now(),
		DeviceID:        c.cfg.DeviceID,
	})
}

// PullPreferences merges remote label overrides into the local table without
// replacing local ones and adopts the remote default tag order when none is
// set locally.
func (c *Coordinator) PullPreferences(ctx context.Context) error {
	if !c.Online() {
		return ErrOffline
	}
	p, found, err := c.remote.FetchPreferences(ctx)
	if err != nil || !found {
		return err
	}

	var added int
	var applyErr error
	err = c.loop.Do(ctx, func() {
		added, applyErr = c.labels.MergeOverrides(ctx, p.LabelOverrides)
		if applyErr != nil || len(p.DefaultTagOrder) == 0 {
			return
		}
		local, err := c.prefs.DefaultTagOrder(ctx)
		if err != nil {
			applyErr = err
			return
		}
		if len(local) == 0 {
			applyErr = c.prefs.SetDefaultTagOrder(ctx, p.DefaultTagOrder)
		}
	})
	if err != nil {
		return err
	}
	if added > 0 {
		c.logger.Info(ctx, "merged remote label overrides", "added", added)
	}
	return applyErr
}

// CanAdminister evaluates the admin policy for the current account.
func (c *Coordinator) CanAdminister() bool {
	id, _ := c.remote.Identity()
	return CanAdminister(id, c.cfg.Admin)
}

// ClearLocalHistory drops every resolved entry on this device only.
func (c *Coordinator) ClearLocalHistory(ctx context.Context) error {
	if !c.CanAdminister() {
		return ErrNotPermitted
	}
	var clearErr error
	if err := c.loop.Do(ctx, func() { clearErr = c.repo.ClearHistory(ctx) }); err != nil {
		return err
	}
	return clearErr
}

// ClearRemoteHistory deletes every remote event of the current account and
// resets the cursor so a later poll can absorb whatever remains.
func (c *Coordinator) ClearRemoteHistory(ctx context.Context) (int, error) {
	if !c.CanAdminister() {
		return 0, ErrNotPermitted
	}
	if !c.Online() {
		return 0, ErrOffline
	}

	n, err := c.remote.ClearHistory(ctx)
	if err != nil {
		return n, err
	}

	var resetErr error
	if err := c.loop.Do(ctx, func() { resetErr = c.prefs.ResetSyncCursor(ctx) }); err != nil {
		return n, err
	}
	c.logger.Info(ctx, "remote history cleared", "deleted", n)
	return n, resetErr
}
