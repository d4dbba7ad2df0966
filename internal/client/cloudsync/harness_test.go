package cloudsync

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/client/client"
	"github.com/dmitrijs2005/urgekeeper/internal/client/client/recordtest"
	"github.com/dmitrijs2005/urgekeeper/internal/client/journal"
	"github.com/dmitrijs2005/urgekeeper/internal/client/labels"
	"github.com/dmitrijs2005/urgekeeper/internal/client/models"
	"github.com/dmitrijs2005/urgekeeper/internal/client/owner"
	"github.com/dmitrijs2005/urgekeeper/internal/client/prefs"
	"github.com/dmitrijs2005/urgekeeper/internal/client/syncqueue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api    *recordtest.Client
	store  *client.RecordStore
	repo   *journal.Repository
	loop   *owner.Loop
	labels *labels.Resolver
	prefs  *prefs.Store
	queue  *syncqueue.Executor
	coord  *Coordinator
}

type harnessOpts struct {
	wrap  func(RemoteStore) RemoteStore
	admin AdminPolicy
}

func newHarness(t *testing.T, b *recordtest.Backend, account string, opts ...func(*harnessOpts)) *harness {
	t.Helper()
	o := harnessOpts{}
	for _, fn := range opts {
		fn(&o)
	}
	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	h := &harness{api: b.Client(account)}
	h.store = client.NewRecordStore(h.api, nil)
	_, err = h.store.Configure(ctx)
	require.NoError(t, err)

	h.prefs = prefs.NewStore(repos.Metadata)
	h.labels = labels.NewResolver(h.prefs)
	h.repo = journal.New(repos.Entries, h.prefs)

	h.loop = owner.New(16, nil)
	loopCtx, cancel := context.WithCancel(ctx)
	go func() { _ = h.loop.Run(loopCtx) }()
	t.Cleanup(cancel)

	h.queue = syncqueue.NewExecutor(syncqueue.Config{
		Shards:      2,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxInterval: 5 * time.Millisecond,
		Retryable:   client.IsRetryable,
	})

	var remote RemoteStore = h.store
	if o.wrap != nil {
		remote = o.wrap(remote)
	}
	h.coord = New(remote, h.repo, h.loop, h.labels, h.prefs, h.queue, Config{
		PollInterval: time.Hour,
		DeviceID:     "device-" + account,
		Admin:        o.admin,
	})
	h.repo.SetNotifier(h.coord)
	t.Cleanup(h.coord.Stop)
	return h
}

func (h *harness) do(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, h.loop.Do(context.Background(), fn))
}

// resolve creates an active entry with tags and resolves it as resisted.
func (h *harness) resolve(t *testing.T, tags ...models.Tag) *models.Entry {
	t.Helper()
	ctx := context.Background()
	var (
		e   *models.Entry
		err error
	)
	h.do(t, func() {
		e, err = h.repo.CreateActive(ctx)
		if err != nil {
			return
		}
		for _, tag := range tags {
			if _, err = h.repo.ToggleTag(ctx, e.ID, tag); err != nil {
				return
			}
		}
		e, err = h.repo.Resolve(ctx, e.ID, models.StatusResisted, e.CreatedAt.Add(5*time.Minute))
	})
	require.NoError(t, err)
	return e
}

func (h *harness) get(t *testing.T, id uuid.UUID) *models.Entry {
	t.Helper()
	var (
		e  *models.Entry
		ok bool
	)
	h.do(t, func() { e, ok = h.repo.Get(id) })
	require.True(t, ok)
	return e
}

func (h *harness) history(t *testing.T) []*models.Entry {
	t.Helper()
	var out []*models.Entry
	h.do(t, func() { out = h.repo.History() })
	return out
}

func (h *harness) waitLinked(t *testing.T, id uuid.UUID) *models.Entry {
	t.Helper()
	var e *models.Entry
	require.Eventually(t, func() bool {
		e = h.get(t, id)
		return e.Linked()
	}, 2*time.Second, 5*time.Millisecond)
	return e
}

// quiesce waits for the push of id and every poll it triggered.
func (h *harness) quiesce(t *testing.T, id uuid.UUID) {
	t.Helper()
	require.NoError(t, h.queue.Barrier(context.Background(), id.String()))
	h.coord.wg.Wait()
}
