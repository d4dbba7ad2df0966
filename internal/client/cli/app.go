package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/urgekeeper/internal/client/client"
	"github.com/dmitrijs2005/urgekeeper/internal/client/cloudsync"
	"github.com/dmitrijs2005/urgekeeper/internal/client/config"
	"github.com/dmitrijs2005/urgekeeper/internal/client/journal"
	"github.com/dmitrijs2005/urgekeeper/internal/client/labels"
	"github.com/dmitrijs2005/urgekeeper/internal/client/owner"
	"github.com/dmitrijs2005/urgekeeper/internal/client/prefs"
	"github.com/dmitrijs2005/urgekeeper/internal/client/syncqueue"
	"github.com/dmitrijs2005/urgekeeper/internal/filex"
	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   *client.Repositories
	prefs   *prefs.Store
	labels  *labels.Resolver
	journal *journal.Repository
	loop    *owner.Loop
	queue   *syncqueue.Executor
	store   *client.RecordStore
	api     *client.GRPCClient
	coord   *cloudsync.Coordinator

	in      io.Reader
	out     io.Writer
	listing []uuid.UUID
}

// NewApp opens the local database and wires the sync stack. An empty
// ServerEndpointAddr leaves the remote store unconfigured.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}
	repos, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	var (
		api     client.RecordAPI
		grpcAPI *client.GRPCClient
	)
	if c.ServerEndpointAddr != "" {
		grpcAPI, err = client.NewGRPCClient(c.ServerEndpointAddr, c.AccessToken)
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("init grpc client: %w", err)
		}
		api = grpcAPI
	}

	a, err := newApp(ctx, c, logger, repos, api)
	if err != nil {
		_ = repos.Close()
		if grpcAPI != nil {
			_ = grpcAPI.Close()
		}
		return nil, err
	}
	a.api = grpcAPI
	return a, nil
}

// newApp wires everything above an open database. api may be nil.
func newApp(ctx context.Context, c *config.Config, logger logging.Logger, repos *client.Repositories, api client.RecordAPI) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	ps := prefs.NewStore(repos.Metadata)

	lr := labels.NewResolver(ps)
	migrated, err := lr.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	if migrated > 0 {
		logger.Info(ctx, "migrated legacy label overrides", "count", migrated)
	}

	j := journal.New(repos.Entries, ps)
	if err := j.Load(ctx); err != nil {
		return nil, err
	}

	deviceID, err := ps.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}

	qcfg, err := syncqueue.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("sync queue config: %w", err)
	}
	qcfg.Retryable = client.IsRetryable
	qcfg.Logger = logger
	qcfg.ErrorHandler = func(err error) {
		logger.Error(context.Background(), "sync job gave up", "error", err)
	}
	queue := syncqueue.NewExecutor(qcfg)

	loop := owner.New(owner.DefaultBuffer, logger)
	store := client.NewRecordStore(api, logger)

	coord := cloudsync.New(store, j, loop, lr, ps, queue, cloudsync.Config{
		PollInterval: c.PollInterval,
		FetchLimit:   c.FetchLimit,
		DeviceID:     deviceID,
		Admin: cloudsync.AdminPolicy{
			AdminBuild: buildinfo.AdminBuild(),
			Identities: c.AdminIdentities,
		},
		Logger: logger,
	})
	j.SetNotifier(coord)

	return &App{
		config:  c,
		logger:  logger,
		repos:   repos,
		prefs:   ps,
		labels:  lr,
		journal: j,
		loop:    loop,
		queue:   queue,
		store:   store,
		coord:   coord,
		in:      os.Stdin,
		out:     os.Stdout,
	}, nil
}

// Run starts the owner loop, connects to the remote store in the background
// and serves the REPL until the user quits or ctx ends. The coordinator is
// stopped before the owner loop so queued pushes can still read entries.
func (a *App) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.loop.Run(loopCtx)
	})

	g.Go(func() error {
		defer stopLoop()

		connectCtx, stopConnect := context.WithCancel(gctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.connect(connectCtx)
		}()

		fmt.Fprintln(a.out, "Welcome to urgekeeper (type 'help' for commands)")
		runREPL(gctx, a, a.status, readLines(gctx, a.in), a.out, isInteractive())

		stopConnect()
		wg.Wait()
		a.coord.Stop()
		return nil
	})

	return g.Wait()
}

// connect resolves the account identity and starts the coordinator. A
// transport failure is retried every OnlineCheckInterval until ctx ends.
func (a *App) connect(ctx context.Context) {
	t := time.NewTicker(a.config.OnlineCheckInterval)
	defer t.Stop()

	for {
		status, err := a.store.Configure(ctx)
		switch {
		case err == nil && status == client.AccountAvailable:
			id, _ := a.store.Identity()
			a.logger.Info(ctx, "signed in", "identity", id)
			a.coord.Start(ctx)
			return
		case err == nil:
			a.logger.Info(ctx, "cloud sync disabled")
			return
		case errors.Is(err, context.Canceled):
			return
		default:
			a.logger.Warn(ctx, "remote store unreachable, will retry", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (a *App) status() string {
	if id, ok := a.store.Identity(); ok {
		return fmt.Sprintf("(%s online)", id)
	}
	return "(local)"
}

// Close releases the database and the gRPC connection.
func (a *App) Close() error {
	var errs []error
	if a.api != nil {
		errs = append(errs, a.api.Close())
	}
	errs = append(errs, a.repos.Close())
	return errors.Join(errs...)
}
