package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonasv2/sessionkit/core/apiclient"
	"github.com/jonasv2/sessionkit/core/logger"
	"github.com/jonasv2/sessionkit/core/session"
	"github.com/jonasv2/sessionkit/core/tokenstore"
	"github.com/jonasv2/sessionkit/integration/database/pg"
	"github.com/jonasv2/sessionkit/integration/database/redis"
)

// Config aggregates every component's settings. Each field is parsed from
// the environment by config.Load.
type Config struct {
	API      apiclient.Config
	Session  session.Config
	Store    tokenstore.Config
	Redis    redis.Config
	Postgres pg.Config
}

// Kit bundles the wired components.
type Kit struct {
	Store   tokenstore.Store
	Client  *apiclient.Client
	Session *session.Manager

	health  func(context.Context) error
	closers []func() error
}

type options struct {
	log        *slog.Logger
	registerer prometheus.Registerer
	store      tokenstore.Store
	httpClient *http.Client
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger shared by the client, manager and backends.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRegisterer registers client and session metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithStore bypasses Config.Store and uses store as is.
func WithStore(store tokenstore.Store) Option {
	return func(o *options) { o.store = store }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New opens the configured store and builds the client and manager on top of it.
// The returned manager has not been restored yet.
func New(ctx context.Context, cfg Config, opts ...Option) (*Kit, error) {
	o := &options{log: logger.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	kit := &Kit{Store: o.store}
	if kit.Store == nil {
		if err := kit.openStore(ctx, cfg, o.log); err != nil {
			return nil, err
		}
	}

	clientOpts := []apiclient.Option{apiclient.WithLogger(o.log)}
	sessionOpts := []session.Option{session.WithConfig(cfg.Session), session.WithLogger(o.log)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	if o.registerer != nil {
		clientOpts = append(clientOpts, apiclient.WithMetrics(apiclient.NewMetrics(o.registerer)))
		sessionOpts = append(sessionOpts, session.WithMetrics(session.NewMetrics(o.registerer)))
	}

	kit.Client = apiclient.NewFromConfig(cfg.API, kit.Store, clientOpts...)
	kit.Session = session.New(kit.Client, kit.Store, sessionOpts...)
	kit.closers = append(kit.closers, kit.Session.Close)

	o.log.DebugContext(ctx, "Session kit ready",
		logger.Component("sessionkit"),
		slog.String("store", cfg.Store.Driver),
		slog.String("api", kit.Client.BaseURL()),
	)
	return kit, nil
}

func (k *Kit) openStore(ctx context.Context, cfg Config, log *slog.Logger) error {
	switch cfg.Store.Driver {
	case tokenstore.DriverMemory:
		k.Store = tokenstore.NewMemoryStore()

	case tokenstore.DriverFile, "":
		path, err := cfg.Store.Path()
		if err != nil {
			return errors.Join(ErrOpenStore, err)
		}
		key, err := cfg.Store.Key()
		if err != nil {
			return errors.Join(ErrOpenStore, err)
		}
		store, err := tokenstore.NewFileStore(path,
			tokenstore.WithEncryptionKey(key),
			tokenstore.WithNamespace(cfg.Store.Namespace),
		)
		if err != nil {
			return errors.Join(ErrOpenStore, err)
		}
		k.Store = store

	case tokenstore.DriverRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return errors.Join(ErrOpenStore, err)
		}
		k.Store = tokenstore.NewRedisStore(client, cfg.Store.RedisKeyPrefix, cfg.Store.Namespace)
		k.health = redis.Healthcheck(client)
		k.closers = append(k.closers, client.Close)

	case tokenstore.DriverPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return errors.Join(ErrOpenStore, err)
		}
		if err := pg.Migrate(ctx, pool, tokenstore.Migrations(), cfg.Postgres, log); err != nil {
			pool.Close()
			return errors.Join(ErrMigrate, err)
		}
		k.Store = tokenstore.NewPostgresStore(pool, cfg.Store.Namespace)
		k.health = pg.Healthcheck(pool)
		k.closers = append(k.closers, func() error { pool.Close(); return nil })

	default:
		return fmt.Errorf("%w: %w %q", ErrOpenStore, tokenstore.ErrUnknownDriver, cfg.Store.Driver)
	}
	return nil
}

// Healthcheck pings the store backend when it has one.
func (k *Kit) Healthcheck(ctx context.Context) error {
	if k.health == nil {
		return nil
	}
	return k.health(ctx)
}

// Close releases the manager subscriptions and backend connections.
func (k *Kit) Close() error {
	var errs []error
	for i := len(k.closers) - 1; i >= 0; i-- {
		if err := k.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
