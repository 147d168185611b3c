package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-client/internal/api"
	"github.com/nikolayk812/storefront-client/internal/cart"
	"github.com/nikolayk812/storefront-client/internal/config"
	"github.com/nikolayk812/storefront-client/internal/form"
	"github.com/nikolayk812/storefront-client/internal/logging"
	"github.com/nikolayk812/storefront-client/internal/migrations"
	"github.com/nikolayk812/storefront-client/internal/notify"
	"github.com/nikolayk812/storefront-client/internal/page"
	"github.com/nikolayk812/storefront-client/internal/port"
	"github.com/nikolayk812/storefront-client/internal/repository"
	"github.com/nikolayk812/storefront-client/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the wired components for one CLI invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	session   *session.Session
	ledger    *cart.Ledger
	client    *api.Client
	presenter *notify.Presenter
	validator *form.Validator
	page      *page.Page
	term      *terminal

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, store port.Store, in io.Reader, out, errOut io.Writer, assumeYes bool) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logging.New: %w", err)
	}
	a.closers = append(a.closers, func() { _ = a.logger.Sync() })

	if store == nil {
		store, err = a.openStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("openStore: %w", err)
		}
	}

	a.term = newTerminal(in, out, errOut, assumeYes)

	a.session, err = session.New(store, session.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("session.New: %w", err)
	}

	a.ledger, err = cart.NewLedger(store, cart.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("cart.NewLedger: %w", err)
	}

	clientOpts := []api.Option{
		api.WithTokenSource(a.session),
		api.WithLogger(a.logger),
		api.WithTimeout(cfg.RequestTimeout),
	}
	if cfg.CircuitBreaker {
		clientOpts = append(clientOpts, api.WithCircuitBreaker())
	}
	a.client, err = api.New(cfg.APIBaseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("api.New: %w", err)
	}

	a.presenter = notify.New(a.term, notify.WithLogger(a.logger))
	a.closers = append(a.closers, a.presenter.Close)

	a.validator = form.New(a.term)

	a.page, err = page.New(a.session, a.ledger, a.client, a.presenter, page.Hooks{
		Counter:   a.term,
		Nav:       a.term,
		Navigator: a.term,
		Confirmer: a.term,
	}, page.WithLogger(a.logger), page.WithRefreshInterval(cfg.CounterRefresh))
	if err != nil {
		return nil, fmt.Errorf("page.New: %w", err)
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) (port.Store, error) {
	switch a.cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
		})
		a.closers = append(a.closers, func() { _ = client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("client.Ping: %w", err)
		}
		return repository.NewRedis(client, a.cfg.StoreNamespace)

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := migrations.Up(ctx, pool); err != nil {
			return nil, fmt.Errorf("migrations.Up: %w", err)
		}
		return repository.NewPostgres(pool, a.cfg.StoreNamespace)

	default:
		a.logger.Warn("memory store selected, session and cart are lost on exit")
		return repository.NewMemory(), nil
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
