// Package stranalyzer is an embeddable client for the string analysis store:
// analyze and persist strings in Redis or Valkey, then list them by explicit filters
// or by a natural-language query.
package stranalyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	dbRedis "github.com/kailas-cloud/stranalyzer/internal/db/redis"
	dbValkey "github.com/kailas-cloud/stranalyzer/internal/db/valkey"
	entryrepo "github.com/kailas-cloud/stranalyzer/internal/repository/entry"
	entryuc "github.com/kailas-cloud/stranalyzer/internal/usecase/entry"
	healthuc "github.com/kailas-cloud/stranalyzer/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the stranalyzer SDK entry point. It is safe for concurrent use.
type Client struct {
	store  db.Store
	repo   *entryrepo.Repo
	svc    *entryuc.Service
	health *healthuc.Service
	obs    *observer
}

// New connects to the database, waits for it and ensures the search index exists.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.registerer)
	if err != nil {
		return nil, err
	}

	store := cfg.store
	if store == nil {
		if len(cfg.addrs) == 0 {
			return nil, errors.New("stranalyzer: database address required (use WithRedis or WithValkey)")
		}
		if store, err = createStore(cfg); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("stranalyzer: database not ready: %w", err)
	}

	c := wireClient(store, cfg, obs)
	if err := c.repo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("stranalyzer: ensure index: %w", err)
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("stranalyzer: create valkey store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("stranalyzer: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("stranalyzer: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := entryrepo.New(store, cfg.keyPrefix)
	return &Client{
		store:  store,
		repo:   repo,
		svc:    entryuc.New(repo).WithPagination(cfg.defaultPageSize, cfg.maxPageSize),
		health: healthuc.New(store, repo),
		obs:    obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opPing, start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Analyze computes the properties of value and stores it.
// Storing a value that is already present fails with ErrAlreadyExists.
func (c *Client) Analyze(ctx context.Context, value string) (_ Entry, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opAnalyze, start, err) }()

	e, err := c.svc.Create(ctx, value)
	if err != nil {
		return Entry{}, err
	}
	return entryFromDomain(&e), nil
}

// Get returns the stored entry for value.
func (c *Client) Get(ctx context.Context, value string) (_ Entry, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opGet, start, err) }()

	e, err := c.svc.Get(ctx, value)
	if err != nil {
		return Entry{}, err
	}
	return entryFromDomain(&e), nil
}

// Delete removes the stored entry for value.
func (c *Client) Delete(ctx context.Context, value string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opDelete, start, err) }()

	return c.svc.Delete(ctx, value)
}

// List returns stored strings matching f.
func (c *Client) List(ctx context.Context, f Filters, page Page) (_ *ListResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opList, start, err) }()

	set, err := f.toSet()
	if err != nil {
		return nil, err
	}
	res, err := c.svc.List(ctx, set, entryuc.Page(page))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

// Count returns how many stored strings match f.
func (c *Client) Count(ctx context.Context, f Filters) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opCount, start, err) }()

	set, err := f.toSet()
	if err != nil {
		return 0, err
	}
	return c.svc.Count(ctx, set)
}

// Reindex rebuilds the search index over the stored strings. Listings may come back
// partial while the server backfills it.
func (c *Client) Reindex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opReindex, start, err) }()

	return c.repo.Reindex(ctx)
}

// Query lists stored strings matching a natural-language query such as
// "palindromic strings that contain the letter z".
func (c *Client) Query(ctx context.Context, query string, page Page) (_ *QueryResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opQuery, start, err) }()

	res, err := c.svc.Search(ctx, query, entryuc.Page(page))
	if err != nil {
		return nil, err
	}
	return &QueryResult{ListResult: *listResult(res), Query: query}, nil
}

func listResult(res entryuc.Result) *ListResult {
	return &ListResult{
		Entries:    entriesFromDomain(res.Entries),
		Total:      res.Total,
		NextCursor: res.NextCursor,
		Filters:    filtersFromSet(res.Filters),
	}
}
