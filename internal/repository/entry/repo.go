package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	"github.com/kailas-cloud/stranalyzer/internal/domain"
	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
	"github.com/kailas-cloud/stranalyzer/internal/logger"
)

// store is the consumer interface for stored strings (ISP).
type store interface {
	HSetNX(ctx context.Context, key string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DropIndex(ctx context.Context, name string) error
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, q *db.ListQuery) (int, error)
}

// Repo implements usecase/entry.Repository on top of hashes and an FT index.
type Repo struct {
	store  store
	prefix string
}

// New creates an entry repository. An empty prefix falls back to domain.DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the search index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(name, r.keyPrefix())
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil // created concurrently by another instance
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Reindex drops the search index, if any, and builds it again over the stored hashes.
func (r *Repo) Reindex(ctx context.Context) error {
	name := r.indexName()
	if err := r.store.DropIndex(ctx, name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return r.EnsureIndex(ctx)
}

// Create stores a new entry. Fails with domain.ErrAlreadyExists when the id is taken.
func (r *Repo) Create(ctx context.Context, e *domentry.Entry) error {
	key := r.key(e.ID())
	created, err := r.store.HSetNX(ctx, key, buildHashFields(e))
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if !created {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Get returns an entry by id.
func (r *Repo) Get(ctx context.Context, id string) (domentry.Entry, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domentry.Entry{}, domain.ErrNotFound
		}
		return domentry.Entry{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	e, err := parseHashFields(id, m)
	if err != nil {
		return domentry.Entry{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, nil
}

// Delete removes an entry by id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	deleted, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

// List returns one page of entries matching expr, oldest first, and the total match count.
// Hashes that fail to decode are dropped from the page and logged; the total still counts them.
func (r *Repo) List(ctx context.Context, expr filter.Expression, offset, limit int) ([]domentry.Entry, int, error) {
	storeExpr, err := StoreExpression(expr)
	if err != nil {
		return nil, 0, err
	}

	result, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.indexName(),
		Filters:      storeExpr,
		Offset:       offset,
		Limit:        limit,
		SortBy:       fieldCreatedAt,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search list: %w", err)
	}
	if result == nil {
		return nil, 0, nil
	}

	entries := make([]domentry.Entry, 0, len(result.Entries))
	for _, hit := range result.Entries {
		e, err := parseHashFields(r.idFromKey(hit.Key), hit.Fields)
		if err != nil {
			// half-written or foreign hash under our prefix
			logger.FromContext(ctx).Warn("skipping undecodable string hash",
				zap.String("key", hit.Key),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, e)
	}
	return entries, result.Total, nil
}

// Count returns the number of entries matching expr.
func (r *Repo) Count(ctx context.Context, expr filter.Expression) (int, error) {
	storeExpr, err := StoreExpression(expr)
	if err != nil {
		return 0, err
	}
	n, err := r.store.SearchCount(ctx, &db.ListQuery{IndexName: r.indexName(), Filters: storeExpr})
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// IndexReady reports whether the search index exists.
func (r *Repo) IndexReady(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	return ok, nil
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string { return r.indexName() }

func (r *Repo) keyPrefix() string {
	return r.prefix + "string:"
}

func (r *Repo) key(id string) string {
	return r.keyPrefix() + id
}

func (r *Repo) indexName() string {
	return r.keyPrefix() + "idx"
}

func (r *Repo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix())
}
