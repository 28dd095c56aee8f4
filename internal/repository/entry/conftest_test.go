package entry

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetNXFn      func(ctx context.Context, key string, fields map[string]string) (bool, error)
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delFn         func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	dropIndexFn   func(ctx context.Context, name string) error
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, q *db.ListQuery) (int, error)
}

func (m *mockStore) HSetNX(ctx context.Context, key string, fields map[string]string) (bool, error) {
	if m.hsetNXFn != nil {
		return m.hsetNXFn(ctx, key, fields)
	}
	return true, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) SearchCount(ctx context.Context, q *db.ListQuery) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, q)
	}
	return 0, nil
}

func makeEntry(t *testing.T, value string) domentry.Entry {
	t.Helper()
	e, err := domentry.New(value, 0, time.UnixMilli(1700000000123))
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	return e
}
