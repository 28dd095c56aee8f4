package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_ImmediatePing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := NewStoreForTest(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestIsRedisErr(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisError("ERR Index Already Exists")))

	err := c.Do(context.Background(), c.B().Ping().Build()).Error()
	if !IsRedisErr(err, "index already exists") {
		t.Errorf("IsRedisErr should match case-insensitively: %v", err)
	}
	if IsRedisErr(err, "unknown index name") {
		t.Error("IsRedisErr matched unrelated substring")
	}
	if IsRedisErr(context.Canceled, "canceled") {
		t.Error("IsRedisErr must ignore non-server errors")
	}
}

// --- hash.go tests ---

func TestHSetNX_Created(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EVAL", hsetnxScript, "1", "mykey", "length", "5", "value", "hello")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	created, err := s.HSetNX(context.Background(), "mykey", map[string]string{"value": "hello", "length": "5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created")
	}
}

func TestHSetNX_Exists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "EVAL"
		})).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	created, err := s.HSetNX(context.Background(), "mykey", map[string]string{"value": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected not created")
	}
}

func TestHSetNX_NoFields(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if _, err := s.HSetNX(context.Background(), "k", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestHSetNX_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HSetNX(context.Background(), "mykey", map[string]string{"f": "v"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "mykey")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"f1": mock.RedisString("v1"),
			"f2": mock.RedisString("v2"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["f1"] != "v1" || m["f2"] != "v2" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "mykey")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "mykey")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "mykey")
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestHGetAllMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("a"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("b"),
			})),
		})

	s := NewStoreForTest(c)
	results, err := s.HGetAllMulti(context.Background(), []string{"k1", "gone", "k2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0]["f"] != "a" || results[1] != nil || results[2]["f"] != "b" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestHGetAllMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	results, err := s.HGetAllMulti(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

func TestDel(t *testing.T) {
	tests := []struct {
		name  string
		reply int64
		want  bool
	}{
		{"deleted", 1, true},
		{"missing", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("DEL", "mykey")).
				Return(mock.Result(mock.RedisInt64(tc.reply)))

			s := NewStoreForTest(c)
			got, err := s.Del(context.Background(), "mykey")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Del() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScan_MultiPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	first := true
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		DoAndReturn(func(_ context.Context, _ rueidis.Completed) rueidis.RedisResult {
			if first {
				first = false
				return mock.Result(mock.RedisArray(
					mock.RedisInt64(42), // cursor=42 means more
					mock.RedisArray(mock.RedisString("key1")),
				))
			}
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(0), // cursor=0 means done
				mock.RedisArray(mock.RedisString("key2")),
			))
		}).Times(2)

	s := NewStoreForTest(c)
	keys, err := s.Scan(context.Background(), "prefix:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "key1" || keys[1] != "key2" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.CREATE", "s:string:idx", "ON", "HASH", "PREFIX", "1", "s:string:",
			"SCHEMA", "is_palindrome", "TAG", "characters", "TAG", "SEPARATOR", ",", "CASESENSITIVE",
			"length", "NUMERIC",
		)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("s:string:idx").
		Prefix("s:string:").
		Tag("is_palindrome").
		Tag("characters", db.Separator(","), db.CaseSensitive()).
		Numeric("length").
		MustBuild()
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "test:idx",
		Fields: []db.IndexField{{Name: "f", Kind: db.FieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "test:idx",
		Fields: []db.IndexField{{Name: "f", Kind: db.FieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDropIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "test:idx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "test:idx")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("test:idx"))))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewStoreForTest(mock.NewClient(ctrl))

	tests := []struct {
		name string
		def  *db.IndexDefinition
	}{
		{"no name", &db.IndexDefinition{Fields: []db.IndexField{{Name: "f", Kind: db.FieldTag}}}},
		{"no fields", &db.IndexDefinition{Name: "test"}},
		{"unknown kind", &db.IndexDefinition{Name: "test", Fields: []db.IndexField{{Name: "f", Kind: "VECTOR"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.CreateIndex(context.Background(), tc.def)
			if !errors.Is(err, db.ErrInvalidIndex) {
				t.Errorf("expected ErrInvalidIndex, got %v", err)
			}
		})
	}
}

func TestIndexExists_ValkeyNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisError("Index with name 'test:idx' not found")))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "test:idx")
	if err != nil || exists {
		t.Errorf("IndexExists = %v, %v; want false, nil", exists, err)
	}
}

// --- search.go tests ---

func TestSearchList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "idx", "@word_count:[1 1]",
			"SORTBY", "created_at", "ASC",
			"LIMIT", "20", "10", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(32),
			mock.RedisString("string:1"),
			mock.RedisArray(mock.RedisString("value"), mock.RedisString("a")),
			mock.RedisString("string:2"),
			mock.RedisArray(mock.RedisString("value"), mock.RedisString("b")),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), &db.ListQuery{
		IndexName: "idx",
		Filters:   mustExpr(t, mustCond(filter.NewEqual("word_count", 1))),
		Offset:    20,
		Limit:     10,
		SortBy:    "created_at",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 32 {
		t.Fatalf("expected total 32, got %d", result.Total)
	}
	if len(result.Entries) != 2 || result.Entries[1].Fields["value"] != "b" {
		t.Fatalf("unexpected entries: %+v", result.Entries)
	}
}

func TestSearchList_MatchAllWithReturn(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "idx", "*", "RETURN", "1", "value",
			"LIMIT", "0", "5", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), &db.ListQuery{
		IndexName:    "idx",
		Limit:        5,
		ReturnFields: []string{"value"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSearchList_Validation(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	ctx := context.Background()

	if _, err := s.SearchList(ctx, &db.ListQuery{Limit: 1}); err == nil {
		t.Error("expected error for empty index")
	}
	if _, err := s.SearchList(ctx, &db.ListQuery{IndexName: "idx", Offset: -1}); err == nil {
		t.Error("expected error for negative offset")
	}

	exists, err := filter.NewExists(filter.CharacterPath('a'))
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.SearchList(ctx, &db.ListQuery{IndexName: "idx", Limit: 1, Filters: mustExpr(t, exists)})
	if !errors.Is(err, db.ErrUnsupportedFilter) {
		t.Errorf("expected ErrUnsupportedFilter, got %v", err)
	}
}

func TestSearchList_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Syntax error")))

	s := NewStoreForTest(c)
	_, err := s.SearchList(context.Background(), &db.ListQuery{IndexName: "idx", Limit: 1})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestSearchCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "*", "LIMIT", "0", "0", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	count, err := s.SearchCount(context.Background(), &db.ListQuery{IndexName: "idx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

func TestSearchCount_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray()))

	s := NewStoreForTest(c)
	count, err := s.SearchCount(context.Background(), &db.ListQuery{IndexName: "idx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0, got %d", count)
	}
}

// --- Filter building tests ---

func TestRenderQuery_Empty(t *testing.T) {
	got, err := RenderQuery(filter.Expression{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MatchAll {
		t.Errorf("expected %q, got %q", MatchAll, got)
	}
}

func TestBuildFilter(t *testing.T) {
	gte, lte := 3.0, 7.0
	rng, _ := filter.NewRangeFilter(nil, &gte, nil, &lte)
	gt := 5.0
	open, _ := filter.NewRangeFilter(&gt, nil, nil, nil)

	tests := []struct {
		name string
		must []filter.Condition
		want string
	}{
		{
			name: "tag",
			must: []filter.Condition{mustCond(filter.NewMatch("is_palindrome", "true"))},
			want: `@is_palindrome:{true}`,
		},
		{
			name: "equal",
			must: []filter.Condition{mustCond(filter.NewEqual("word_count", 2))},
			want: `@word_count:[2 2]`,
		},
		{
			name: "closed range",
			must: []filter.Condition{mustCond(filter.NewRange("length", rng))},
			want: `@length:[3 7]`,
		},
		{
			name: "exclusive lower bound",
			must: []filter.Condition{mustCond(filter.NewRange("length", open))},
			want: `@length:[(5 +inf]`,
		},
		{
			name: "conjunction",
			must: []filter.Condition{
				mustCond(filter.NewMatch("is_palindrome", "false")),
				mustCond(filter.NewMatch("characters", "u7a")),
				mustCond(filter.NewRange("length", rng)),
			},
			want: `@is_palindrome:{false} @characters:{u7a} @length:[3 7]`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildFilter(filter.NewExpression(tc.must...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("BuildFilter() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildTagFilter_Escaping(t *testing.T) {
	got := buildTagFilter("tag", "a b-c,d")
	if got != `@tag:{a\ b\-c\,d}` {
		t.Errorf("unexpected filter: %q", got)
	}
}

func TestParseListResult_SkipsMalformed(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisInt64(2),
		mock.RedisString("k1"),
		mock.RedisString("not an array"),
		mock.RedisString("k2"),
		mock.RedisArray(mock.RedisString("value"), mock.RedisString("x")),
	}
	res, err := ParseListResult(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Key != "k2" {
		t.Errorf("unexpected entries: %+v", res.Entries)
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

func mustCond(c filter.Condition, err error) filter.Condition {
	if err != nil {
		panic(err)
	}
	return c
}

func mustExpr(t *testing.T, must ...filter.Condition) filter.Expression {
	t.Helper()
	expr := filter.NewExpression(must...)
	if expr.IsEmpty() {
		t.Fatal("expected at least one condition")
	}
	return expr
}
