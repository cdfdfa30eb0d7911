package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
)

// mockPostRepository はテスト用のPostRepositoryモック実装です。
type mockPostRepository struct {
	listFn       func(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error)
	countFn      func(ctx context.Context, keyword string) (int64, error)
	findByIDFn   func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error)
	createFn     func(ctx context.Context, post *entity.Post) error
	updateFn     func(ctx context.Context, id uint, fields map[string]any) error
	softDeleteFn func(ctx context.Context, id uint) error
	restoreFn    func(ctx context.Context, id uint) error
	hardDeleteFn func(ctx context.Context, id uint) error
}

func (m *mockPostRepository) List(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, keyword, offset, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) Count(ctx context.Context, keyword string) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, keyword)
	}
	return 0, nil
}

func (m *mockPostRepository) FindByID(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id, includeDeleted)
	}
	return nil, nil
}

func (m *mockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil
}

func (m *mockPostRepository) SoftDelete(ctx context.Context, id uint) error {
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) Restore(ctx context.Context, id uint) error {
	if m.restoreFn != nil {
		return m.restoreFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) HardDelete(ctx context.Context, id uint) error {
	if m.hardDeleteFn != nil {
		return m.hardDeleteFn(ctx, id)
	}
	return nil
}

// expectListInvalidation は一覧系キャッシュのSCAN削除を期待値として登録します。
func expectListInvalidation(mock redismock.ClientMock) {
	mock.ExpectScan(0, "posts:list:*", 200).SetVal([]string{"posts:list::0:10"}, 0)
	mock.ExpectDel("posts:list::0:10").SetVal(1)
	mock.ExpectScan(0, "posts:count:*", 200).SetVal([]string{}, 0)
}

// TestNewCachingPostRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingPostRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "posts",
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "posts",
		},
		{
			name:              "custom values",
			ttl:               30 * time.Second,
			namespace:         "blog",
			expectedTTL:       30 * time.Second,
			expectedNamespace: "blog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingPostRepository(nil, tt.ttl, &mockPostRepository{}, tt.namespace)
			if repo.ttl != tt.expectedTTL {
				t.Errorf("ttl = %v, want %v", repo.ttl, tt.expectedTTL)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("namespace = %q, want %q", repo.namespace, tt.expectedNamespace)
			}
		})
	}
}

// TestCachingPostRepository_FindByID_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingPostRepository_FindByID_NilRedis(t *testing.T) {
	t.Parallel()

	called := false
	inner := &mockPostRepository{
		findByIDFn: func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
			called = true
			return &entity.Post{ID: id, Title: "hello"}, nil
		},
	}
	repo := NewCachingPostRepository(nil, time.Minute, inner, "")

	got, err := repo.FindByID(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner repository was not called")
	}
	if got.ID != 7 {
		t.Errorf("ID = %d, want 7", got.ID)
	}
}

// TestCachingPostRepository_FindByID_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingPostRepository_FindByID_CacheHit(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	cached, _ := json.Marshal(entity.Post{ID: 7, UserID: 1, Title: "cached", Contents: "body"})
	mock.ExpectGet("posts:7").SetVal(string(cached))

	inner := &mockPostRepository{
		findByIDFn: func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
			t.Error("inner repository should not be called on cache hit")
			return nil, nil
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	got, err := repo.FindByID(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "cached" || got.UserID != 1 {
		t.Errorf("got %+v, want cached post", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_FindByID_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingPostRepository_FindByID_CacheMiss(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	post := &entity.Post{ID: 7, UserID: 1, Title: "fresh", Contents: "body"}
	expectedJSON, _ := json.Marshal(post)

	mock.ExpectGet("posts:7").RedisNil()
	mock.ExpectSet("posts:7", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockPostRepository{
		findByIDFn: func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
			return post, nil
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	got, err := repo.FindByID(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "fresh" {
		t.Errorf("Title = %q, want fresh", got.Title)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_FindByID_IncludeDeleted は削除済みを含む取得がキャッシュを使わないことを検証します。
func TestCachingPostRepository_FindByID_IncludeDeleted(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	inner := &mockPostRepository{
		findByIDFn: func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
			if !includeDeleted {
				t.Error("includeDeleted was not passed through")
			}
			return &entity.Post{ID: id}, nil
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	if _, err := repo.FindByID(context.Background(), 7, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_FindByID_InnerError は内部リポジトリのエラーが伝播され、キャッシュされないことを検証します。
func TestCachingPostRepository_FindByID_InnerError(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	mock.ExpectGet("posts:7").RedisNil()

	inner := &mockPostRepository{
		findByIDFn: func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
			return nil, usecase.ErrPostNotFound
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	_, err := repo.FindByID(context.Background(), 7, false)
	if !errors.Is(err, usecase.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_FindByID_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingPostRepository_FindByID_CorruptedCache(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	post := &entity.Post{ID: 7, Title: "fresh"}
	expectedJSON, _ := json.Marshal(post)

	mock.ExpectGet("posts:7").SetVal("invalid json")
	mock.ExpectDel("posts:7").SetVal(1)
	mock.ExpectSet("posts:7", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockPostRepository{
		findByIDFn: func(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
			return post, nil
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	got, err := repo.FindByID(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "fresh" {
		t.Errorf("Title = %q, want fresh", got.Title)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_List_CacheMiss は一覧ページがキーワードとページ位置ごとにキャッシュされることを検証します。
func TestCachingPostRepository_List_CacheMiss(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	posts := []entity.Post{{ID: 2, Title: "b"}, {ID: 1, Title: "a"}}
	expectedJSON, _ := json.Marshal(posts)

	key := "posts:list:" + keywordKey("Go Lang") + ":10:10"
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockPostRepository{
		listFn: func(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error) {
			if keyword != "Go Lang" || offset != 10 || limit != 10 {
				t.Errorf("unexpected args: %q %d %d", keyword, offset, limit)
			}
			return posts, nil
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	got, err := repo.List(context.Background(), "Go Lang", 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_Count_CacheHit は件数がキャッシュから返されることを検証します。
func TestCachingPostRepository_Count_CacheHit(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	mock.ExpectGet("posts:count:" + keywordKey("")).SetVal("42")

	inner := &mockPostRepository{
		countFn: func(ctx context.Context, keyword string) (int64, error) {
			t.Error("inner repository should not be called on cache hit")
			return 0, nil
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	n, err := repo.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_Create_InvalidatesLists は作成後に一覧系キャッシュが無効化されることを検証します。
func TestCachingPostRepository_Create_InvalidatesLists(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	expectListInvalidation(mock)

	repo := NewCachingPostRepository(db, 5*time.Minute, &mockPostRepository{}, "")

	if err := repo.Create(context.Background(), &entity.Post{Title: "new"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_Writes_Invalidate は更新系操作の後に対象ポストと一覧のキャッシュが無効化されることを検証します。
func TestCachingPostRepository_Writes_Invalidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call func(r *CachingPostRepository) error
	}{
		{"update", func(r *CachingPostRepository) error {
			return r.Update(context.Background(), 7, map[string]any{"title": "x"})
		}},
		{"soft delete", func(r *CachingPostRepository) error { return r.SoftDelete(context.Background(), 7) }},
		{"restore", func(r *CachingPostRepository) error { return r.Restore(context.Background(), 7) }},
		{"hard delete", func(r *CachingPostRepository) error { return r.HardDelete(context.Background(), 7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock := redismock.NewClientMock()
			mock.ExpectDel("posts:7").SetVal(1)
			expectListInvalidation(mock)

			repo := NewCachingPostRepository(db, 5*time.Minute, &mockPostRepository{}, "")
			if err := tt.call(repo); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

// TestCachingPostRepository_Writes_InnerError は内部リポジトリの失敗時にキャッシュに触れずエラーを返すことを検証します。
func TestCachingPostRepository_Writes_InnerError(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	inner := &mockPostRepository{
		softDeleteFn: func(ctx context.Context, id uint) error {
			return usecase.ErrPostNotFound
		},
	}
	repo := NewCachingPostRepository(db, 5*time.Minute, inner, "")

	err := repo.SoftDelete(context.Background(), 7)
	if !errors.Is(err, usecase.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestCachingPostRepository_Writes_NilRedis はRedisがnilでも書き込みが成功することを検証します。
func TestCachingPostRepository_Writes_NilRedis(t *testing.T) {
	t.Parallel()

	called := false
	inner := &mockPostRepository{
		updateFn: func(ctx context.Context, id uint, fields map[string]any) error {
			called = true
			return nil
		},
	}
	repo := NewCachingPostRepository(nil, 0, inner, "")

	if err := repo.Update(context.Background(), 7, map[string]any{"title": "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner repository was not called")
	}
}

// TestCachingPostRepository_KeysAreDistinct は異なるキーワードが同じキャッシュキーにならないことを検証します。
func TestCachingPostRepository_KeysAreDistinct(t *testing.T) {
	t.Parallel()

	repo := NewCachingPostRepository(nil, 0, &mockPostRepository{}, "")
	keywords := []string{"", " ", "foo bar", "foo_bar", "foo:bar", "Foo Bar", "a:b", "a*b", "a?b", "[a]"}

	listKeys := map[string]string{}
	countKeys := map[string]string{}
	for _, kw := range keywords {
		lk := repo.listKey(kw, 0, 10)
		if prev, ok := listKeys[lk]; ok {
			t.Errorf("listKey(%q) collides with listKey(%q): %s", kw, prev, lk)
		}
		listKeys[lk] = kw

		ck := repo.countKey(kw)
		if prev, ok := countKeys[ck]; ok {
			t.Errorf("countKey(%q) collides with countKey(%q): %s", kw, prev, ck)
		}
		countKeys[ck] = kw

		if strings.ContainsAny(lk, "*?[] ") || strings.ContainsAny(ck, "*?[] ") {
			t.Errorf("key for %q contains glob or space characters: %s / %s", kw, lk, ck)
		}
	}
}

// TestCachingPostRepository_List_DistinctKeywordMisses は別キーワードのキャッシュ済みページが返されないことを検証します。
func TestCachingPostRepository_List_DistinctKeywordMisses(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	repo := NewCachingPostRepository(db, 5*time.Minute, nil, "")

	spaced := []entity.Post{{ID: 1, Title: "foo bar"}}
	underscored := []entity.Post{{ID: 2, Title: "foo_bar"}}
	spacedJSON, _ := json.Marshal(spaced)
	underscoredJSON, _ := json.Marshal(underscored)

	mock.ExpectGet(repo.listKey("foo bar", 0, 10)).SetVal(string(spacedJSON))
	mock.ExpectGet(repo.listKey("foo_bar", 0, 10)).RedisNil()
	mock.ExpectSet(repo.listKey("foo_bar", 0, 10), underscoredJSON, 5*time.Minute).SetVal("OK")

	called := 0
	repo.inner = &mockPostRepository{
		listFn: func(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error) {
			called++
			if keyword != "foo_bar" {
				t.Errorf("keyword = %q, want foo_bar", keyword)
			}
			return underscored, nil
		},
	}

	if _, err := repo.List(context.Background(), "foo bar", 0, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.List(context.Background(), "foo_bar", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 1 {
		t.Errorf("inner List called %d times, want 1", called)
	}
	if len(got) != 1 || got[0].Title != "foo_bar" {
		t.Errorf("got %+v, want the foo_bar post", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
