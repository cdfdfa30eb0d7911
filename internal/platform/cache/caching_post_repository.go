// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
)

// CachingPostRepository decorates a PostRepository with Redis caching.
// Alive single-post reads and list pages are cached; every write invalidates
// the affected post and all cached listings.
type CachingPostRepository struct {
	inner     usecase.PostRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.PostRepository = (*CachingPostRepository)(nil)

// NewCachingPostRepository decorates a PostRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "posts".
func NewCachingPostRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PostRepository, namespace string) *CachingPostRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "posts"
	}
	return &CachingPostRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindByID checks the cache first for alive reads. Include-deleted reads always hit the database.
func (c *CachingPostRepository) FindByID(ctx context.Context, id uint, includeDeleted bool) (*entity.Post, error) {
	if c.rdb == nil || includeDeleted {
		return c.inner.FindByID(ctx, id, includeDeleted)
	}

	key := c.postKey(id)
	var cached entity.Post
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	post, err := c.inner.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, post)
	return post, nil
}

// List returns a cached page when available.
func (c *CachingPostRepository) List(ctx context.Context, keyword string, offset, limit int) ([]entity.Post, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, keyword, offset, limit)
	}

	key := c.listKey(keyword, offset, limit)
	var cached []entity.Post
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.List(ctx, keyword, offset, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// Count returns a cached count when available.
func (c *CachingPostRepository) Count(ctx context.Context, keyword string) (int64, error) {
	if c.rdb == nil {
		return c.inner.Count(ctx, keyword)
	}

	key := c.countKey(keyword)
	var cached int64
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	n, err := c.inner.Count(ctx, keyword)
	if err != nil {
		return 0, err
	}
	c.store(ctx, key, n)
	return n, nil
}

// Create inserts the post and drops cached listings.
func (c *CachingPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if err := c.inner.Create(ctx, post); err != nil {
		return err
	}
	c.invalidateLists(ctx)
	return nil
}

func (c *CachingPostRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if err := c.inner.Update(ctx, id, fields); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingPostRepository) SoftDelete(ctx context.Context, id uint) error {
	if err := c.inner.SoftDelete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingPostRepository) Restore(ctx context.Context, id uint) error {
	if err := c.inner.Restore(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingPostRepository) HardDelete(ctx context.Context, id uint) error {
	if err := c.inner.HardDelete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// load reads key into dst. Corrupted entries are deleted.
func (c *CachingPostRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store writes v under key (best effort).
func (c *CachingPostRepository) store(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// invalidate drops the cached post and every cached listing.
func (c *CachingPostRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.postKey(id)).Err()
	c.invalidateLists(ctx)
}

func (c *CachingPostRepository) invalidateLists(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	// Best effort: don't fail the write if cache deletion fails
	_ = c.deleteByPattern(ctx, c.namespace+":list:*")
	_ = c.deleteByPattern(ctx, c.namespace+":count:*")
}

func (c *CachingPostRepository) postKey(id uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, id)
}

func (c *CachingPostRepository) listKey(keyword string, offset, limit int) string {
	return fmt.Sprintf("%s:list:%s:%d:%d", c.namespace, keywordKey(keyword), offset, limit)
}

func (c *CachingPostRepository) countKey(keyword string) string {
	return fmt.Sprintf("%s:count:%s", c.namespace, keywordKey(keyword))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPostRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// keywordKey encodes a search keyword for use in a cache key. Distinct keywords
// yield distinct keys and the result never contains glob characters.
func keywordKey(keyword string) string {
	sum := sha256.Sum256([]byte(keyword))
	return hex.EncodeToString(sum[:])
}
