package storage

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskly-api/domain"
)

const (
	generationKey = "taskly:cache:gen"
	keyPrefix     = "taskly:"
)

// Cache wraps a store with Redis-backed caching of the board list and board
// trees. Every successful write bumps a generation counter that is part of
// each cache key, so stale entries are never read again and expire by TTL.
// When the bump fails, reads bypass the cache until a retry succeeds.
type Cache struct {
	domain.Store
	redis   *redis.Client
	ttl     time.Duration
	pending atomic.Bool
}

var _ domain.Store = (*Cache)(nil)

// NewCache creates a caching wrapper using the provided Redis client and TTL.
// A nil client or a zero TTL disables caching.
func NewCache(base domain.Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

func (c *Cache) enabled() bool { return c.redis != nil && c.ttl > 0 }

func (c *Cache) ListBoards(ctx context.Context) ([]domain.Board, error) {
	key, ok := c.key(ctx, "boards")
	if ok {
		var boards []domain.Board
		if c.load(ctx, key, &boards) {
			return boards, nil
		}
	}
	boards, err := c.Store.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, key, boards)
	}
	return boards, nil
}

func (c *Cache) GetBoardDetail(ctx context.Context, id string) (*domain.BoardDetail, error) {
	key, ok := c.key(ctx, "board:"+id)
	if ok {
		var detail domain.BoardDetail
		if c.load(ctx, key, &detail) {
			return &detail, nil
		}
	}
	detail, err := c.Store.GetBoardDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	// Misses are not cached; a board created later must be visible at once.
	if ok && detail != nil {
		c.store(ctx, key, detail)
	}
	return detail, nil
}

func (c *Cache) InsertBoard(ctx context.Context, b domain.Board) error {
	return c.after(ctx, c.Store.InsertBoard(ctx, b))
}

func (c *Cache) UpdateBoard(ctx context.Context, id string, in domain.UpdateBoardInput, updatedAt time.Time) (*domain.Board, error) {
	b, err := c.Store.UpdateBoard(ctx, id, in, updatedAt)
	return b, c.after(ctx, err)
}

func (c *Cache) DeleteBoard(ctx context.Context, id string) error {
	return c.after(ctx, c.Store.DeleteBoard(ctx, id))
}

func (c *Cache) InsertStatus(ctx context.Context, st domain.BoardStatus) error {
	return c.after(ctx, c.Store.InsertStatus(ctx, st))
}

func (c *Cache) UpdateStatus(ctx context.Context, id string, in domain.UpdateStatusInput, updatedAt time.Time) (*domain.BoardStatus, error) {
	st, err := c.Store.UpdateStatus(ctx, id, in, updatedAt)
	return st, c.after(ctx, err)
}

func (c *Cache) DeleteStatus(ctx context.Context, id string) error {
	return c.after(ctx, c.Store.DeleteStatus(ctx, id))
}

func (c *Cache) InsertTask(ctx context.Context, t domain.Task) error {
	return c.after(ctx, c.Store.InsertTask(ctx, t))
}

func (c *Cache) UpdateTask(ctx context.Context, id string, in domain.UpdateTaskInput, updatedAt time.Time) (*domain.Task, error) {
	t, err := c.Store.UpdateTask(ctx, id, in, updatedAt)
	return t, c.after(ctx, err)
}

func (c *Cache) DeleteTask(ctx context.Context, id string) error {
	return c.after(ctx, c.Store.DeleteTask(ctx, id))
}

func (c *Cache) InsertSubTask(ctx context.Context, st domain.SubTask) error {
	return c.after(ctx, c.Store.InsertSubTask(ctx, st))
}

func (c *Cache) UpdateSubTask(ctx context.Context, id string, in domain.UpdateSubTaskInput, updatedAt time.Time) (*domain.SubTask, error) {
	st, err := c.Store.UpdateSubTask(ctx, id, in, updatedAt)
	return st, c.after(ctx, err)
}

func (c *Cache) DeleteSubTask(ctx context.Context, id string) error {
	return c.after(ctx, c.Store.DeleteSubTask(ctx, id))
}

// Invalidate drops every cached entry by advancing the generation.
func (c *Cache) Invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, generationKey).Err(); err != nil {
		c.pending.Store(true)
		log.WithError(err).Warn("cache invalidation failed")
		return
	}
	c.pending.Store(false)
}

// after invalidates the cache when the wrapped write succeeded.
func (c *Cache) after(ctx context.Context, err error) error {
	if err == nil {
		c.Invalidate(ctx)
	}
	return err
}

func (c *Cache) key(ctx context.Context, suffix string) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	if c.pending.Load() {
		c.Invalidate(ctx)
		if c.pending.Load() {
			return "", false
		}
	}
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		// On redis errors fall back to the backing store without failing.
		log.WithError(err).Warn("cache generation lookup failed")
		return "", false
	}
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + suffix, true
}

func (c *Cache) load(ctx context.Context, key string, dst any) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return false
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
