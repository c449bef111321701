package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"blog_api/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const (
	publishedPostsKey = "blog:posts:published"
	generationKey     = "blog:posts:gen"
)

var errStaleGeneration = errors.New("post list generation moved")

func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return rdb, nil
}

// PostListCache keeps the published post list as one JSON value next to a
// generation counter. Invalidate bumps the counter, and a fill is only
// written while the counter still holds the value read before the query.
type PostListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPostListCache(rdb *redis.Client, ttl time.Duration) *PostListCache {
	return &PostListCache{rdb: rdb, ttl: ttl}
}

func (c *PostListCache) GetPublished(ctx context.Context) ([]model.Post, int64, bool, error) {
	vals, err := c.rdb.MGet(ctx, publishedPostsKey, generationKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis mget: %w", err)
	}
	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	var posts []model.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		return nil, gen, false, fmt.Errorf("decode cached posts: %w", err)
	}
	return posts, gen, true, nil
}

func (c *PostListCache) SetPublished(ctx context.Context, gen int64, posts []model.Post) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		cur, err := parseGeneration(current)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, publishedPostsKey, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	}
	return fmt.Errorf("redis set: %w", err)
}

func (c *PostListCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, publishedPostsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func parseGeneration(v interface{}) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		if g == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad post list generation %q: %w", g, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("unexpected post list generation %T", v)
}
