package service

import (
	"context"

	"blog_api/internal/domain/model"
)

// PostListCache holds the public list of published posts.
// Implementations must treat a miss and a failure alike from the caller's view:
// the service falls back to the repository either way.
//
// GetPublished also returns the current generation, which Invalidate bumps.
// SetPublished only stores the list if the generation is still the one read
// before the repository query, so a fill racing a mutation is dropped.
type PostListCache interface {
	GetPublished(ctx context.Context) (posts []model.Post, gen int64, ok bool, err error)
	SetPublished(ctx context.Context, gen int64, posts []model.Post) error
	Invalidate(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) GetPublished(context.Context) ([]model.Post, int64, bool, error) {
	return nil, 0, false, nil
}
func (noopCache) SetPublished(context.Context, int64, []model.Post) error { return nil }
func (noopCache) Invalidate(context.Context) error                        { return nil }

func resolveCache(c PostListCache) PostListCache {
	if c == nil {
		return noopCache{}
	}
	return c
}
