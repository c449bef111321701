package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"blog_api/internal/app/policy"
	"blog_api/internal/app/validation"
	"blog_api/internal/common"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/repository"
	"blog_api/internal/platform/logging"

	"github.com/gosimple/slug"
)

// PostService owns posts and the comments reached through a post.
// Post mutation is admin-only regardless of who wrote the post.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	cache       PostListCache
	logger      *slog.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	cache PostListCache,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		cache:       resolveCache(cache),
		logger:      logging.Resolve(logger).With("service", "post"),
	}
}

const errPostTitleExists = "Post with this title already exists"

func (s *PostService) ListPublished(ctx context.Context) ([]model.Post, error) {
	posts, gen, ok, cacheErr := s.cache.GetPublished(ctx)
	if cacheErr != nil {
		s.logger.WarnContext(ctx, "post cache read failed", "error", cacheErr)
	}
	if ok {
		return posts, nil
	}

	posts, err := s.postRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	// Without a generation there is nothing to guard the fill with.
	if cacheErr != nil {
		return posts, nil
	}
	if err := s.cache.SetPublished(ctx, gen, posts); err != nil {
		s.logger.WarnContext(ctx, "post cache write failed", "error", err)
	}
	return posts, nil
}

func (s *PostService) ListAll(ctx context.Context, caller model.Identity) ([]model.Post, error) {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPublished is the anonymous read; unpublished posts are refused.
func (s *PostService) GetPublished(ctx context.Context, id int64) (*model.PostDetail, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, common.Forbidden()
	}
	return post, nil
}

func (s *PostService) GetAny(ctx context.Context, caller model.Identity, id int64) (*model.PostDetail, error) {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return nil, err
	}
	return s.findPost(ctx, id)
}

func (s *PostService) CreatePost(ctx context.Context, caller model.Identity, req PostRequest) (*model.Post, error) {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    req.Title,
		Slug:     slug.Make(req.Title),
		Text:     req.Text,
		ImageURL: req.ImageURL,
		AuthorID: caller.ID,
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, s.mapWriteError(err, 0)
	}
	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "post created", "post_id", post.ID, "published", post.IsPublished)
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, caller model.Identity, id int64, req PostRequest) (*model.Post, error) {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	detail, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post := detail.Post
	post.Title = req.Title
	post.Slug = slug.Make(req.Title)
	post.Text = req.Text
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}
	if req.ImageURL != nil {
		post.ImageURL = req.ImageURL
	}
	if err := s.postRepo.Update(ctx, &post); err != nil {
		return nil, s.mapWriteError(err, id)
	}
	s.invalidate(ctx)
	return &post, nil
}

func (s *PostService) DeletePost(ctx context.Context, caller model.Identity, id int64) error {
	if err := policy.Require(policy.IsAdmin(caller)); err != nil {
		return err
	}
	if _, err := s.findPost(ctx, id); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return s.mapWriteError(err, id)
	}
	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}

// CreateComment lets any authenticated caller comment on an existing post.
func (s *PostService) CreateComment(ctx context.Context, caller model.Identity, postID int64, req CommentRequest) (*model.Comment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}
	comment := &model.Comment{Text: req.Text, PostID: postID, AuthorID: caller.ID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *PostService) UpdateComment(ctx context.Context, caller model.Identity, postID, commentID int64, req CommentRequest) (*model.Comment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	comment, err := s.findPostComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(policy.IsAdminOrResourceOwner(caller, comment.AuthorID)); err != nil {
		return nil, err
	}
	return updateComment(ctx, s.commentRepo, comment, req.Text)
}

func (s *PostService) DeleteComment(ctx context.Context, caller model.Identity, postID, commentID int64) error {
	comment, err := s.findPostComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if err := policy.Require(policy.IsAdminOrResourceOwner(caller, comment.AuthorID)); err != nil {
		return err
	}
	return deleteComment(ctx, s.commentRepo, commentID)
}

// findPostComment resolves a comment through its post so a comment id paired
// with the wrong post is a miss.
func (s *PostService) findPostComment(ctx context.Context, postID, commentID int64) (*model.Comment, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment, ok := post.FindComment(commentID)
	if !ok {
		return nil, common.NotFound("Comment", commentID)
	}
	return comment, nil
}

func (s *PostService) findPost(ctx context.Context, id int64) (*model.PostDetail, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Post", id)
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return post, nil
}

func (s *PostService) mapWriteError(err error, id int64) error {
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		return common.Wrap(common.ErrAlreadyExists, errPostTitleExists)
	case errors.Is(err, common.ErrNotFound):
		return common.NotFound("Post", id)
	}
	return fmt.Errorf("failed to write post: %w", err)
}

func (s *PostService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "post cache invalidation failed", "error", err)
	}
}
