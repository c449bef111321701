package service

import (
	"context"
	"errors"
	"fmt"

	"blog_api/internal/app/policy"
	"blog_api/internal/app/validation"
	"blog_api/internal/common"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/repository"
)

// CommentService serves the direct /comment routes. Reads are public,
// changes are limited to the comment's author and admins.
type CommentService struct {
	commentRepo repository.CommentRepository
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

func (s *CommentService) ListComments(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.commentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments by author: %w", err)
	}
	return comments, nil
}

func (s *CommentService) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	return findComment(ctx, s.commentRepo, id)
}

func (s *CommentService) UpdateComment(ctx context.Context, caller model.Identity, id int64, req CommentRequest) (*model.Comment, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	comment, err := findComment(ctx, s.commentRepo, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(policy.IsAdminOrResourceOwner(caller, comment.AuthorID)); err != nil {
		return nil, err
	}
	return updateComment(ctx, s.commentRepo, comment, req.Text)
}

func (s *CommentService) DeleteComment(ctx context.Context, caller model.Identity, id int64) error {
	comment, err := findComment(ctx, s.commentRepo, id)
	if err != nil {
		return err
	}
	if err := policy.Require(policy.IsAdminOrResourceOwner(caller, comment.AuthorID)); err != nil {
		return err
	}
	return deleteComment(ctx, s.commentRepo, id)
}

func findComment(ctx context.Context, repo repository.CommentRepository, id int64) (*model.Comment, error) {
	comment, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Comment", id)
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

func updateComment(ctx context.Context, repo repository.CommentRepository, comment *model.Comment, text string) (*model.Comment, error) {
	updated := *comment
	updated.Text = text
	updated.Author, updated.Post = nil, nil
	if err := repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("Comment", comment.ID)
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return &updated, nil
}

func deleteComment(ctx context.Context, repo repository.CommentRepository, id int64) error {
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NotFound("Comment", id)
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
