package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	// List and ListByAuthor attach the post title and author name.
	List(ctx context.Context) ([]model.Comment, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
}

type pgCommentRepository struct {
	db *sql.DB
}

func NewPgCommentRepository(db *sql.DB) CommentRepository {
	return &pgCommentRepository{db: db}
}

const commentListQuery = `
        SELECT c.id, c.text, c.post_id, c.author_id, c.created_at, c.updated_at, p.title, u.name
        FROM comments c
        JOIN posts p ON c.post_id = p.id
        JOIN users u ON c.author_id = u.id`

func (r *pgCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `INSERT INTO comments (text, post_id, author_id)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, c.Text, c.PostID, c.AuthorID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCommentRepository) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	query := `SELECT id, text, post_id, author_id, created_at, updated_at FROM comments WHERE id = $1`
	c := &model.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCommentRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgCommentRepository) List(ctx context.Context) ([]model.Comment, error) {
	return r.list(ctx, "List", commentListQuery+` ORDER BY c.updated_at DESC`)
}

func (r *pgCommentRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error) {
	return r.list(ctx, "ListByAuthor", commentListQuery+` WHERE c.author_id = $1 ORDER BY c.updated_at DESC`, authorID)
}

func (r *pgCommentRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgCommentRepository.%s query: %w", op, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var title, name string
		if err := rows.Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt, &title, &name); err != nil {
			return nil, fmt.Errorf("pgCommentRepository.%s scan: %w", op, err)
		}
		c.Post = &model.PostRef{ID: c.PostID, Title: title}
		c.Author = &model.AuthorRef{Name: name}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCommentRepository.%s rows.Err: %w", op, err)
	}
	return comments, nil
}

func (r *pgCommentRepository) Update(ctx context.Context, c *model.Comment) error {
	query := `UPDATE comments SET text = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, c.Text, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgCommentRepository.Update: %w", err)
	}
	return nil
}

func (r *pgCommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgCommentRepository.Delete")
}
