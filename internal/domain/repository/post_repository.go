package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// FindByID returns the post with its author name and comments attached.
	FindByID(ctx context.Context, id int64) (*model.PostDetail, error)
	List(ctx context.Context, publishedOnly bool) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}

type pgPostRepository struct {
	db *sql.DB
}

func NewPgPostRepository(db *sql.DB) PostRepository {
	return &pgPostRepository{db: db}
}

func (r *pgPostRepository) Create(ctx context.Context, p *model.Post) error {
	query := `INSERT INTO posts (title, slug, text, is_published, image_url, author_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Title, p.Slug, p.Text, p.IsPublished, p.ImageURL, p.AuthorID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("post with this title already exists: %w", common.ErrAlreadyExists)
		}
		return fmt.Errorf("pgPostRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPostRepository) FindByID(ctx context.Context, id int64) (*model.PostDetail, error) {
	query := `
        SELECT p.id, p.title, p.slug, p.text, p.is_published, p.image_url, p.author_id,
               p.created_at, p.updated_at, u.name
        FROM posts p
        JOIN users u ON p.author_id = u.id
        WHERE p.id = $1`

	detail := &model.PostDetail{}
	p := &detail.Post
	var authorName string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Text, &p.IsPublished, &p.ImageURL, &p.AuthorID,
		&p.CreatedAt, &p.UpdatedAt, &authorName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPostRepository.FindByID: %w", err)
	}
	p.Author = &model.AuthorRef{Name: authorName}

	commentsQuery := `
        SELECT c.id, c.text, c.post_id, c.author_id, c.created_at, c.updated_at, u.name
        FROM comments c
        JOIN users u ON c.author_id = u.id
        WHERE c.post_id = $1
        ORDER BY c.updated_at DESC`
	rows, err := r.db.QueryContext(ctx, commentsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.FindByID comments query: %w", err)
	}
	defer rows.Close()

	detail.Comments = []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var name string
		if err := rows.Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt, &name); err != nil {
			return nil, fmt.Errorf("pgPostRepository.FindByID comments scan: %w", err)
		}
		c.Author = &model.AuthorRef{ID: c.AuthorID, Name: name}
		detail.Comments = append(detail.Comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPostRepository.FindByID comments rows.Err: %w", err)
	}
	return detail, nil
}

func (r *pgPostRepository) List(ctx context.Context, publishedOnly bool) ([]model.Post, error) {
	query := `
        SELECT p.id, p.title, p.slug, p.text, p.is_published, p.image_url, p.author_id,
               p.created_at, p.updated_at, u.name
        FROM posts p
        JOIN users u ON p.author_id = u.id`
	if publishedOnly {
		query += ` WHERE p.is_published = TRUE`
	}
	query += ` ORDER BY p.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgPostRepository.List query: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		var name string
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Text, &p.IsPublished, &p.ImageURL, &p.AuthorID,
			&p.CreatedAt, &p.UpdatedAt, &name); err != nil {
			return nil, fmt.Errorf("pgPostRepository.List scan: %w", err)
		}
		p.Author = &model.AuthorRef{Name: name}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPostRepository.List rows.Err: %w", err)
	}
	return posts, nil
}

func (r *pgPostRepository) Update(ctx context.Context, p *model.Post) error {
	query := `UPDATE posts SET
                title = $1, slug = $2, text = $3, is_published = $4, image_url = $5,
                updated_at = CURRENT_TIMESTAMP
              WHERE id = $6
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Title, p.Slug, p.Text, p.IsPublished, p.ImageURL, p.ID).
		Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("post with this title already exists: %w", common.ErrAlreadyExists)
		}
		return fmt.Errorf("pgPostRepository.Update: %w", err)
	}
	return nil
}

// Delete removes the post; its comments go with it through the foreign key.
func (r *pgPostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgPostRepository.Delete: %w", err)
	}
	return expectOneRow(res, "pgPostRepository.Delete")
}
