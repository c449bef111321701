// Package memory is an in-process twin of the Postgres repositories, used for
// tests and for running the API without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"
	"blog_api/internal/domain/repository"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[int64]model.User
	posts    map[int64]model.Post
	comments map[int64]model.Comment
	nextID   struct{ user, post, comment int64 }
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[int64]model.User),
		posts:    make(map[int64]model.Post),
		comments: make(map[int64]model.Comment),
	}
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Posts() repository.PostRepository       { return postRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.userConflict(user) {
		return fmt.Errorf("user with given name or email already exists: %w", common.ErrAlreadyExists)
	}
	r.s.nextID.user++
	user.ID = r.s.nextID.user
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (s *Store) userConflict(user *model.User) bool {
	for _, u := range s.users {
		if u.ID != user.ID && (u.Email == user.Email || u.Name == user.Name) {
			return true
		}
	}
	return false
}

func (r userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r userRepo) List(ctx context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u.HashedPassword = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (r userRepo) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	if r.s.userConflict(user) {
		return fmt.Errorf("user with given name or email already exists: %w", common.ErrAlreadyExists)
	}
	user.CreatedAt = old.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

// Delete cascades to the user's posts and comments like the foreign keys do.
func (r userRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.posts {
		if p.AuthorID == id {
			r.s.deletePost(pid)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

type postRepo struct{ s *Store }

func (r postRepo) Create(ctx context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.titleTaken(p) {
		return fmt.Errorf("post with this title already exists: %w", common.ErrAlreadyExists)
	}
	r.s.nextID.post++
	p.ID = r.s.nextID.post
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	p.Author = nil
	r.s.posts[p.ID] = *p
	return nil
}

func (s *Store) titleTaken(p *model.Post) bool {
	for _, other := range s.posts {
		if other.ID != p.ID && other.Title == p.Title {
			return true
		}
	}
	return false
}

func (s *Store) withAuthor(p model.Post) model.Post {
	p.Author = &model.AuthorRef{Name: s.users[p.AuthorID].Name}
	return p
}

func (r postRepo) FindByID(ctx context.Context, id int64) (*model.PostDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	detail := &model.PostDetail{Post: r.s.withAuthor(p), Comments: []model.Comment{}}
	for _, c := range r.s.comments {
		if c.PostID == id {
			c.Author = &model.AuthorRef{ID: c.AuthorID, Name: r.s.users[c.AuthorID].Name}
			detail.Comments = append(detail.Comments, c)
		}
	}
	sortComments(detail.Comments)
	return detail, nil
}

func (r postRepo) List(ctx context.Context, publishedOnly bool) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	posts := []model.Post{}
	for _, p := range r.s.posts {
		if publishedOnly && !p.IsPublished {
			continue
		}
		posts = append(posts, r.s.withAuthor(p))
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, nil
}

func (r postRepo) Update(ctx context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.posts[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	if r.s.titleTaken(p) {
		return fmt.Errorf("post with this title already exists: %w", common.ErrAlreadyExists)
	}
	p.CreatedAt = old.CreatedAt
	p.AuthorID = old.AuthorID
	p.UpdatedAt = r.s.now()
	stored := *p
	stored.Author = nil
	r.s.posts[p.ID] = stored
	return nil
}

func (r postRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return common.ErrNotFound
	}
	r.s.deletePost(id)
	return nil
}

func (s *Store) deletePost(id int64) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(ctx context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[c.PostID]; !ok {
		return fmt.Errorf("comment references missing post %d", c.PostID)
	}
	if _, ok := r.s.users[c.AuthorID]; !ok {
		return fmt.Errorf("comment references missing user %d", c.AuthorID)
	}
	r.s.nextID.comment++
	c.ID = r.s.nextID.comment
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	c.Author, c.Post = nil, nil
	r.s.comments[c.ID] = *c
	return nil
}

func (r commentRepo) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r commentRepo) List(ctx context.Context) ([]model.Comment, error) {
	return r.list(func(model.Comment) bool { return true }), nil
}

func (r commentRepo) ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error) {
	return r.list(func(c model.Comment) bool { return c.AuthorID == authorID }), nil
}

func (r commentRepo) list(keep func(model.Comment) bool) []model.Comment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := []model.Comment{}
	for _, c := range r.s.comments {
		if !keep(c) {
			continue
		}
		c.Post = &model.PostRef{ID: c.PostID, Title: r.s.posts[c.PostID].Title}
		c.Author = &model.AuthorRef{Name: r.s.users[c.AuthorID].Name}
		comments = append(comments, c)
	}
	sortComments(comments)
	return comments
}

func (r commentRepo) Update(ctx context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.comments[c.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Text = c.Text
	stored.UpdatedAt = r.s.now()
	r.s.comments[c.ID] = stored
	*c = stored
	return nil
}

func (r commentRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

// sortComments orders by last update, newest first; ties fall back to id.
func sortComments(comments []model.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].UpdatedAt.Equal(comments[j].UpdatedAt) {
			return comments[i].UpdatedAt.After(comments[j].UpdatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}
