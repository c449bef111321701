package memory

import (
	"context"
	"testing"

	"blog_api/internal/common"
	"blog_api/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, name, email string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, HashedPassword: "hash"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("user uniqueness", func(t *testing.T) {
		s := New()
		seedUser(t, s, "alice", "alice@test.com")

		err := s.Users().Create(ctx, &model.User{Name: "other", Email: "alice@test.com"})
		assert.ErrorIs(t, err, common.ErrAlreadyExists)

		err = s.Users().Create(ctx, &model.User{Name: "alice", Email: "new@test.com"})
		assert.ErrorIs(t, err, common.ErrAlreadyExists)
	})

	t.Run("list users hides hashes and orders newest first", func(t *testing.T) {
		s := New()
		seedUser(t, s, "alice", "alice@test.com")
		seedUser(t, s, "bobby", "bob@test.com")

		users, err := s.Users().List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "bobby", users[0].Name)
		assert.Empty(t, users[0].HashedPassword)
	})

	t.Run("post title is unique on create and update", func(t *testing.T) {
		s := New()
		author := seedUser(t, s, "admin", "admin@test.com")
		first := &model.Post{Title: "Same", Text: "x", AuthorID: author.ID}
		require.NoError(t, s.Posts().Create(ctx, first))

		err := s.Posts().Create(ctx, &model.Post{Title: "Same", Text: "y", AuthorID: author.ID})
		assert.ErrorIs(t, err, common.ErrAlreadyExists)

		second := &model.Post{Title: "Other", Text: "y", AuthorID: author.ID}
		require.NoError(t, s.Posts().Create(ctx, second))
		second.Title = "Same"
		assert.ErrorIs(t, s.Posts().Update(ctx, second), common.ErrAlreadyExists)
	})

	t.Run("published filter and author names", func(t *testing.T) {
		s := New()
		author := seedUser(t, s, "admin", "admin@test.com")
		require.NoError(t, s.Posts().Create(ctx, &model.Post{Title: "Draft", Text: "x", AuthorID: author.ID}))
		require.NoError(t, s.Posts().Create(ctx, &model.Post{Title: "Live", Text: "x", IsPublished: true, AuthorID: author.ID}))

		published, err := s.Posts().List(ctx, true)
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, "Live", published[0].Title)
		assert.Equal(t, "admin", published[0].Author.Name)

		all, err := s.Posts().List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("post detail carries comments and delete cascades", func(t *testing.T) {
		s := New()
		author := seedUser(t, s, "admin", "admin@test.com")
		reader := seedUser(t, s, "reader", "reader@test.com")
		post := &model.Post{Title: "Live", Text: "x", IsPublished: true, AuthorID: author.ID}
		require.NoError(t, s.Posts().Create(ctx, post))
		comment := &model.Comment{Text: "hi", PostID: post.ID, AuthorID: reader.ID}
		require.NoError(t, s.Comments().Create(ctx, comment))

		detail, err := s.Posts().FindByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "reader", detail.Comments[0].Author.Name)
		assert.Equal(t, reader.ID, detail.Comments[0].Author.ID)

		require.NoError(t, s.Posts().Delete(ctx, post.ID))
		_, err = s.Comments().FindByID(ctx, comment.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("comment on missing post is rejected", func(t *testing.T) {
		s := New()
		u := seedUser(t, s, "reader", "reader@test.com")
		err := s.Comments().Create(ctx, &model.Comment{Text: "hi", PostID: 99, AuthorID: u.ID})
		assert.Error(t, err)
	})

	t.Run("deleting a user removes their comments", func(t *testing.T) {
		s := New()
		author := seedUser(t, s, "admin", "admin@test.com")
		reader := seedUser(t, s, "reader", "reader@test.com")
		post := &model.Post{Title: "Live", Text: "x", AuthorID: author.ID}
		require.NoError(t, s.Posts().Create(ctx, post))
		require.NoError(t, s.Comments().Create(ctx, &model.Comment{Text: "hi", PostID: post.ID, AuthorID: reader.ID}))

		require.NoError(t, s.Users().Delete(ctx, reader.ID))
		byAuthor, err := s.Comments().ListByAuthor(ctx, reader.ID)
		require.NoError(t, err)
		assert.Empty(t, byAuthor)
		assert.ErrorIs(t, s.Users().Delete(ctx, reader.ID), common.ErrNotFound)
	})
}
