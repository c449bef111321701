package model

import "time"

// AuthorRef is the slice of a user attached to posts and comments.
type AuthorRef struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

type Post struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Text        string     `json:"text"`
	IsPublished bool       `json:"isPublished"`
	ImageURL    *string    `json:"imageUrl"`
	AuthorID    int64      `json:"authorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      *AuthorRef `json:"author,omitempty"`
}

// PostDetail is a post with its comments, newest first.
type PostDetail struct {
	Post
	Comments []Comment `json:"comments"`
}

// FindComment returns the comment with the given id if it belongs to the post.
func (d *PostDetail) FindComment(id int64) (*Comment, bool) {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			return &d.Comments[i], true
		}
	}
	return nil, false
}
