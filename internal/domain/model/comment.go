package model

import "time"

type PostRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Comment struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	PostID    int64      `json:"postId"`
	AuthorID  int64      `json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Author    *AuthorRef `json:"author,omitempty"`
	Post      *PostRef   `json:"post,omitempty"`
}
