package model

import (
	"time"
)

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	IsAdmin        bool      `json:"isAdmin"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Identity is who is making a request.
type Identity struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

// UserPatch holds the fields of a partial user update; nil means absent.
type UserPatch struct {
	Name           *string
	Email          *string
	HashedPassword *string
	IsAdmin        *bool
}

// Apply merges the present fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.HashedPassword != nil {
		u.HashedPassword = *p.HashedPassword
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}
