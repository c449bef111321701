package service

import "strings"

type SignupRequest struct {
	Name     string `json:"name" validate:"min=3,max=30" msg:"Name must be between 3 and 30 characters."`
	Email    string `json:"email" validate:"required,email,max=100" msg:"Email must be a valid email address." msg_max:"Email cannot exceed 100 characters."`
	Password string `json:"password" validate:"min=6,max=100" msg:"Password must be between 6 and 100 characters."`
}

func (r *SignupRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=100" msg:"Email must be a valid email address." msg_max:"Email cannot exceed 100 characters."`
	Password string `json:"password" validate:"min=6,max=100" msg:"Password must be between 6 and 100 characters."`
}

func (r *LoginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,min=3,max=30" msg:"Name must be between 3 and 30 characters."`
	Email    *string `json:"email,omitempty" validate:"omitnil,email,max=100" msg:"Email must be a valid email address." msg_max:"Email cannot exceed 100 characters."`
	Password *string `json:"password,omitempty" validate:"omitnil,min=6,max=100" msg:"Password must be between 6 and 100 characters."`
}

func (r *UpdateUserRequest) normalize() {
	r.Email = trimmed(r.Email)
	r.Password = trimmed(r.Password)
}

// AdminUpdateUserRequest can change the admin flag but never the password.
type AdminUpdateUserRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitnil,min=3,max=30" msg:"Name must be between 3 and 30 characters."`
	Email   *string `json:"email,omitempty" validate:"omitnil,email,max=100" msg:"Email must be a valid email address." msg_max:"Email cannot exceed 100 characters."`
	IsAdmin *bool   `json:"isAdmin,omitempty"`
}

func (r *AdminUpdateUserRequest) normalize() {
	r.Email = trimmed(r.Email)
}

type PostRequest struct {
	Title       string  `json:"title" validate:"min=1,max=200" msg:"Title must be between 1 and 200 characters."`
	Text        string  `json:"text" validate:"min=1,max=10000" msg:"Text must be between 1 and 10 000 characters."`
	IsPublished *bool   `json:"isPublished,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty" validate:"omitnil,max=200" msg:"Image URL must be between 1 and 200 characters."`
}

type CommentRequest struct {
	Text string `json:"text" validate:"min=1,max=1000" msg:"Comment must be between 1 and 1000 characters."`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
