package domain

import "time"

// CodeRequest asks for a verification code.
type CodeRequest struct {
	Email   string  `json:"email" binding:"required,email"`
	Purpose Purpose `json:"purpose" binding:"required"`
}

// SignUpRequest registers a new identity.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=16"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=16"`
	Code     string `json:"code" binding:"required,len=6"`
}

// SignInRequest authenticates with email and password.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token. The refreshToken cookie is used
// when the body omits it.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest sets a new password using a recovery code.
type ForgotPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=16"`
	Code     string `json:"code" binding:"required,len=6"`
}

// ResetPasswordRequest changes the password of the signed-in identity.
type ResetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=16"`
}

// UpdateProfileRequest edits the signed-in identity. Omitted fields are kept.
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=3,max=16"`
	Bio    *string `json:"bio" binding:"omitempty,max=50"`
	Handle *string `json:"handle" binding:"omitempty,min=3,max=25"`
	Email  *string `json:"email" binding:"omitempty,email"`
}

// ToUpdate converts the request to a ProfileUpdate.
func (r *UpdateProfileRequest) ToUpdate() ProfileUpdate {
	return ProfileUpdate{Name: r.Name, Bio: r.Bio, Handle: r.Handle, Email: r.Email}
}

// CreatePostRequest creates a post.
type CreatePostRequest struct {
	Title       string   `json:"title" binding:"required,max=75"`
	Body        string   `json:"body" binding:"required"`
	Description string   `json:"description" binding:"max=150"`
	Tags        []string `json:"tags" binding:"required,min=1"`
	Image       string   `json:"image" binding:"omitempty,url"`
}

// ToNewPost converts the request to a NewPost.
func (r *CreatePostRequest) ToNewPost() NewPost {
	return NewPost{Title: r.Title, Body: r.Body, Description: r.Description, Tags: r.Tags, Image: r.Image}
}

// CreateCommentRequest comments on a post, optionally replying to a comment.
type CreateCommentRequest struct {
	Text     string `json:"text" binding:"required,min=5,max=150"`
	ParentID string `json:"parentId"`
}

// UpdateCommentRequest edits a comment.
type UpdateCommentRequest struct {
	Text string `json:"text" binding:"required,min=5,max=150"`
}

// CreateListRequest creates a bookmark list.
type CreateListRequest struct {
	Name        string `json:"name" binding:"required,min=5,max=20"`
	Description string `json:"description" binding:"max=50"`
}

// UpdateListRequest renames a list or changes its description.
type UpdateListRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=5,max=20"`
	Description *string `json:"description" binding:"omitempty,max=50"`
}

// AuthResponse is returned by sign-up, sign-in and refresh.
type AuthResponse struct {
	User         *AccountView `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	// RefreshExpiresAt sizes the refresh cookie.
	RefreshExpiresAt time.Time `json:"-"`
}
