package service

import (
	"context"
	"io"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/jwt"
)

// AuthService defines sign-up, sign-in and credential management.
type AuthService interface {
	RequestCode(ctx context.Context, req *domain.CodeRequest) (*domain.CodeIssue, error)
	SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.AuthResponse, error)
	SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error)
	SignOut(ctx context.Context, userID string)
	ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, userID string, req *domain.ResetPasswordRequest) error
	Me(ctx context.Context, userID string) (*domain.AccountView, error)
}

// UserService defines profile reads and edits and the relationship toggles.
type UserService interface {
	GetProfile(ctx context.Context, viewerID, handle string) (*domain.ProfileView, error)
	ListFollowers(ctx context.Context, viewerID, userID string, page domain.Page) ([]domain.MemberView, error)
	ListFollowing(ctx context.Context, viewerID, userID string, page domain.Page) ([]domain.MemberView, error)
	UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.AccountView, error)
	UpdateAvatar(ctx context.Context, userID string, r io.Reader) (*domain.AccountView, error)
	ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error)
	ToggleBlock(ctx context.Context, actorID, targetID string) (*domain.BlockResult, error)
}

// PostService defines post creation, the feed and post likes.
type PostService interface {
	Create(ctx context.Context, creatorID string, post domain.NewPost) (*domain.PostView, error)
	Feed(ctx context.Context, viewerID string, page domain.Page) ([]domain.PostView, error)
	Get(ctx context.Context, viewerID, postID string) (*domain.PostView, error)
	ToggleLike(ctx context.Context, userID, postID string) (*domain.LikeResult, error)
}

// CommentService defines comment threads.
type CommentService interface {
	Create(ctx context.Context, userID, postID string, req *domain.CreateCommentRequest) (*domain.CommentView, error)
	ListByPost(ctx context.Context, viewerID, postID string, page domain.Page) ([]domain.CommentView, error)
	ListReplies(ctx context.Context, viewerID, commentID string, page domain.Page) ([]domain.CommentView, error)
	ToggleLike(ctx context.Context, userID, commentID string) (*domain.LikeResult, error)
	Update(ctx context.Context, userID, commentID, text string) (*domain.CommentView, error)
	Delete(ctx context.Context, userID, commentID string) error
}

// ListService defines bookmark lists.
type ListService interface {
	Create(ctx context.Context, userID string, req *domain.CreateListRequest) (*domain.List, error)
	ListMine(ctx context.Context, userID string, page domain.Page) ([]*domain.List, error)
	ListByUser(ctx context.Context, viewerID, userID string, page domain.Page) ([]*domain.List, error)
	Update(ctx context.Context, userID, listID string, req *domain.UpdateListRequest) (*domain.List, error)
	TogglePost(ctx context.Context, userID, listID, postID string) (*domain.ListToggleResult, error)
	Delete(ctx context.Context, userID, listID string) error
}

// TokenIssuer signs and validates credential tokens.
type TokenIssuer interface {
	GenerateTokenPair(userID string) (*jwt.TokenPair, error)
	RefreshTokens(refreshToken string) (*jwt.TokenPair, error)
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// CodeVerifier issues and consumes verification codes.
type CodeVerifier interface {
	RequestCode(ctx context.Context, email string, purpose domain.Purpose) (*domain.CodeIssue, error)
	Consume(ctx context.Context, email string, purpose domain.Purpose, supplied string) error
}

// Relationships is the relationship graph as seen by the services.
type Relationships interface {
	ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error)
	ToggleBlock(ctx context.Context, actorID, targetID string) (*domain.BlockResult, error)
	Counts(ctx context.Context, userID string) (domain.EdgeCounts, error)
	Viewer(ctx context.Context, viewerID string, subjectIDs []string) (*domain.Viewer, error)
	Extend(ctx context.Context, v *domain.Viewer, subjectIDs []string) error
	ListFollowers(ctx context.Context, userID string, page domain.Page) ([]string, error)
	ListFollowing(ctx context.Context, userID string, page domain.Page) ([]string, error)
}

// AvatarProcessor stores an uploaded avatar and returns its URL.
type AvatarProcessor interface {
	Process(ctx context.Context, userID string, r io.Reader) (string, error)
}

// EventPublisher publishes activity events without blocking.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ActivityEvent)
}
