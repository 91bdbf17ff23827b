package repository

import (
	"context"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

// UserRepository persists identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByHandle(ctx context.Context, handle string) (bool, error)
	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}

// GraphRepository owns follow and block edges.
type GraphRepository interface {
	// ToggleFollow flips followerID→followingID and returns the new membership.
	// It fails with domain.ErrBlocked when a block exists in either direction.
	ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error)
	// ToggleBlock flips blockerID→blockedID and returns the new membership.
	ToggleBlock(ctx context.Context, blockerID, blockedID string) (bool, error)

	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error)
	BlockedEitherWay(ctx context.Context, a, b string) (bool, error)

	BlockedIDs(ctx context.Context, userID string) ([]string, error)
	BlockedByIDs(ctx context.Context, userID string) ([]string, error)
	FollowingAmong(ctx context.Context, userID string, ids []string) ([]string, error)
	FollowersAmong(ctx context.Context, userID string, ids []string) ([]string, error)

	Counts(ctx context.Context, userID string) (domain.EdgeCounts, error)
	ListFollowers(ctx context.Context, userID string, offset, limit int) ([]string, error)
	ListFollowing(ctx context.Context, userID string, offset, limit int) ([]string, error)
}

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	// List returns posts newest first, skipping creators in excludeCreators
	// before the offset is applied.
	List(ctx context.Context, excludeCreators []string, offset, limit int) ([]*domain.Post, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	// List returns comments of postID under parentID ("" for top level),
	// newest first, with excluded creators filtered before the offset.
	List(ctx context.Context, postID, parentID string, excludeCreators []string, offset, limit int) ([]*domain.Comment, error)
	CountByPost(ctx context.Context, postID string, excludeCreators []string) (int64, error)
	CountReplies(ctx context.Context, ids []string, excludeCreators []string) (map[string]int64, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Comment, error)
	// DeleteTree removes the comment, all of its descendants and their likes.
	DeleteTree(ctx context.Context, id string) (int64, error)
}

// LikeRepository owns like rows for posts and comments.
type LikeRepository interface {
	Toggle(ctx context.Context, kind, contentID, userID string) (bool, error)
	Count(ctx context.Context, kind, contentID string) (int64, error)
	LikedBy(ctx context.Context, kind string, contentIDs []string) (map[string]domain.IDSet, error)
}

// ListRepository persists bookmark lists.
type ListRepository interface {
	Create(ctx context.Context, list *domain.List) error
	GetByID(ctx context.Context, id string) (*domain.List, error)
	ListByCreator(ctx context.Context, creatorID string, offset, limit int) ([]*domain.List, error)
	// Update sets the non-nil fields. A taken name fails with ErrListNameTaken.
	Update(ctx context.Context, id string, name, description *string) (*domain.List, error)
	Delete(ctx context.Context, id string) error
	TogglePost(ctx context.Context, listID, postID string) (bool, error)
	BookmarkedAmong(ctx context.Context, userID string, postIDs []string) ([]string, error)
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByTarget(ctx context.Context, targetID string, offset, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id, targetID string) error
	MarkAllRead(ctx context.Context, targetID string) (int64, error)
}
