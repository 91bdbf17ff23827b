package domain

import "time"

// RelationFlags describe a subject identity relative to the viewer.
type RelationFlags struct {
	IsFollowedByViewer bool `json:"isFollowedByViewer"` // viewer follows the subject
	IsViewerFollowed   bool `json:"isViewerFollowed"`   // subject follows the viewer
	IsBlockedByViewer  bool `json:"isBlockedByViewer"`  // viewer blocked the subject
	IsViewerBlocked    bool `json:"isViewerBlocked"`    // subject blocked the viewer
}

// UserSummary is the public card of an identity.
type UserSummary struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// MemberView is an identity inside a listing or as a content creator.
type MemberView struct {
	UserSummary
	RelationFlags
}

// ProfileView is an identity profile with edge counts.
type ProfileView struct {
	MemberView
	FollowersCount int64     `json:"followersCount"`
	FollowingCount int64     `json:"followingCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PostView is a post as seen by the viewer.
type PostView struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Body                 string     `json:"body"`
	Description          string     `json:"description"`
	Tags                 []string   `json:"tags"`
	Image                string     `json:"image"`
	Creator              MemberView `json:"creator"`
	LikedByViewer        bool       `json:"likedByViewer"`
	LikesCount           int64      `json:"likesCount"`
	IsBookmarkedByViewer bool       `json:"isBookmarkedByViewer"`
	CommentsCount        *int64     `json:"commentsCount,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// CommentView is a comment as seen by the viewer.
type CommentView struct {
	ID            string     `json:"id"`
	PostID        string     `json:"postId"`
	ParentID      string     `json:"parentId,omitempty"`
	Text          string     `json:"text"`
	Creator       MemberView `json:"creator"`
	LikedByViewer bool       `json:"likedByViewer"`
	LikesCount    int64      `json:"likesCount"`
	RepliesCount  int64      `json:"repliesCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NotificationView is a notification with its initiator projected
// relative to the target.
type NotificationView struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Initiator MemberView `json:"initiator"`
	Image     string     `json:"image,omitempty"`
	IsRead    bool       `json:"isRead"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AccountView is the signed-in user's own account.
type AccountView struct {
	UserSummary
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToSummary returns the public card of u.
func (u *User) ToSummary() UserSummary {
	return UserSummary{ID: u.ID, Handle: u.Handle, Name: u.Name, Avatar: u.Avatar, Bio: u.Bio}
}

// ToAccount returns the private account view of u.
func (u *User) ToAccount() *AccountView {
	return &AccountView{UserSummary: u.ToSummary(), Email: u.Email, CreatedAt: u.CreatedAt}
}
