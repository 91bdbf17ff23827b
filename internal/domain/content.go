package domain

import (
	"time"

	"github.com/weiawesome/wes-io-social/pkg/database"
)

// Content kinds that can be liked.
const (
	KindPost    = "post"
	KindComment = "comment"
)

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID          string               `gorm:"type:varchar(26);primaryKey"`
	CreatorID   string               `gorm:"type:varchar(36);not null;index"`
	Title       string               `gorm:"type:varchar(200);not null"`
	Body        string               `gorm:"type:text;not null"`
	Description string               `gorm:"type:varchar(500)"`
	Tags        database.StringArray `gorm:"type:text"`
	Image       string               `gorm:"type:varchar(512)"`
	CreatedAt   time.Time            `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string { return "posts" }

func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID:          m.ID,
		CreatorID:   m.CreatorID,
		Title:       m.Title,
		Body:        m.Body,
		Description: m.Description,
		Tags:        []string(m.Tags),
		Image:       m.Image,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CommentModel is the GORM model for the comments table.
// ParentID is nil for top-level comments.
type CommentModel struct {
	ID        string    `gorm:"type:varchar(26);primaryKey"`
	PostID    string    `gorm:"type:varchar(26);not null;index"`
	ParentID  *string   `gorm:"type:varchar(26);index"`
	CreatorID string    `gorm:"type:varchar(36);not null;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CommentModel) TableName() string { return "comments" }

func (m *CommentModel) ToDomain() *Comment {
	c := &Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		CreatorID: m.CreatorID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.ParentID != nil {
		c.ParentID = *m.ParentID
	}
	return c
}

// LikeModel records that UserID likes one content item.
type LikeModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Kind      string    `gorm:"type:varchar(16);not null;uniqueIndex:uidx_likes_triple"`
	ContentID string    `gorm:"type:varchar(26);not null;uniqueIndex:uidx_likes_triple"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_likes_triple"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LikeModel) TableName() string { return "likes" }

// Post is a top-level content item.
type Post struct {
	ID          string
	CreatorID   string
	Title       string
	Body        string
	Description string
	Tags        []string
	Image       string
	LikedBy     IDSet
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a content item under a post, optionally replying to another comment.
type Comment struct {
	ID        string
	PostID    string
	ParentID  string
	CreatorID string
	Text      string
	LikedBy   IDSet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPost carries the fields of a post being created.
type NewPost struct {
	Title       string
	Body        string
	Description string
	Tags        []string
	Image       string
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}
