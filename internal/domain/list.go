package domain

import "time"

// ListModel is a named bookmark list owned by CreatorID.
type ListModel struct {
	ID          string    `gorm:"type:varchar(26);primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:varchar(500)"`
	CreatorID   string    `gorm:"type:varchar(36);not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (ListModel) TableName() string { return "lists" }

// ListPostModel places a post in a list.
type ListPostModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ListID    string    `gorm:"type:varchar(26);not null;uniqueIndex:uidx_list_posts_pair"`
	PostID    string    `gorm:"type:varchar(26);not null;uniqueIndex:uidx_list_posts_pair;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ListPostModel) TableName() string { return "list_posts" }

// List is a bookmark list with its post count.
type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creatorId"`
	PostsCount  int64     `json:"postsCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListToggleResult is the outcome of adding or removing a post.
type ListToggleResult struct {
	Saved bool `json:"saved"`
}
