package domain

import "time"

// Notification types.
const (
	NotificationFollow  = "follow"
	NotificationComment = "comment"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID          string    `gorm:"type:varchar(26);primaryKey"`
	Type        string    `gorm:"type:varchar(16);not null"`
	InitiatorID string    `gorm:"type:varchar(36);not null"`
	TargetID    string    `gorm:"type:varchar(36);not null;index:idx_notifications_target"`
	Image       string    `gorm:"type:varchar(512)"`
	IsRead      bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (NotificationModel) TableName() string { return "notifications" }

func (m *NotificationModel) ToDomain() *Notification {
	return &Notification{
		ID:          m.ID,
		Type:        m.Type,
		InitiatorID: m.InitiatorID,
		TargetID:    m.TargetID,
		Image:       m.Image,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

// Notification tells TargetID that InitiatorID did something.
type Notification struct {
	ID          string
	Type        string
	InitiatorID string
	TargetID    string
	Image       string
	IsRead      bool
	CreatedAt   time.Time
}

// ActivityEvent is published on the activity bus by write paths.
type ActivityEvent struct {
	Type        string    `json:"type"`
	InitiatorID string    `json:"initiatorId"`
	TargetID    string    `json:"targetId"`
	Image       string    `json:"image,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}
