package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"gorm.io/gorm"
)

// GormNotificationRepository implements NotificationRepository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GORM-backed notification repository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification and fills its id and timestamp.
func (r *GormNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	model := &domain.NotificationModel{
		ID:          newContentID(),
		Type:        n.Type,
		InitiatorID: n.InitiatorID,
		TargetID:    n.TargetID,
		Image:       n.Image,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*n = *model.ToDomain()
	return nil
}

// ListByTarget returns a window of targetID's notifications, newest first.
func (r *GormNotificationRepository) ListByTarget(ctx context.Context, targetID string, offset, limit int) ([]*domain.Notification, error) {
	var models []domain.NotificationModel
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Notification, len(models))
	for i := range models {
		out[i] = models[i].ToDomain()
	}
	return out, nil
}

// MarkRead flags one notification of targetID as read.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, targetID string) error {
	var model domain.NotificationModel
	err := r.db.WithContext(ctx).Select("id").Where("id = ? AND target_id = ?", id, targetID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotificationNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&domain.NotificationModel{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllRead flags every unread notification of targetID.
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, targetID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.NotificationModel{}).
		Where("target_id = ? AND is_read = ?", targetID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

var _ NotificationRepository = (*GormNotificationRepository)(nil)
