package repository

import (
	"context"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"gorm.io/gorm"
)

// GormLikeRepository implements LikeRepository using GORM.
type GormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository creates a new GORM-backed like repository.
func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

// Toggle flips userID's like on one content item.
func (r *GormLikeRepository) Toggle(ctx context.Context, kind, contentID, userID string) (bool, error) {
	return toggleRow(ctx, r.db, &domain.LikeModel{},
		map[string]interface{}{"kind": kind, "content_id": contentID, "user_id": userID},
		func() interface{} {
			return &domain.LikeModel{Kind: kind, ContentID: contentID, UserID: userID}
		})
}

// Count returns the number of likes on one content item.
func (r *GormLikeRepository) Count(ctx context.Context, kind, contentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LikeModel{}).
		Where("kind = ? AND content_id = ?", kind, contentID).
		Count(&count).Error
	return count, err
}

// LikedBy returns the liked-set of every listed content item.
func (r *GormLikeRepository) LikedBy(ctx context.Context, kind string, contentIDs []string) (map[string]domain.IDSet, error) {
	out := make(map[string]domain.IDSet, len(contentIDs))
	for _, id := range contentIDs {
		out[id] = domain.IDSet{}
	}
	if len(contentIDs) == 0 {
		return out, nil
	}

	var rows []domain.LikeModel
	err := r.db.WithContext(ctx).
		Select("content_id", "user_id").
		Where("kind = ? AND content_id IN ?", kind, contentIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ContentID][row.UserID] = struct{}{}
	}
	return out, nil
}

// deleteLikes removes likes of the given items inside tx.
func deleteLikes(tx *gorm.DB, kind string, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}
	return tx.Where("kind = ? AND content_id IN ?", kind, contentIDs).Delete(&domain.LikeModel{}).Error
}

var _ LikeRepository = (*GormLikeRepository)(nil)
