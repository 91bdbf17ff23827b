package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"gorm.io/gorm"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-backed comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment and fills its id and timestamps.
func (r *GormCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	model := &domain.CommentModel{
		ID:        newContentID(),
		PostID:    c.PostID,
		CreatorID: c.CreatorID,
		Text:      c.Text,
	}
	if c.ParentID != "" {
		parent := c.ParentID
		model.ParentID = &parent
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*c = *model.ToDomain()
	return nil
}

// GetByID retrieves a comment by ID.
func (r *GormCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var model domain.CommentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one window of a comment thread level.
func (r *GormCommentRepository) List(ctx context.Context, postID, parentID string, excluded []string, offset, limit int) ([]*domain.Comment, error) {
	q := r.db.WithContext(ctx).Where("post_id = ?", postID)
	if parentID == "" {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", parentID)
	}
	q = excludeCreators(q, "creator_id", excluded)

	var models []domain.CommentModel
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*domain.Comment, len(models))
	for i := range models {
		out[i] = models[i].ToDomain()
	}
	return out, nil
}

// CountByPost counts every visible comment on a post, replies included.
func (r *GormCommentRepository) CountByPost(ctx context.Context, postID string, excluded []string) (int64, error) {
	var count int64
	q := excludeCreators(r.db.WithContext(ctx).Model(&domain.CommentModel{}), "creator_id", excluded)
	err := q.Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// CountReplies counts visible direct replies of each listed comment.
func (r *GormCommentRepository) CountReplies(ctx context.Context, ids []string, excluded []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		ParentID string
		Total    int64
	}
	q := excludeCreators(r.db.WithContext(ctx).Model(&domain.CommentModel{}), "creator_id", excluded)
	err := q.Select("parent_id, COUNT(*) AS total").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ParentID] = row.Total
	}
	return out, nil
}

// UpdateText replaces the comment text.
func (r *GormCommentRepository) UpdateText(ctx context.Context, id, text string) (*domain.Comment, error) {
	result := r.db.WithContext(ctx).Model(&domain.CommentModel{}).Where("id = ?", id).Update("text", text)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrCommentNotFound
	}
	return r.GetByID(ctx, id)
}

// DeleteTree removes a comment with every reply below it, level by level.
func (r *GormCommentRepository) DeleteTree(ctx context.Context, id string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		for frontier := ids; len(frontier) > 0; {
			var children []string
			if err := tx.Model(&domain.CommentModel{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := deleteLikes(tx, domain.KindComment, ids); err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&domain.CommentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrCommentNotFound
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

var _ CommentRepository = (*GormCommentRepository)(nil)
