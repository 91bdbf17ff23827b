package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/database"
	"gorm.io/gorm"
)

// GormListRepository implements ListRepository using GORM.
type GormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GORM-backed list repository.
func NewGormListRepository(db *gorm.DB) *GormListRepository {
	return &GormListRepository{db: db}
}

// Create inserts a list. Names are globally unique.
func (r *GormListRepository) Create(ctx context.Context, list *domain.List) error {
	model := &domain.ListModel{
		ID:          newContentID(),
		Name:        list.Name,
		Description: list.Description,
		CreatorID:   list.CreatorID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrListNameTaken
		}
		return err
	}
	list.ID = model.ID
	list.CreatedAt = model.CreatedAt
	return nil
}

type listRow struct {
	domain.ListModel
	PostsCount int64
}

func (row *listRow) toDomain() *domain.List {
	return &domain.List{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatorID:   row.CreatorID,
		PostsCount:  row.PostsCount,
		CreatedAt:   row.CreatedAt,
	}
}

func (r *GormListRepository) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("lists").
		Select("lists.*, (SELECT COUNT(*) FROM list_posts WHERE list_posts.list_id = lists.id) AS posts_count")
}

// GetByID retrieves a list with its post count.
func (r *GormListRepository) GetByID(ctx context.Context, id string) (*domain.List, error) {
	var row listRow
	err := r.withCounts(ctx).Where("lists.id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// ListByCreator returns a window of the creator's lists, newest first.
func (r *GormListRepository) ListByCreator(ctx context.Context, creatorID string, offset, limit int) ([]*domain.List, error) {
	var rows []listRow
	err := r.withCounts(ctx).
		Where("lists.creator_id = ?", creatorID).
		Order("lists.created_at DESC, lists.id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*domain.List, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Update changes the name and/or description of a list.
func (r *GormListRepository) Update(ctx context.Context, id string, name, description *string) (*domain.List, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.ListModel{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			if database.IsUniqueViolation(err) {
				return nil, domain.ErrListNameTaken
			}
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a list and its memberships.
func (r *GormListRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&domain.ListPostModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.ListModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrListNotFound
		}
		return nil
	})
}

// TogglePost adds or removes a post from a list.
func (r *GormListRepository) TogglePost(ctx context.Context, listID, postID string) (bool, error) {
	return toggleRow(ctx, r.db, &domain.ListPostModel{},
		map[string]interface{}{"list_id": listID, "post_id": postID},
		func() interface{} {
			return &domain.ListPostModel{ListID: listID, PostID: postID}
		})
}

// BookmarkedAmong returns the posts of postIDs that sit in any of userID's lists.
func (r *GormListRepository) BookmarkedAmong(ctx context.Context, userID string, postIDs []string) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var out []string
	err := r.db.WithContext(ctx).
		Table("list_posts").
		Distinct("list_posts.post_id").
		Joins("JOIN lists ON lists.id = list_posts.list_id").
		Where("lists.creator_id = ? AND list_posts.post_id IN ?", userID, postIDs).
		Pluck("list_posts.post_id", &out).Error
	return out, err
}

var _ ListRepository = (*GormListRepository)(nil)
