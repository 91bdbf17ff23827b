package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/database"
	"gorm.io/gorm"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a post and fills its id and timestamps.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	model := &domain.PostModel{
		ID:          newContentID(),
		CreatorID:   post.CreatorID,
		Title:       post.Title,
		Body:        post.Body,
		Description: post.Description,
		Tags:        database.NormalizeTags(post.Tags),
		Image:       post.Image,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*post = *model.ToDomain()
	return nil
}

// GetByID retrieves a post by ID.
func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var model domain.PostModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a feed window, newest first.
func (r *GormPostRepository) List(ctx context.Context, excluded []string, offset, limit int) ([]*domain.Post, error) {
	var models []domain.PostModel
	q := excludeCreators(r.db.WithContext(ctx), "creator_id", excluded)
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, len(models))
	for i := range models {
		posts[i] = models[i].ToDomain()
	}
	return posts, nil
}

var _ PostRepository = (*GormPostRepository)(nil)
