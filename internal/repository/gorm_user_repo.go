package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/database"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user. The unique indexes on email and handle are the
// authoritative duplicate guard.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New().String()

	model := domain.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return r.handleError(ctx, err, "", user.Email)
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByHandle retrieves a user by handle.
func (r *GormUserRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return r.first(ctx, "handle = ?", handle)
}

func (r *GormUserRepository) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByIDs loads users by id. Missing ids are absent from the map.
func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []domain.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	for i := range models {
		out[models[i].ID] = models[i].ToDomain()
	}
	return out, nil
}

// ExistsByEmail reports whether email is registered.
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// ExistsByHandle reports whether handle is taken.
func (r *GormUserRepository) ExistsByHandle(ctx context.Context, handle string) (bool, error) {
	return r.exists(ctx, "handle = ?", handle)
}

func (r *GormUserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}

// UpdateProfile applies the non-nil fields of upd and returns the updated user.
func (r *GormUserRepository) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.Handle != nil {
		fields["handle"] = *upd.Handle
	}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}

	if len(fields) > 0 {
		if err := r.updates(ctx, id, fields); err != nil {
			email := ""
			if upd.Email != nil {
				email = *upd.Email
			}
			return nil, r.handleError(ctx, err, id, email)
		}
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword stores a new password hash.
func (r *GormUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updates(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

// UpdateAvatar stores a new avatar URL.
func (r *GormUserRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	return r.updates(ctx, id, map[string]interface{}{"avatar": avatarURL})
}

func (r *GormUserRepository) updates(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// handleError maps a unique violation to the conflicting field. Translated
// driver errors no longer name the column, so the email is checked directly.
func (r *GormUserRepository) handleError(ctx context.Context, err error, selfID, email string) error {
	if !database.IsUniqueViolation(err) {
		return err
	}
	if email != "" {
		var owner domain.UserModel
		lookup := r.db.WithContext(ctx).Select("id").First(&owner, "email = ?", email)
		if lookup.Error == nil && owner.ID != selfID {
			return domain.ErrEmailTaken
		}
	}
	return domain.ErrHandleTaken
}

var _ UserRepository = (*GormUserRepository)(nil)
