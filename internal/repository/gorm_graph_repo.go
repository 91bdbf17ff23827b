package repository

import (
	"context"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGraphRepository implements GraphRepository using GORM.
type GormGraphRepository struct {
	db *gorm.DB
}

// NewGormGraphRepository creates a new GORM-backed graph repository.
func NewGormGraphRepository(db *gorm.DB) *GormGraphRepository {
	return &GormGraphRepository{db: db}
}

// ToggleFollow flips the single follow row for the pair. A block in either
// direction, read inside the toggle transaction, fails with domain.ErrBlocked.
func (r *GormGraphRepository) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	return toggleRowGuarded(ctx, r.db, &domain.FollowModel{},
		map[string]interface{}{"follower_id": followerID, "following_id": followingID},
		func() interface{} {
			return &domain.FollowModel{FollowerID: followerID, FollowingID: followingID}
		},
		func(tx *gorm.DB) error {
			if err := lockPair(tx, followerID, followingID); err != nil {
				return err
			}
			blocked, err := blockedEitherWay(tx, followerID, followingID)
			if err != nil {
				return err
			}
			if blocked {
				return domain.ErrBlocked
			}
			return nil
		})
}

// ToggleBlock flips the block row for the pair.
func (r *GormGraphRepository) ToggleBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return toggleRowGuarded(ctx, r.db, &domain.BlockModel{},
		map[string]interface{}{"blocker_id": blockerID, "blocked_id": blockedID},
		func() interface{} {
			return &domain.BlockModel{BlockerID: blockerID, BlockedID: blockedID}
		},
		func(tx *gorm.DB) error { return lockPair(tx, blockerID, blockedID) })
}

// lockPair row-locks both users in id order, serialising follow and block
// toggles on the same pair. sqlite ignores the locking clause and relies on
// its single writer.
func lockPair(tx *gorm.DB, a, b string) error {
	var ids []string
	return tx.Model(&domain.UserModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", []string{a, b}).
		Order("id").
		Pluck("id", &ids).Error
}

// IsFollowing checks if followerID follows followingID.
func (r *GormGraphRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// IsBlocked checks if blockerID blocked blockedID.
func (r *GormGraphRepository) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.BlockModel{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// BlockedEitherWay reports whether a blocked b or b blocked a.
func (r *GormGraphRepository) BlockedEitherWay(ctx context.Context, a, b string) (bool, error) {
	return blockedEitherWay(r.db.WithContext(ctx), a, b)
}

func blockedEitherWay(db *gorm.DB, a, b string) (bool, error) {
	var count int64
	err := db.Model(&domain.BlockModel{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// BlockedIDs returns everyone userID blocked.
func (r *GormGraphRepository) BlockedIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.BlockModel{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}

// BlockedByIDs returns everyone who blocked userID.
func (r *GormGraphRepository) BlockedByIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.BlockModel{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &ids).Error
	return ids, err
}

// FollowingAmong returns the subset of ids that userID follows.
func (r *GormGraphRepository) FollowingAmong(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id IN ?", userID, ids).
		Pluck("following_id", &out).Error
	return out, err
}

// FollowersAmong returns the subset of ids that follow userID.
func (r *GormGraphRepository) FollowersAmong(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ? AND follower_id IN ?", userID, ids).
		Pluck("follower_id", &out).Error
	return out, err
}

// Counts returns follower and following totals.
func (r *GormGraphRepository) Counts(ctx context.Context, userID string) (domain.EdgeCounts, error) {
	var c domain.EdgeCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.FollowModel{}).Where("following_id = ?", userID).Count(&c.Followers).Error; err != nil {
		return c, err
	}
	if err := db.Model(&domain.FollowModel{}).Where("follower_id = ?", userID).Count(&c.Following).Error; err != nil {
		return c, err
	}
	return c, nil
}

// ListFollowers returns follower ids of userID, most recent edge first.
func (r *GormGraphRepository) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("following_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// ListFollowing returns ids userID follows, most recent edge first.
func (r *GormGraphRepository) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Pluck("following_id", &ids).Error
	return ids, err
}

var _ GraphRepository = (*GormGraphRepository)(nil)
