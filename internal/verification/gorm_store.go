package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

// GormStore implements CodeStore on the verification_codes table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed code store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) pair(ctx context.Context, email string, purpose domain.Purpose) *gorm.DB {
	return s.db.WithContext(ctx).Where("email = ? AND purpose = ?", email, string(purpose))
}

// Latest returns the newest code of the pair.
func (s *GormStore) Latest(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	var model domain.VerificationCodeModel
	err := s.pair(ctx, email, purpose).Order("created_at DESC").Order("id DESC").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Replace deletes the pair's codes and inserts code in one transaction.
func (s *GormStore) Replace(ctx context.Context, code *domain.VerificationCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND purpose = ?", code.Email, string(code.Purpose)).
			Delete(&domain.VerificationCodeModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.VerificationCodeModel{
			Email:     code.Email,
			Purpose:   string(code.Purpose),
			Code:      code.Code,
			ExpiresAt: code.ExpiresAt,
			CreatedAt: code.CreatedAt,
		}).Error
	})
}

// DeleteAll removes the pair's codes.
func (s *GormStore) DeleteAll(ctx context.Context, email string, purpose domain.Purpose) (int64, error) {
	res := s.pair(ctx, email, purpose).Delete(&domain.VerificationCodeModel{})
	return res.RowsAffected, res.Error
}

// Purge removes rows created before the cutoff, consumed or not.
func (s *GormStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&domain.VerificationCodeModel{})
	return res.RowsAffected, res.Error
}
