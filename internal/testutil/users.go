package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"gorm.io/gorm"
)

// CreateUser inserts an identity whose handle, name and email derive from handle.
func CreateUser(t testing.TB, db *gorm.DB, handle string) *domain.User {
	t.Helper()

	model := &domain.UserModel{
		ID:           uuid.New().String(),
		Email:        handle + "@example.com",
		Handle:       handle,
		Name:         handle,
		PasswordHash: "x",
	}
	if err := db.Create(model).Error; err != nil {
		t.Fatalf("create user %s: %v", handle, err)
	}
	return model.ToDomain()
}
