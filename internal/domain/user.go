package domain

import (
	"strings"
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Handle       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Bio          string    `gorm:"type:varchar(500)"`
	Avatar       string    `gorm:"type:varchar(512)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		Handle:       m.Handle,
		Name:         m.Name,
		Bio:          m.Bio,
		Avatar:       m.Avatar,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Handle:       u.Handle,
		Name:         u.Name,
		Bio:          u.Bio,
		Avatar:       u.Avatar,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// User is an identity. Its follower, following and blocked sets live in the
// follows and blocks tables.
type User struct {
	ID           string
	Email        string
	Handle       string
	Name         string
	Bio          string
	Avatar       string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate carries the optional fields of a profile edit.
type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Handle *string
	Email  *string
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
