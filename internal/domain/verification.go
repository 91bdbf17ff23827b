package domain

import "time"

// Purpose scopes a verification code.
type Purpose string

const (
	PurposeSignUp         Purpose = "sign_up"
	PurposeForgotPassword Purpose = "forgot_password"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeSignUp || p == PurposeForgotPassword
}

// VerificationCodeModel is the GORM model for verification_codes.
type VerificationCodeModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"type:varchar(255);not null;index:idx_verification_pair"`
	Purpose   string    `gorm:"type:varchar(32);not null;index:idx_verification_pair"`
	Code      string    `gorm:"type:varchar(6);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (VerificationCodeModel) TableName() string { return "verification_codes" }

func (m *VerificationCodeModel) ToDomain() *VerificationCode {
	return &VerificationCode{
		Email:     m.Email,
		Purpose:   Purpose(m.Purpose),
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

// VerificationCode is a one-time code for (Email, Purpose).
type VerificationCode struct {
	Email     string    `json:"email"`
	Purpose   Purpose   `json:"purpose"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Active reports whether the code is still usable at now.
func (c *VerificationCode) Active(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// CodeIssue is returned to the requester. The code itself travels by mail.
type CodeIssue struct {
	ExpiresInMs int64 `json:"expiresInMs"`
}
