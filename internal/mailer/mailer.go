// Package mailer delivers verification codes out of band.
package mailer

import (
	"context"

	"github.com/weiawesome/wes-io-social/internal/domain"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// Mailer sends a verification code to an email address.
type Mailer interface {
	SendCode(ctx context.Context, email string, purpose domain.Purpose, code string) error
}

// LogMailer writes codes to the log instead of sending mail. Used in
// development and when no mail transport is configured.
type LogMailer struct{}

// NewLogMailer creates a LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendCode logs the code at info level.
func (m *LogMailer) SendCode(ctx context.Context, email string, purpose domain.Purpose, code string) error {
	l := pkglog.Ctx(ctx)
	l.Info().
		Str("email", email).
		Str("purpose", string(purpose)).
		Str("code", code).
		Msg("verification code issued")
	return nil
}
