// Package verification issues and consumes the one-time codes that gate
// sign-up and password recovery.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/weiawesome/wes-io-social/internal/audit"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/mailer"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// DefaultTTL is how long a code stays valid.
const DefaultTTL = 120 * time.Second

const codeDigits = 6

// UserLookup answers whether an email is registered.
type UserLookup interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Service implements the verification code state machine.
type Service struct {
	store   CodeStore
	users   UserLookup
	mailer  mailer.Mailer
	ttl     time.Duration
	now     func() time.Time
	newCode func() (string, error)
}

// NewService creates a verification service. A non-positive ttl uses DefaultTTL.
func NewService(store CodeStore, users UserLookup, m mailer.Mailer, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:   store,
		users:   users,
		mailer:  m,
		ttl:     ttl,
		now:     time.Now,
		newCode: randomCode,
	}
}

// RequestCode issues a code for (email, purpose), or reports the remaining
// lifetime of the active one. The code value is only ever sent by mail.
func (s *Service) RequestCode(ctx context.Context, email string, purpose domain.Purpose) (*domain.CodeIssue, error) {
	if !purpose.Valid() {
		return nil, domain.ErrUnknownPurpose
	}
	email = domain.NormalizeEmail(email)

	if err := s.checkRegistration(ctx, email, purpose); err != nil {
		return nil, err
	}

	now := s.now()
	current, err := s.store.Latest(ctx, email, purpose)
	if err != nil && !errors.Is(err, domain.ErrCodeNotFound) {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if current != nil && current.Active(now) {
		return &domain.CodeIssue{ExpiresInMs: current.ExpiresAt.Sub(now).Milliseconds()}, nil
	}

	value, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	code := &domain.VerificationCode{
		Email:     email,
		Purpose:   purpose,
		Code:      value,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Replace(ctx, code); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	s.send(ctx, email, purpose, value)
	audit.Log(ctx, audit.ActionCodeIssued, "", "verification code issued for "+string(purpose))

	return &domain.CodeIssue{ExpiresInMs: s.ttl.Milliseconds()}, nil
}

// Consume validates supplied against the latest code of the pair and deletes
// every code of the pair on a match. Only one concurrent consumer succeeds.
func (s *Service) Consume(ctx context.Context, email string, purpose domain.Purpose, supplied string) error {
	if !purpose.Valid() {
		return domain.ErrUnknownPurpose
	}
	email = domain.NormalizeEmail(email)

	current, err := s.store.Latest(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return err
		}
		return fmt.Errorf("load code: %w", err)
	}
	if !current.Active(s.now()) {
		return domain.ErrCodeNotFound
	}

	got, err := strconv.ParseUint(strings.TrimSpace(supplied), 10, 64)
	if err != nil {
		return domain.ErrMalformedCode
	}
	want, err := strconv.ParseUint(current.Code, 10, 64)
	if err != nil || got != want {
		return domain.ErrCodeMismatch
	}

	n, err := s.store.DeleteAll(ctx, email, purpose)
	if err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	if n == 0 {
		return domain.ErrCodeNotFound
	}
	return nil
}

func (s *Service) checkRegistration(ctx context.Context, email string, purpose domain.Purpose) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	switch {
	case purpose == domain.PurposeSignUp && exists:
		return domain.ErrEmailTaken
	case purpose == domain.PurposeForgotPassword && !exists:
		return domain.ErrUserNotFound
	}
	return nil
}

// send mails the code without holding up the request.
func (s *Service) send(ctx context.Context, email string, purpose domain.Purpose, code string) {
	ctx = pkglog.Detach(ctx)
	go func() {
		if err := s.mailer.SendCode(ctx, email, purpose, code); err != nil {
			l := pkglog.Ctx(ctx)
			l.Warn().Err(err).Str("purpose", string(purpose)).Msg("failed to send verification code")
		}
	}()
}

// randomCode returns a uniformly random zero-padded 6-digit code.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
