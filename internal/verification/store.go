package verification

import (
	"context"
	"time"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

// CodeStore persists verification codes keyed by (email, purpose).
type CodeStore interface {
	// Latest returns the most recent code for the pair, or
	// domain.ErrCodeNotFound when there is none.
	Latest(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error)
	// Replace removes every code of the pair and stores code.
	Replace(ctx context.Context, code *domain.VerificationCode) error
	// DeleteAll removes every code of the pair and reports how many went.
	DeleteAll(ctx context.Context, email string, purpose domain.Purpose) (int64, error)
	// Purge removes codes created before the cutoff.
	Purge(ctx context.Context, before time.Time) (int64, error)
}
