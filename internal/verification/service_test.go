package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/internal/testutil"
)

type sentCode struct {
	email   string
	purpose domain.Purpose
	code    string
}

type chanMailer struct {
	sent chan sentCode
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan sentCode, 16)}
}

func (m *chanMailer) SendCode(_ context.Context, email string, purpose domain.Purpose, code string) error {
	m.sent <- sentCode{email: email, purpose: purpose, code: code}
	return nil
}

func (m *chanMailer) next(t *testing.T) sentCode {
	t.Helper()
	select {
	case s := <-m.sent:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no code was mailed")
		return sentCode{}
	}
}

func (m *chanMailer) none(t *testing.T) {
	t.Helper()
	select {
	case s := <-m.sent:
		t.Fatalf("unexpected mail %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	svc    *Service
	store  CodeStore
	mail   *chanMailer
	clock  *clock
	member *domain.User
}

type storeFactory func(t *testing.T, c *clock) CodeStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"database": func(t *testing.T, _ *clock) CodeStore {
			return NewGormStore(testutil.NewDB(t))
		},
		"redis": func(t *testing.T, c *clock) CodeStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			s := NewRedisStore(client)
			s.now = c.now
			return s
		},
	}
}

func newEnv(t *testing.T, factory storeFactory) *env {
	t.Helper()
	db := testutil.NewDB(t)
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := factory(t, c)
	mail := newChanMailer()

	svc := NewService(store, repository.NewGormUserRepository(db), mail, DefaultTTL)
	svc.now = c.now

	return &env{
		svc:    svc,
		store:  store,
		mail:   mail,
		clock:  c,
		member: testutil.CreateUser(t, db, "member"),
	}
}

func TestService_SingleActiveCode(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, factory)
			ctx := context.Background()
			const email = "new@example.com"

			issue, err := e.svc.RequestCode(ctx, email, domain.PurposeSignUp)
			if err != nil {
				t.Fatalf("RequestCode: %v", err)
			}
			if issue.ExpiresInMs != 120_000 {
				t.Errorf("first ttl = %d, want 120000", issue.ExpiresInMs)
			}
			first := e.mail.next(t)

			e.clock.advance(30 * time.Second)
			issue, err = e.svc.RequestCode(ctx, email, domain.PurposeSignUp)
			if err != nil {
				t.Fatalf("second RequestCode: %v", err)
			}
			if issue.ExpiresInMs != 90_000 {
				t.Errorf("second ttl = %d, want 90000", issue.ExpiresInMs)
			}
			e.mail.none(t)

			e.clock.advance(91 * time.Second)
			issue, err = e.svc.RequestCode(ctx, email, domain.PurposeSignUp)
			if err != nil {
				t.Fatalf("third RequestCode: %v", err)
			}
			if issue.ExpiresInMs != 120_000 {
				t.Errorf("ttl after expiry = %d, want 120000", issue.ExpiresInMs)
			}
			second := e.mail.next(t)

			current, err := e.store.Latest(ctx, email, domain.PurposeSignUp)
			if err != nil {
				t.Fatalf("Latest: %v", err)
			}
			if current.Code != second.code {
				t.Errorf("stored code %q, want the newest mailed code %q (first was %q)", current.Code, second.code, first.code)
			}
			if len(second.code) != 6 {
				t.Errorf("code %q is not 6 digits", second.code)
			}
		})
	}
}

func TestService_ConsumeThenReplay(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, factory)
			ctx := context.Background()

			if _, err := e.svc.RequestCode(ctx, e.member.Email, domain.PurposeForgotPassword); err != nil {
				t.Fatalf("RequestCode: %v", err)
			}
			code := e.mail.next(t).code

			if err := e.svc.Consume(ctx, e.member.Email, domain.PurposeForgotPassword, code); err != nil {
				t.Fatalf("Consume: %v", err)
			}
			err := e.svc.Consume(ctx, e.member.Email, domain.PurposeForgotPassword, code)
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("replay err = %v, want NotFound", err)
			}
		})
	}
}

func TestService_RegistrationChecks(t *testing.T) {
	e := newEnv(t, backends()["database"])
	ctx := context.Background()

	tests := []struct {
		name    string
		email   string
		purpose domain.Purpose
		want    error
	}{
		{"sign up registered", e.member.Email, domain.PurposeSignUp, domain.ErrConflict},
		{"sign up registered mixed case", "  MEMBER@example.com ", domain.PurposeSignUp, domain.ErrConflict},
		{"forgot unregistered", "ghost@example.com", domain.PurposeForgotPassword, domain.ErrNotFound},
		{"unknown purpose", "ghost@example.com", domain.Purpose("nope"), domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.RequestCode(ctx, tt.email, tt.purpose)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if _, err := e.store.Latest(ctx, domain.NormalizeEmail(tt.email), tt.purpose); !errors.Is(err, domain.ErrCodeNotFound) {
				t.Errorf("a record was created: %v", err)
			}
		})
	}
	e.mail.none(t)
}

func TestService_ConsumeValidation(t *testing.T) {
	e := newEnv(t, backends()["database"])
	e.svc.newCode = func() (string, error) { return "012345", nil }
	ctx := context.Background()
	const email = "fresh@example.com"

	if err := e.svc.Consume(ctx, email, domain.PurposeSignUp, "123456"); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("consume before request err = %v, want ErrCodeNotFound", err)
	}

	if _, err := e.svc.RequestCode(ctx, email, domain.PurposeSignUp); err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	e.mail.next(t)

	tests := []struct {
		name     string
		supplied string
		want     error
	}{
		{"malformed", "12ab56", domain.ErrInvalidArgument},
		{"mismatch", "999999", domain.ErrInvalidCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.svc.Consume(ctx, email, domain.PurposeSignUp, tt.supplied); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	// A failed attempt leaves the code in place, and the comparison is numeric.
	if err := e.svc.Consume(ctx, email, domain.PurposeSignUp, "12345"); err != nil {
		t.Fatalf("numeric match: %v", err)
	}
}

func TestService_ConsumeExpired(t *testing.T) {
	e := newEnv(t, backends()["database"])
	ctx := context.Background()
	const email = "late@example.com"

	if _, err := e.svc.RequestCode(ctx, email, domain.PurposeSignUp); err != nil {
		t.Fatal(err)
	}
	code := e.mail.next(t).code

	e.clock.advance(DefaultTTL)
	if err := e.svc.Consume(ctx, email, domain.PurposeSignUp, code); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("err = %v, want ErrCodeNotFound", err)
	}
}

func TestReaper_Sweep(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{"default ttl", DefaultTTL},
		{"unset ttl falls back to default", 0},
		{"negative ttl falls back to default", -time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			store := NewGormStore(db)
			ctx := context.Background()
			now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			codes := []*domain.VerificationCode{
				{Email: "old@example.com", Purpose: domain.PurposeSignUp, Code: "111111", CreatedAt: now.Add(-5 * time.Minute), ExpiresAt: now.Add(-3 * time.Minute)},
				{Email: "new@example.com", Purpose: domain.PurposeSignUp, Code: "222222", CreatedAt: now.Add(-time.Second), ExpiresAt: now.Add(time.Minute)},
			}
			for _, c := range codes {
				if err := store.Replace(ctx, c); err != nil {
					t.Fatal(err)
				}
			}

			r := NewReaper(store, tt.ttl, time.Hour)
			r.now = func() time.Time { return now }
			r.sweep(ctx)

			if _, err := store.Latest(ctx, "old@example.com", domain.PurposeSignUp); !errors.Is(err, domain.ErrCodeNotFound) {
				t.Errorf("old code survived: %v", err)
			}
			if _, err := store.Latest(ctx, "new@example.com", domain.PurposeSignUp); err != nil {
				t.Errorf("fresh code purged: %v", err)
			}
		})
	}
}

func TestReaper_StartStop(t *testing.T) {
	r := NewReaper(NewGormStore(testutil.NewDB(t)), DefaultTTL, time.Millisecond)
	r.Start(context.Background())
	time.Sleep(5 * time.Millisecond)
	r.Stop()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
