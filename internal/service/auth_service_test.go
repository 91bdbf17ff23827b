package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

func (e *env) signUp(t *testing.T, name, email, password string) *domain.AuthResponse {
	t.Helper()
	ctx := context.Background()
	if _, err := e.auth.RequestCode(ctx, &domain.CodeRequest{Email: email, Purpose: domain.PurposeSignUp}); err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	resp, err := e.auth.SignUp(ctx, &domain.SignUpRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Code:     e.mailer.await(t, domain.NormalizeEmail(email)),
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return resp
}

func TestAuthService_SignUpAndSignIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	resp := e.signUp(t, "Alice", "Alice@Example.com", "password123")
	if resp.User.Email != "alice@example.com" || resp.User.Handle != "alice" {
		t.Errorf("account = %+v", resp.User)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("no tokens issued")
	}
	claims, err := e.tokens.ValidateAccessToken(resp.AccessToken)
	if err != nil || claims.UserID != resp.User.ID {
		t.Fatalf("access token claims = %+v, %v", claims, err)
	}

	// Same local part on another domain gets a suffixed handle.
	other := e.signUp(t, "Alice Two", "alice@elsewhere.org", "password123")
	if !strings.HasPrefix(other.User.Handle, "alice_") || len(other.User.Handle) != len("alice_")+handleSuffixLength {
		t.Errorf("collision handle = %q", other.User.Handle)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"ok", "alice@example.com", "password123", nil},
		{"mixed case email", " ALICE@example.com", "password123", nil},
		{"wrong password", "alice@example.com", "nope-nope", domain.ErrUnauthorized},
		{"unknown email", "ghost@example.com", "password123", domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.auth.SignIn(ctx, &domain.SignInRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.User.ID != resp.User.ID {
				t.Errorf("signed in as %s", got.User.ID)
			}
		})
	}
}

func TestAuthService_SignUpRequiresValidCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	req := &domain.SignUpRequest{Name: "Bob", Email: "bob@example.com", Password: "password123", Code: "123456"}
	if _, err := e.auth.SignUp(ctx, req); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("sign up without code err = %v, want NotFound", err)
	}

	if _, err := e.auth.RequestCode(ctx, &domain.CodeRequest{Email: req.Email, Purpose: domain.PurposeSignUp}); err != nil {
		t.Fatal(err)
	}
	code := e.mailer.await(t, req.Email)

	req.Code = "000000"
	if code == req.Code {
		req.Code = "000001"
	}
	if _, err := e.auth.SignUp(ctx, req); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("wrong code err = %v, want InvalidCode", err)
	}

	req.Code = code
	if _, err := e.auth.SignUp(ctx, req); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, err := e.auth.RequestCode(ctx, &domain.CodeRequest{Email: req.Email, Purpose: domain.PurposeSignUp})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("code for registered email err = %v, want Conflict", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	resp := e.signUp(t, "Carol", "carol@example.com", "password123")

	refreshed, err := e.auth.Refresh(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.User.ID != resp.User.ID || refreshed.AccessToken == "" {
		t.Errorf("refreshed = %+v", refreshed)
	}

	if _, err := e.auth.Refresh(ctx, resp.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("refresh with access token err = %v, want Unauthorized", err)
	}
	if _, err := e.auth.Refresh(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("refresh with garbage err = %v, want Unauthorized", err)
	}
}

func TestAuthService_Passwords(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	resp := e.signUp(t, "Dave", "dave@example.com", "password123")
	id := resp.User.ID

	err := e.auth.ResetPassword(ctx, id, &domain.ResetPasswordRequest{CurrentPassword: "wrong-one", NewPassword: "newpassword1"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("wrong current password err = %v, want InvalidArgument", err)
	}
	if err := e.auth.ResetPassword(ctx, id, &domain.ResetPasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := e.auth.SignIn(ctx, &domain.SignInRequest{Email: "dave@example.com", Password: "newpassword1"}); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}

	if _, err := e.auth.RequestCode(ctx, &domain.CodeRequest{Email: "dave@example.com", Purpose: domain.PurposeForgotPassword}); err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	code := e.mailer.await(t, "dave@example.com")
	if err := e.auth.ForgotPassword(ctx, &domain.ForgotPasswordRequest{Email: "dave@example.com", Password: "recovered12", Code: code}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if _, err := e.auth.SignIn(ctx, &domain.SignInRequest{Email: "dave@example.com", Password: "recovered12"}); err != nil {
		t.Fatalf("sign in after recovery: %v", err)
	}

	err = e.auth.ForgotPassword(ctx, &domain.ForgotPasswordRequest{Email: "dave@example.com", Password: "again12345", Code: code})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("replayed recovery code err = %v, want NotFound", err)
	}
}
