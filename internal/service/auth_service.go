package service

import (
	"context"
	"errors"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/wes-io-social/internal/audit"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/pkg/jwt"
	"github.com/weiawesome/wes-io-social/pkg/log"
)

const (
	handleSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	handleSuffixLength   = 6
	maxHandleLength      = 25
)

// authServiceImpl implements AuthService.
type authServiceImpl struct {
	users  repository.UserRepository
	codes  CodeVerifier
	tokens TokenIssuer
	cost   int
}

// NewAuthService creates a new auth service. A zero cost uses bcrypt.DefaultCost.
func NewAuthService(users repository.UserRepository, codes CodeVerifier, tokens TokenIssuer, cost int) AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &authServiceImpl{users: users, codes: codes, tokens: tokens, cost: cost}
}

// RequestCode issues a verification code for the requested purpose.
func (s *authServiceImpl) RequestCode(ctx context.Context, req *domain.CodeRequest) (*domain.CodeIssue, error) {
	return s.codes.RequestCode(ctx, req.Email, req.Purpose)
}

// SignUp consumes the sign-up code and registers a new identity.
func (s *authServiceImpl) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)
	email := domain.NormalizeEmail(req.Email)

	if err := s.codes.Consume(ctx, email, domain.PurposeSignUp, req.Code); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	handle, err := s.pickHandle(ctx, email)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Handle:       handle,
		Name:         req.Name,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			l.Error().Err(err).Msg("failed to create user")
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignUp, user.ID, "user signed up")
	return s.issue(ctx, user)
}

// pickHandle derives a handle from the email local part, adding a random
// suffix when it is taken. The unique index still guards the insert.
func (s *authServiceImpl) pickHandle(ctx context.Context, email string) (string, error) {
	base := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		base = email[:i]
	}
	if len(base) > maxHandleLength-handleSuffixLength-1 {
		base = base[:maxHandleLength-handleSuffixLength-1]
	}

	taken, err := s.users.ExistsByHandle(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	suffix, err := gonanoid.Generate(handleSuffixAlphabet, handleSuffixLength)
	if err != nil {
		return "", err
	}
	return base + "_" + suffix, nil
}

// SignIn authenticates by email and password.
func (s *authServiceImpl) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)
	email := domain.NormalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionSignInFailed, "", email, "sign in failed: user not found")
			return nil, domain.ErrBadCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionSignInFailed, user.ID, email, "sign in failed: wrong password")
		return nil, domain.ErrBadCredentials
	}

	audit.Log(ctx, audit.ActionSignIn, user.ID, "user signed in")
	return s.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new pair.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	pair, err := s.tokens.RefreshTokens(refreshToken)
	if err != nil {
		l.Warn().Err(err).Msg("failed to refresh token")
		return nil, domain.ErrUnauthorized
	}
	claims, err := s.tokens.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		l.Warn().Err(err).Msg("refreshed token validation failed")
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		l.Error().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to get user after token refresh")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRefreshToken, user.ID, "token refreshed")
	return toAuthResponse(user, pair), nil
}

// SignOut records the sign-out. Tokens are stateless; the transport clears
// the credential cookies.
func (s *authServiceImpl) SignOut(ctx context.Context, userID string) {
	audit.Log(ctx, audit.ActionSignOut, userID, "user signed out")
}

// ForgotPassword consumes the recovery code and sets a new password.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	l := log.Ctx(ctx)
	email := domain.NormalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.codes.Consume(ctx, email, domain.PurposeForgotPassword, req.Code); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash new password")
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to update password")
		return err
	}

	audit.Log(ctx, audit.ActionResetPassword, user.ID, "password reset with recovery code")
	return nil
}

// ResetPassword changes the password after verifying the current one.
func (s *authServiceImpl) ResetPassword(ctx context.Context, userID string, req *domain.ResetPasswordRequest) error {
	l := log.Ctx(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return domain.ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash new password")
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update password")
		return err
	}

	audit.Log(ctx, audit.ActionChangePassword, userID, "password changed")
	return nil
}

// Me returns the signed-in identity's account.
func (s *authServiceImpl) Me(ctx context.Context, userID string) (*domain.AccountView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToAccount(), nil
}

func (s *authServiceImpl) issue(ctx context.Context, user *domain.User) (*domain.AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens")
		return nil, err
	}
	return toAuthResponse(user, pair), nil
}

func toAuthResponse(user *domain.User, pair *jwt.TokenPair) *domain.AuthResponse {
	return &domain.AuthResponse{
		User:             user.ToAccount(),
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		ExpiresAt:        pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
