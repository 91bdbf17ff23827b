package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiawesome/wes-io-social/pkg/jwt"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

const (
	UserIDKey      = "user_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	AccessCookie   = "accessToken"
	RefreshCookie  = "refreshToken"
	TokenQueryName = "token"
)

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware validates bearer tokens in process.
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth rejects requests without a valid access token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c.Request)
		if token == "" {
			response.Unauthorized(c, "missing access token")
			c.Abort()
			return
		}

		claims, err := m.validator.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user when a valid token is present and never rejects.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c.Request); token != "" {
			if claims, err := m.validator.ValidateAccessToken(token); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// Authenticate validates the request credential outside of gin.
func (m *AuthMiddleware) Authenticate(r *http.Request) (string, error) {
	token := ExtractToken(r)
	if token == "" {
		return "", jwt.ErrInvalidToken
	}
	claims, err := m.validator.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ExtractToken reads the credential from the Authorization header, the
// accessToken cookie or the token query parameter, in that order.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get(AuthHeaderKey); h != "" {
		return stripBearer(h)
	}
	if ck, err := r.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return stripBearer(ck.Value)
	}
	return strings.TrimSpace(r.URL.Query().Get(TokenQueryName))
}

func stripBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= len(BearerPrefix) && strings.EqualFold(v[:len(BearerPrefix)], BearerPrefix) {
		return strings.TrimSpace(v[len(BearerPrefix):])
	}
	return v
}

// GetUserID extracts the authenticated user ID from the Gin context.
// Empty for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
