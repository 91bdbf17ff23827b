package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

// RequestCode handles POST /auth/code.
func (h *Handler) RequestCode(c *gin.Context) {
	var req domain.CodeRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.auth.RequestCode(c.Request.Context(), &req)
	if err != nil {
		fail(c, err, "request code")
		return
	}
	response.Success(c, issue)
}

// SignUp handles POST /auth/sign-up.
func (h *Handler) SignUp(c *gin.Context) {
	var req domain.SignUpRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.SignUp(c.Request.Context(), &req)
	if err != nil {
		fail(c, err, "sign up")
		return
	}
	h.setAuthCookies(c, res)
	response.Created(c, res)
}

// SignIn handles POST /auth/sign-in.
func (h *Handler) SignIn(c *gin.Context) {
	var req domain.SignInRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.SignIn(c.Request.Context(), &req)
	if err != nil {
		fail(c, err, "sign in")
		return
	}
	h.setAuthCookies(c, res)
	response.Success(c, res)
}

// Refresh handles POST /auth/refresh. The refresh token comes from the body
// or, when absent, from the refreshToken cookie.
func (h *Handler) Refresh(c *gin.Context) {
	var req domain.RefreshRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		if ck, err := c.Cookie(middleware.RefreshCookie); err == nil {
			req.RefreshToken = ck
		}
	}
	if req.RefreshToken == "" {
		response.Unauthorized(c, "missing refresh token")
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err, "refresh token")
		return
	}
	h.setAuthCookies(c, res)
	response.Success(c, res)
}

// SignOut handles POST /auth/sign-out.
func (h *Handler) SignOut(c *gin.Context) {
	if userID := middleware.GetUserID(c); userID != "" {
		h.auth.SignOut(c.Request.Context(), userID)
	}
	h.clearAuthCookies(c)
	response.Success(c, gin.H{"message": "signed out"})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req domain.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), &req); err != nil {
		fail(c, err, "reset forgotten password")
		return
	}
	response.Success(c, gin.H{"message": "password updated"})
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req domain.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), userID, &req); err != nil {
		fail(c, err, "change password")
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	account, err := h.auth.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err, "get account")
		return
	}
	response.Success(c, account)
}

func (h *Handler) setAuthCookies(c *gin.Context, res *domain.AuthResponse) {
	now := time.Now()
	h.setCookie(c, middleware.AccessCookie, res.AccessToken, res.ExpiresAt.Sub(now))
	h.setCookie(c, middleware.RefreshCookie, res.RefreshToken, res.RefreshExpiresAt.Sub(now))
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessCookie, "", -time.Second)
	h.setCookie(c, middleware.RefreshCookie, "", -time.Second)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}
