package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

// GetProfile handles GET /users/:id where the segment is a handle.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.users.GetProfile(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "get profile")
		return
	}
	response.Success(c, profile)
}

// ListFollowers handles GET /users/:id/followers.
func (h *Handler) ListFollowers(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	members, err := h.users.ListFollowers(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), page)
	if err != nil {
		fail(c, err, "list followers")
		return
	}
	response.Paginated(c, members, page.Page, page.Limit)
}

// ListFollowing handles GET /users/:id/following.
func (h *Handler) ListFollowing(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	members, err := h.users.ListFollowing(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), page)
	if err != nil {
		fail(c, err, "list following")
		return
	}
	response.Paginated(c, members, page.Page, page.Limit)
}

// UpdateProfile handles PATCH /users/me.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req.ToUpdate())
	if err != nil {
		fail(c, err, "update profile")
		return
	}
	response.Success(c, account)
}

// UpdateAvatar handles PUT /users/me/avatar with a multipart "avatar" file.
func (h *Handler) UpdateAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "avatar file is required")
		return
	}
	if file.Size > h.cfg.MaxAvatarBytes {
		response.BadRequest(c, "avatar file is too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to open avatar upload")
		response.InternalError(c, "failed to read avatar")
		return
	}
	defer f.Close()

	account, err := h.users.UpdateAvatar(ctx, userID, f)
	if err != nil {
		fail(c, err, "update avatar")
		return
	}
	response.Success(c, account)
}

// ToggleFollow handles POST /users/:id/follow.
func (h *Handler) ToggleFollow(c *gin.Context) {
	res, err := h.users.ToggleFollow(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "toggle follow")
		return
	}
	response.Success(c, res)
}

// ToggleBlock handles POST /users/:id/block.
func (h *Handler) ToggleBlock(c *gin.Context) {
	res, err := h.users.ToggleBlock(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "toggle block")
		return
	}
	response.Success(c, res)
}
