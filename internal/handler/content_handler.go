package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

// CreatePost handles POST /posts.
func (h *Handler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.GetUserID(c), req.ToNewPost())
	if err != nil {
		fail(c, err, "create post")
		return
	}
	response.Created(c, post)
}

// Feed handles GET /posts.
func (h *Handler) Feed(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	posts, err := h.posts.Feed(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		fail(c, err, "load feed")
		return
	}
	response.Paginated(c, posts, page.Page, page.Limit)
}

// GetPost handles GET /posts/:id.
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "get post")
		return
	}
	response.Success(c, post)
}

// TogglePostLike handles POST /posts/:id/like.
func (h *Handler) TogglePostLike(c *gin.Context) {
	res, err := h.posts.ToggleLike(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "toggle post like")
		return
	}
	response.Success(c, res)
}

// CreateComment handles POST /posts/:id/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	var req domain.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err, "create comment")
		return
	}
	response.Created(c, comment)
}

// ListComments handles GET /posts/:id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	comments, err := h.comments.ListByPost(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), page)
	if err != nil {
		fail(c, err, "list comments")
		return
	}
	response.Paginated(c, comments, page.Page, page.Limit)
}

// ListReplies handles GET /comments/:id/replies.
func (h *Handler) ListReplies(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	replies, err := h.comments.ListReplies(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), page)
	if err != nil {
		fail(c, err, "list replies")
		return
	}
	response.Paginated(c, replies, page.Page, page.Limit)
}

// ToggleCommentLike handles POST /comments/:id/like.
func (h *Handler) ToggleCommentLike(c *gin.Context) {
	res, err := h.comments.ToggleLike(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "toggle comment like")
		return
	}
	response.Success(c, res)
}

// UpdateComment handles PATCH /comments/:id.
func (h *Handler) UpdateComment(c *gin.Context) {
	var req domain.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Text)
	if err != nil {
		fail(c, err, "update comment")
		return
	}
	response.Success(c, comment)
}

// DeleteComment handles DELETE /comments/:id.
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		fail(c, err, "delete comment")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateList handles POST /lists.
func (h *Handler) CreateList(c *gin.Context) {
	var req domain.CreateListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.lists.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err, "create list")
		return
	}
	response.Created(c, list)
}

// ListMyLists handles GET /lists.
func (h *Handler) ListMyLists(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	lists, err := h.lists.ListMine(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		fail(c, err, "list lists")
		return
	}
	response.Paginated(c, lists, page.Page, page.Limit)
}

// ListUserLists handles GET /users/:id/lists.
func (h *Handler) ListUserLists(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	lists, err := h.lists.ListByUser(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), page)
	if err != nil {
		fail(c, err, "list user lists")
		return
	}
	response.Paginated(c, lists, page.Page, page.Limit)
}

// UpdateList handles PATCH /lists/:id.
func (h *Handler) UpdateList(c *gin.Context) {
	var req domain.UpdateListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.lists.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err, "update list")
		return
	}
	response.Success(c, list)
}

// ToggleListPost handles POST /lists/:id/posts/:postId.
func (h *Handler) ToggleListPost(c *gin.Context) {
	res, err := h.lists.TogglePost(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), c.Param("postId"))
	if err != nil {
		fail(c, err, "toggle list post")
		return
	}
	response.Success(c, res)
}

// DeleteList handles DELETE /lists/:id.
func (h *Handler) DeleteList(c *gin.Context) {
	if err := h.lists.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		fail(c, err, "delete list")
		return
	}
	c.Status(http.StatusNoContent)
}
