package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/service"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

// NotificationService reads and acknowledges stored notifications.
type NotificationService interface {
	List(ctx context.Context, userID string, page domain.Page) ([]domain.NotificationView, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Services groups the application services behind the REST API.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Posts         service.PostService
	Comments      service.CommentService
	Lists         service.ListService
	Notifications NotificationService
}

// Config tunes cookies and uploads.
type Config struct {
	CookieDomain   string
	CookieSecure   bool
	MaxAvatarBytes int64
}

// Handler handles HTTP requests for the social API.
type Handler struct {
	auth           service.AuthService
	users          service.UserService
	posts          service.PostService
	comments       service.CommentService
	lists          service.ListService
	notifications  NotificationService
	authMiddleware *middleware.AuthMiddleware
	cfg            Config
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware, cfg Config) *Handler {
	if cfg.MaxAvatarBytes <= 0 {
		cfg.MaxAvatarBytes = 5 << 20
	}
	return &Handler{
		auth:           svc.Auth,
		users:          svc.Users,
		posts:          svc.Posts,
		comments:       svc.Comments,
		lists:          svc.Lists,
		notifications:  svc.Notifications,
		authMiddleware: authMiddleware,
		cfg:            cfg,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	requireAuth := h.authMiddleware.RequireAuth()
	optionalAuth := h.authMiddleware.OptionalAuth()

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/code", h.RequestCode)
			auth.POST("/sign-up", h.SignUp)
			auth.POST("/sign-in", h.SignIn)
			auth.POST("/refresh", h.Refresh)
			auth.POST("/sign-out", optionalAuth, h.SignOut)
			auth.POST("/forgot-password", h.ForgotPassword)
			auth.POST("/reset-password", requireAuth, h.ResetPassword)
			auth.GET("/me", requireAuth, h.Me)
		}

		// GET /users/:id takes a handle; the other :id routes take a user id.
		users := api.Group("/users")
		{
			users.GET("/:id", optionalAuth, h.GetProfile)
			users.GET("/:id/followers", optionalAuth, h.ListFollowers)
			users.GET("/:id/following", optionalAuth, h.ListFollowing)
			users.GET("/:id/lists", optionalAuth, h.ListUserLists)
			users.PATCH("/me", requireAuth, h.UpdateProfile)
			users.PUT("/me/avatar", requireAuth, h.UpdateAvatar)
			users.POST("/:id/follow", requireAuth, h.ToggleFollow)
			users.POST("/:id/block", requireAuth, h.ToggleBlock)
		}

		posts := api.Group("/posts")
		{
			posts.POST("", requireAuth, h.CreatePost)
			posts.GET("", optionalAuth, h.Feed)
			posts.GET("/:id", optionalAuth, h.GetPost)
			posts.POST("/:id/like", requireAuth, h.TogglePostLike)
			posts.POST("/:id/comments", requireAuth, h.CreateComment)
			posts.GET("/:id/comments", optionalAuth, h.ListComments)
		}

		comments := api.Group("/comments")
		{
			comments.GET("/:id/replies", optionalAuth, h.ListReplies)
			comments.POST("/:id/like", requireAuth, h.ToggleCommentLike)
			comments.PATCH("/:id", requireAuth, h.UpdateComment)
			comments.DELETE("/:id", requireAuth, h.DeleteComment)
		}

		lists := api.Group("/lists")
		lists.Use(requireAuth)
		{
			lists.POST("", h.CreateList)
			lists.GET("", h.ListMyLists)
			lists.PATCH("/:id", h.UpdateList)
			lists.POST("/:id/posts/:postId", h.ToggleListPost)
			lists.DELETE("/:id", h.DeleteList)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}
	}
}

// RegisterHealth registers the liveness probe.
func RegisterHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// bindPage reads page and limit from the query string.
func bindPage(c *gin.Context) (domain.Page, bool) {
	var page domain.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, "page and limit must be integers")
		return page, false
	}
	return page.Normalize(), true
}
