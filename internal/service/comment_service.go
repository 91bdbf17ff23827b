package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-social/internal/audit"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/projection"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/pkg/log"
)

// commentServiceImpl implements CommentService.
type commentServiceImpl struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	likes    repository.LikeRepository
	users    repository.UserRepository
	graph    Relationships
	events   EventPublisher
}

// NewCommentService creates a new comment service.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	graph Relationships,
	events EventPublisher,
) CommentService {
	return &commentServiceImpl{comments: comments, posts: posts, likes: likes, users: users, graph: graph, events: events}
}

// Create comments on a visible post and notifies the post creator.
func (s *commentServiceImpl) Create(ctx context.Context, userID, postID string, req *domain.CreateCommentRequest) (*domain.CommentView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := visible(ctx, s.graph, userID, post.CreatorID); err != nil {
		return nil, err
	}

	if req.ParentID != "" {
		parent, err := s.comments.GetByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, domain.ErrParentMismatch
		}
	}

	comment := &domain.Comment{
		PostID:    postID,
		ParentID:  req.ParentID,
		CreatorID: userID,
		Text:      req.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Str("post_id", postID).Msg("failed to create comment")
		return nil, err
	}

	if post.CreatorID != userID {
		s.events.Publish(ctx, domain.ActivityEvent{
			Type:        domain.NotificationComment,
			InitiatorID: userID,
			TargetID:    post.CreatorID,
			Image:       post.Image,
			OccurredAt:  time.Now(),
		})
	}

	return s.renderOne(ctx, userID, comment)
}

// ListByPost lists the top-level comments of a visible post.
func (s *commentServiceImpl) ListByPost(ctx context.Context, viewerID, postID string, page domain.Page) ([]domain.CommentView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, viewerID, post, "", page)
}

// ListReplies lists the direct replies to a comment.
func (s *commentServiceImpl) ListReplies(ctx context.Context, viewerID, commentID string, page domain.Page) ([]domain.CommentView, error) {
	parent, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, parent.PostID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, viewerID, post, parent.ID, page)
}

func (s *commentServiceImpl) list(ctx context.Context, viewerID string, post *domain.Post, parentID string, page domain.Page) ([]domain.CommentView, error) {
	page = page.Normalize()

	viewer, err := s.graph.Viewer(ctx, viewerID, nil)
	if err != nil {
		return nil, err
	}
	if projection.Suppressed(post.CreatorID, viewer) {
		return nil, domain.ErrBlocked
	}

	hidden := projection.Hidden(viewer)
	comments, err := s.comments.List(ctx, post.ID, parentID, hidden, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, viewer, hidden, comments)
}

// render loads creators, likes and reply counts and projects comments.
func (s *commentServiceImpl) render(ctx context.Context, viewer *domain.Viewer, hidden []string, comments []*domain.Comment) ([]domain.CommentView, error) {
	ids := make([]string, len(comments))
	creatorIDs := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		creatorIDs[i] = c.CreatorID
	}

	var (
		users   map[string]*domain.User
		likedBy map[string]domain.IDSet
		replies map[string]int64
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		users, err = s.users.GetByIDs(egCtx, creatorIDs)
		return err
	})
	eg.Go(func() (err error) {
		likedBy, err = s.likes.LikedBy(egCtx, domain.KindComment, ids)
		return err
	})
	eg.Go(func() (err error) {
		replies, err = s.comments.CountReplies(egCtx, ids, hidden)
		return err
	})
	eg.Go(func() error {
		return s.graph.Extend(egCtx, viewer, creatorIDs)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, c := range comments {
		c.LikedBy = likedBy[c.ID]
	}
	return projection.Comments(comments, users, replies, viewer), nil
}

func (s *commentServiceImpl) renderOne(ctx context.Context, viewerID string, comment *domain.Comment) (*domain.CommentView, error) {
	viewer, err := s.graph.Viewer(ctx, viewerID, nil)
	if err != nil {
		return nil, err
	}
	views, err := s.render(ctx, viewer, projection.Hidden(viewer), []*domain.Comment{comment})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domain.ErrCommentNotFound
	}
	return &views[0], nil
}

// ToggleLike flips userID's like of a visible comment.
func (s *commentServiceImpl) ToggleLike(ctx context.Context, userID, commentID string) (*domain.LikeResult, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := visible(ctx, s.graph, userID, comment.CreatorID); err != nil {
		return nil, err
	}
	return toggleLike(ctx, s.likes, domain.KindComment, commentID, userID)
}

// Update replaces the text of the caller's own comment.
func (s *commentServiceImpl) Update(ctx context.Context, userID, commentID, text string) (*domain.CommentView, error) {
	comment, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	updated, err := s.comments.UpdateText(ctx, comment.ID, text)
	if err != nil {
		return nil, err
	}
	return s.renderOne(ctx, userID, updated)
}

// Delete removes the caller's own comment with all of its replies.
func (s *commentServiceImpl) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.owned(ctx, userID, commentID)
	if err != nil {
		return err
	}
	n, err := s.comments.DeleteTree(ctx, comment.ID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Str("comment_id", commentID).Msg("failed to delete comment")
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteComment, userID, commentID, "comment deleted")
	l := log.Ctx(ctx)
	l.Debug().Int64("removed", n).Str("comment_id", commentID).Msg("comment tree deleted")
	return nil
}

func (s *commentServiceImpl) owned(ctx context.Context, userID, commentID string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.CreatorID != userID {
		return nil, domain.ErrNotOwner
	}
	return comment, nil
}
