package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/projection"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/pkg/log"
)

// postServiceImpl implements PostService.
type postServiceImpl struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	lists    repository.ListRepository
	users    repository.UserRepository
	graph    Relationships
}

// NewPostService creates a new post service.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	lists repository.ListRepository,
	users repository.UserRepository,
	graph Relationships,
) PostService {
	return &postServiceImpl{posts: posts, comments: comments, likes: likes, lists: lists, users: users, graph: graph}
}

// Create stores a post by creatorID.
func (s *postServiceImpl) Create(ctx context.Context, creatorID string, in domain.NewPost) (*domain.PostView, error) {
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		CreatorID:   creatorID,
		Title:       in.Title,
		Body:        in.Body,
		Description: in.Description,
		Tags:        in.Tags,
		Image:       in.Image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, creatorID).Msg("failed to create post")
		return nil, err
	}

	viewer, err := s.graph.Viewer(ctx, creatorID, nil)
	if err != nil {
		return nil, err
	}
	view := projection.Post(post, creator, viewer)
	var zero int64
	view.CommentsCount = &zero
	return &view, nil
}

// Feed returns posts newest first with suppressed creators filtered out
// before the page window is applied.
func (s *postServiceImpl) Feed(ctx context.Context, viewerID string, page domain.Page) ([]domain.PostView, error) {
	page = page.Normalize()

	viewer, err := s.graph.Viewer(ctx, viewerID, nil)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx, projection.Hidden(viewer), page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	users, err := s.decorate(ctx, viewer, posts)
	if err != nil {
		return nil, err
	}
	return projection.Posts(posts, users, viewer), nil
}

// Get returns one post. A post across a block is Forbidden.
func (s *postServiceImpl) Get(ctx context.Context, viewerID, postID string) (*domain.PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	viewer, err := s.graph.Viewer(ctx, viewerID, nil)
	if err != nil {
		return nil, err
	}
	if projection.Suppressed(post.CreatorID, viewer) {
		return nil, domain.ErrBlocked
	}

	hidden := projection.Hidden(viewer)
	var commentsCount int64
	var users map[string]*domain.User
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		users, err = s.decorate(egCtx, viewer, []*domain.Post{post})
		return err
	})
	eg.Go(func() (err error) {
		commentsCount, err = s.comments.CountByPost(egCtx, postID, hidden)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	creator, ok := users[post.CreatorID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	view := projection.Post(post, creator, viewer)
	view.CommentsCount = &commentsCount
	return &view, nil
}

// ToggleLike flips userID's like of a visible post.
func (s *postServiceImpl) ToggleLike(ctx context.Context, userID, postID string) (*domain.LikeResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := visible(ctx, s.graph, userID, post.CreatorID); err != nil {
		return nil, err
	}
	return toggleLike(ctx, s.likes, domain.KindPost, postID, userID)
}

// decorate loads creators, likes and bookmarks of posts, filling viewer's
// follow and bookmark sets for them.
func (s *postServiceImpl) decorate(ctx context.Context, viewer *domain.Viewer, posts []*domain.Post) (map[string]*domain.User, error) {
	postIDs := make([]string, len(posts))
	creatorIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		creatorIDs[i] = p.CreatorID
	}

	var (
		users      map[string]*domain.User
		likedBy    map[string]domain.IDSet
		bookmarked []string
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		users, err = s.users.GetByIDs(egCtx, creatorIDs)
		return err
	})
	eg.Go(func() (err error) {
		likedBy, err = s.likes.LikedBy(egCtx, domain.KindPost, postIDs)
		return err
	})
	eg.Go(func() error {
		return s.graph.Extend(egCtx, viewer, creatorIDs)
	})
	if viewer != nil {
		eg.Go(func() (err error) {
			bookmarked, err = s.lists.BookmarkedAmong(egCtx, viewer.ID, postIDs)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, p := range posts {
		p.LikedBy = likedBy[p.ID]
	}
	if viewer != nil {
		viewer.Bookmarked = domain.NewIDSet(bookmarked...)
	}
	return users, nil
}

// visible fails with Forbidden when a block separates viewerID and creatorID.
func visible(ctx context.Context, graph Relationships, viewerID, creatorID string) error {
	viewer, err := graph.Viewer(ctx, viewerID, nil)
	if err != nil {
		return err
	}
	if projection.Suppressed(creatorID, viewer) {
		return domain.ErrBlocked
	}
	return nil
}

func toggleLike(ctx context.Context, likes repository.LikeRepository, kind, contentID, userID string) (*domain.LikeResult, error) {
	liked, err := likes.Toggle(ctx, kind, contentID, userID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldUserID, userID).Str("content_id", contentID).Msg("failed to toggle like")
		return nil, err
	}
	count, err := likes.Count(ctx, kind, contentID)
	if err != nil {
		return nil, err
	}
	return &domain.LikeResult{Liked: liked, LikesCount: count}, nil
}
