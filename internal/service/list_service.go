package service

import (
	"context"

	"github.com/weiawesome/wes-io-social/internal/audit"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/repository"
)

// listServiceImpl implements ListService.
type listServiceImpl struct {
	lists repository.ListRepository
	posts repository.PostRepository
	graph Relationships
}

// NewListService creates a new list service.
func NewListService(lists repository.ListRepository, posts repository.PostRepository, graph Relationships) ListService {
	return &listServiceImpl{lists: lists, posts: posts, graph: graph}
}

// Create makes a bookmark list owned by userID.
func (s *listServiceImpl) Create(ctx context.Context, userID string, req *domain.CreateListRequest) (*domain.List, error) {
	list := &domain.List{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListMine returns userID's lists with their post counts.
func (s *listServiceImpl) ListMine(ctx context.Context, userID string, page domain.Page) ([]*domain.List, error) {
	page = page.Normalize()
	return s.lists.ListByCreator(ctx, userID, page.Offset(), page.Limit)
}

// ListByUser returns another user's lists. A block in either direction is Forbidden.
func (s *listServiceImpl) ListByUser(ctx context.Context, viewerID, userID string, page domain.Page) ([]*domain.List, error) {
	if err := visible(ctx, s.graph, viewerID, userID); err != nil {
		return nil, err
	}
	page = page.Normalize()
	return s.lists.ListByCreator(ctx, userID, page.Offset(), page.Limit)
}

// Update renames the caller's list or changes its description.
func (s *listServiceImpl) Update(ctx context.Context, userID, listID string, req *domain.UpdateListRequest) (*domain.List, error) {
	if _, err := s.owned(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.lists.Update(ctx, listID, req.Name, req.Description)
}

// TogglePost adds or removes a visible post in the caller's list.
func (s *listServiceImpl) TogglePost(ctx context.Context, userID, listID, postID string) (*domain.ListToggleResult, error) {
	if _, err := s.owned(ctx, userID, listID); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := visible(ctx, s.graph, userID, post.CreatorID); err != nil {
		return nil, err
	}

	saved, err := s.lists.TogglePost(ctx, listID, postID)
	if err != nil {
		return nil, err
	}
	return &domain.ListToggleResult{Saved: saved}, nil
}

// Delete removes the caller's list.
func (s *listServiceImpl) Delete(ctx context.Context, userID, listID string) error {
	if _, err := s.owned(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.lists.Delete(ctx, listID); err != nil {
		return err
	}
	audit.LogWithDetail(ctx, audit.ActionDeleteList, userID, listID, "list deleted")
	return nil
}

func (s *listServiceImpl) owned(ctx context.Context, userID, listID string) (*domain.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.CreatorID != userID {
		return nil, domain.ErrNotOwner
	}
	return list, nil
}
