package service

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-social/internal/audit"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/projection"
	"github.com/weiawesome/wes-io-social/internal/repository"
	"github.com/weiawesome/wes-io-social/pkg/log"
)

// userServiceImpl implements UserService.
type userServiceImpl struct {
	users   repository.UserRepository
	graph   Relationships
	avatars AvatarProcessor
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, graph Relationships, avatars AvatarProcessor) UserService {
	return &userServiceImpl{users: users, graph: graph, avatars: avatars}
}

// GetProfile returns the profile of handle relative to viewerID.
func (s *userServiceImpl) GetProfile(ctx context.Context, viewerID, handle string) (*domain.ProfileView, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	var (
		counts domain.EdgeCounts
		viewer *domain.Viewer
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		counts, err = s.graph.Counts(egCtx, user.ID)
		return err
	})
	eg.Go(func() (err error) {
		viewer, err = s.graph.Viewer(egCtx, viewerID, []string{user.ID})
		return err
	})
	if err := eg.Wait(); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldTargetID, user.ID).Msg("failed to load profile")
		return nil, err
	}

	view := projection.Profile(user, counts, viewer)
	return &view, nil
}

// ListFollowers lists userID's followers, each projected relative to viewerID.
func (s *userServiceImpl) ListFollowers(ctx context.Context, viewerID, userID string, page domain.Page) ([]domain.MemberView, error) {
	return s.listMembers(ctx, viewerID, userID, page, s.graph.ListFollowers)
}

// ListFollowing lists who userID follows, each projected relative to viewerID.
func (s *userServiceImpl) ListFollowing(ctx context.Context, viewerID, userID string, page domain.Page) ([]domain.MemberView, error) {
	return s.listMembers(ctx, viewerID, userID, page, s.graph.ListFollowing)
}

func (s *userServiceImpl) listMembers(
	ctx context.Context,
	viewerID, userID string,
	page domain.Page,
	list func(context.Context, string, domain.Page) ([]string, error),
) ([]domain.MemberView, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ids, err := list(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	var (
		users  map[string]*domain.User
		viewer *domain.Viewer
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		users, err = s.users.GetByIDs(egCtx, ids)
		return err
	})
	eg.Go(func() (err error) {
		viewer, err = s.graph.Viewer(egCtx, viewerID, ids)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return projection.Members(ids, users, viewer), nil
}

// UpdateProfile applies the provided fields. Email and handle stay unique.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.AccountView, error) {
	l := log.Ctx(ctx)

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil {
		email := domain.NormalizeEmail(*upd.Email)
		upd.Email = &email
		if email != current.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.ErrEmailTaken
			}
		}
	}
	if upd.Handle != nil && *upd.Handle != current.Handle {
		taken, err := s.users.ExistsByHandle(ctx, *upd.Handle)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrHandleTaken
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update profile")
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")
	return user.ToAccount(), nil
}

// UpdateAvatar stores a new avatar image and points the profile at it.
func (s *userServiceImpl) UpdateAvatar(ctx context.Context, userID string, r io.Reader) (*domain.AccountView, error) {
	url, err := s.avatars.Process(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionUpdateAvatar, userID, url, "avatar updated")
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToAccount(), nil
}

// ToggleFollow flips actorID's follow of targetID.
func (s *userServiceImpl) ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error) {
	return s.graph.ToggleFollow(ctx, actorID, targetID)
}

// ToggleBlock flips actorID's block of targetID.
func (s *userServiceImpl) ToggleBlock(ctx context.Context, actorID, targetID string) (*domain.BlockResult, error) {
	return s.graph.ToggleBlock(ctx, actorID, targetID)
}
