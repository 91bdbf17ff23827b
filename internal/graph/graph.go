// Package graph owns the follow and block relationships between identities.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-social/internal/audit"
	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/repository"
	pkglog "github.com/weiawesome/wes-io-social/pkg/log"
)

// EventPublisher receives activity events. Publish must not block on consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ActivityEvent)
}

// Graph implements the relationship graph operations.
type Graph struct {
	users  repository.UserRepository
	edges  repository.GraphRepository
	events EventPublisher
	counts CountsCache
	now    func() time.Time
}

// New creates a Graph. counts may be nil.
func New(users repository.UserRepository, edges repository.GraphRepository, events EventPublisher, counts CountsCache) *Graph {
	if counts == nil {
		counts = noopCounts{}
	}
	return &Graph{users: users, edges: edges, events: events, counts: counts, now: time.Now}
}

// ToggleFollow flips actor's follow of target. A block in either direction
// forbids it. A Followed event is published only when the edge is created.
func (g *Graph) ToggleFollow(ctx context.Context, actorID, targetID string) (*domain.FollowResult, error) {
	l := pkglog.Ctx(ctx)

	if err := g.resolvePair(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	now, err := g.edges.ToggleFollow(ctx, actorID, targetID)
	if errors.Is(err, domain.ErrBlocked) {
		return nil, err
	}
	if err != nil {
		l.Error().Err(err).
			Str(pkglog.FieldUserID, actorID).
			Str(pkglog.FieldTargetID, targetID).
			Msg("failed to toggle follow")
		return nil, err
	}

	g.counts.Invalidate(ctx, actorID, targetID)

	if now {
		audit.LogTarget(ctx, audit.ActionFollow, actorID, targetID, "followed user")
		g.events.Publish(ctx, domain.ActivityEvent{
			Type:        domain.NotificationFollow,
			InitiatorID: actorID,
			TargetID:    targetID,
			OccurredAt:  g.now(),
		})
	} else {
		audit.LogTarget(ctx, audit.ActionUnfollow, actorID, targetID, "unfollowed user")
	}

	return &domain.FollowResult{NowFollowing: now}, nil
}

// ToggleBlock flips actor's block of target. Existing follow edges stay in
// place and are neutralised by visibility rules. No event is published.
func (g *Graph) ToggleBlock(ctx context.Context, actorID, targetID string) (*domain.BlockResult, error) {
	if err := g.resolvePair(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	now, err := g.edges.ToggleBlock(ctx, actorID, targetID)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).
			Str(pkglog.FieldUserID, actorID).
			Str(pkglog.FieldTargetID, targetID).
			Msg("failed to toggle block")
		return nil, err
	}

	if now {
		audit.LogTarget(ctx, audit.ActionBlock, actorID, targetID, "blocked user")
	} else {
		audit.LogTarget(ctx, audit.ActionUnblock, actorID, targetID, "unblocked user")
	}
	return &domain.BlockResult{NowBlocked: now}, nil
}

// resolvePair checks that actor and target differ and both exist.
func (g *Graph) resolvePair(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return domain.ErrSelfReference
	}
	found, err := g.users.GetByIDs(ctx, []string{actorID, targetID})
	if err != nil {
		return err
	}
	if len(found) != 2 {
		return domain.ErrUserNotFound
	}
	return nil
}

// BlockedEitherWay reports whether a block exists between a and b.
func (g *Graph) BlockedEitherWay(ctx context.Context, a, b string) (bool, error) {
	if a == "" || b == "" || a == b {
		return false, nil
	}
	return g.edges.BlockedEitherWay(ctx, a, b)
}

// Counts returns the follower and following totals of userID.
func (g *Graph) Counts(ctx context.Context, userID string) (domain.EdgeCounts, error) {
	if c, ok := g.counts.Get(ctx, userID); ok {
		return c, nil
	}
	c, err := g.edges.Counts(ctx, userID)
	if err != nil {
		return c, err
	}
	g.counts.Set(ctx, userID, c)
	return c, nil
}

// Viewer loads the neighbourhood of viewerID needed to project the given
// identities. Returns nil for an anonymous viewer.
func (g *Graph) Viewer(ctx context.Context, viewerID string, subjectIDs []string) (*domain.Viewer, error) {
	if viewerID == "" {
		return nil, nil
	}

	var blocked, blockedBy, following, followers []string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		blocked, err = g.edges.BlockedIDs(egCtx, viewerID)
		return err
	})
	eg.Go(func() (err error) {
		blockedBy, err = g.edges.BlockedByIDs(egCtx, viewerID)
		return err
	})
	eg.Go(func() (err error) {
		following, err = g.edges.FollowingAmong(egCtx, viewerID, subjectIDs)
		return err
	})
	eg.Go(func() (err error) {
		followers, err = g.edges.FollowersAmong(egCtx, viewerID, subjectIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("load viewer %s: %w", viewerID, err)
	}

	return &domain.Viewer{
		ID:        viewerID,
		Following: domain.NewIDSet(following...),
		Followers: domain.NewIDSet(followers...),
		Blocked:   domain.NewIDSet(blocked...),
		BlockedBy: domain.NewIDSet(blockedBy...),
	}, nil
}

// Extend loads v's follow relationships with subjectIDs into v, keeping its
// block sets. A nil v is left alone.
func (g *Graph) Extend(ctx context.Context, v *domain.Viewer, subjectIDs []string) error {
	if v == nil || len(subjectIDs) == 0 {
		return nil
	}

	var following, followers []string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		following, err = g.edges.FollowingAmong(egCtx, v.ID, subjectIDs)
		return err
	})
	eg.Go(func() (err error) {
		followers, err = g.edges.FollowersAmong(egCtx, v.ID, subjectIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("extend viewer %s: %w", v.ID, err)
	}

	if v.Following == nil {
		v.Following = domain.IDSet{}
	}
	if v.Followers == nil {
		v.Followers = domain.IDSet{}
	}
	for _, id := range following {
		v.Following[id] = struct{}{}
	}
	for _, id := range followers {
		v.Followers[id] = struct{}{}
	}
	return nil
}

// ListFollowers returns a page of follower ids of userID.
func (g *Graph) ListFollowers(ctx context.Context, userID string, page domain.Page) ([]string, error) {
	page = page.Normalize()
	return g.edges.ListFollowers(ctx, userID, page.Offset(), page.Limit)
}

// ListFollowing returns a page of ids userID follows.
func (g *Graph) ListFollowing(ctx context.Context, userID string, page domain.Page) ([]string, error) {
	page = page.Normalize()
	return g.edges.ListFollowing(ctx, userID, page.Offset(), page.Limit)
}
