// Package projection computes viewer-relative views of identities and content.
// Every function is pure: the same record and viewer always give the same view.
package projection

import (
	"sort"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

// Relation returns the flags of subjectID relative to v. All false for an
// anonymous viewer or when the subject is the viewer.
func Relation(subjectID string, v *domain.Viewer) domain.RelationFlags {
	if v == nil || v.ID == subjectID {
		return domain.RelationFlags{}
	}
	return domain.RelationFlags{
		IsFollowedByViewer: v.Following.Has(subjectID),
		IsViewerFollowed:   v.Followers.Has(subjectID),
		IsBlockedByViewer:  v.Blocked.Has(subjectID),
		IsViewerBlocked:    v.BlockedBy.Has(subjectID),
	}
}

// Suppressed reports whether content by creatorID must be hidden from v.
func Suppressed(creatorID string, v *domain.Viewer) bool {
	f := Relation(creatorID, v)
	return f.IsBlockedByViewer || f.IsViewerBlocked
}

// Hidden returns the creators whose content v must not see, sorted.
// Stores push this list into their query ahead of skip/limit.
func Hidden(v *domain.Viewer) []string {
	if v == nil {
		return nil
	}
	set := make(map[string]struct{}, len(v.Blocked)+len(v.BlockedBy))
	for id := range v.Blocked {
		set[id] = struct{}{}
	}
	for id := range v.BlockedBy {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Member projects an identity for a listing or as a creator.
func Member(u *domain.User, v *domain.Viewer) domain.MemberView {
	return domain.MemberView{
		UserSummary:   u.ToSummary(),
		RelationFlags: Relation(u.ID, v),
	}
}

// Members projects identities in order, skipping ids missing from users.
func Members(ids []string, users map[string]*domain.User, v *domain.Viewer) []domain.MemberView {
	out := make([]domain.MemberView, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, Member(u, v))
		}
	}
	return out
}

// Profile projects an identity profile with its edge counts.
func Profile(u *domain.User, counts domain.EdgeCounts, v *domain.Viewer) domain.ProfileView {
	return domain.ProfileView{
		MemberView:     Member(u, v),
		FollowersCount: counts.Followers,
		FollowingCount: counts.Following,
		CreatedAt:      u.CreatedAt,
	}
}

func likedByViewer(likedBy domain.IDSet, v *domain.Viewer) bool {
	return v != nil && likedBy.Has(v.ID)
}

// Post projects a post. creator must be the post's creator.
func Post(p *domain.Post, creator *domain.User, v *domain.Viewer) domain.PostView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.PostView{
		ID:                   p.ID,
		Title:                p.Title,
		Body:                 p.Body,
		Description:          p.Description,
		Tags:                 tags,
		Image:                p.Image,
		Creator:              Member(creator, v),
		LikedByViewer:        likedByViewer(p.LikedBy, v),
		LikesCount:           int64(len(p.LikedBy)),
		IsBookmarkedByViewer: v != nil && v.Bookmarked.Has(p.ID),
		CreatedAt:            p.CreatedAt,
	}
}

// Comment projects a comment with its reply count.
func Comment(c *domain.Comment, creator *domain.User, replies int64, v *domain.Viewer) domain.CommentView {
	return domain.CommentView{
		ID:            c.ID,
		PostID:        c.PostID,
		ParentID:      c.ParentID,
		Text:          c.Text,
		Creator:       Member(creator, v),
		LikedByViewer: likedByViewer(c.LikedBy, v),
		LikesCount:    int64(len(c.LikedBy)),
		RepliesCount:  replies,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// Posts filters suppressed posts and projects the rest in order. Posts whose
// creator is missing from users are dropped.
func Posts(posts []*domain.Post, users map[string]*domain.User, v *domain.Viewer) []domain.PostView {
	visible := Filter(posts, func(p *domain.Post) string { return p.CreatorID }, v)
	out := make([]domain.PostView, 0, len(visible))
	for _, p := range visible {
		if creator, ok := users[p.CreatorID]; ok {
			out = append(out, Post(p, creator, v))
		}
	}
	return out
}

// Comments filters suppressed comments and projects the rest in order.
func Comments(comments []*domain.Comment, users map[string]*domain.User, replies map[string]int64, v *domain.Viewer) []domain.CommentView {
	visible := Filter(comments, func(c *domain.Comment) string { return c.CreatorID }, v)
	out := make([]domain.CommentView, 0, len(visible))
	for _, c := range visible {
		if creator, ok := users[c.CreatorID]; ok {
			out = append(out, Comment(c, creator, replies[c.ID], v))
		}
	}
	return out
}

// Notification projects a notification. The viewer must be the target, so the
// initiator carries the target's relationship view of them.
func Notification(n *domain.Notification, initiator *domain.User, target *domain.Viewer) domain.NotificationView {
	return domain.NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Initiator: Member(initiator, target),
		Image:     n.Image,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// Filter drops items whose creator is suppressed for v, preserving order.
func Filter[T any](items []T, creatorOf func(T) string, v *domain.Viewer) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !Suppressed(creatorOf(it), v) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate filters first and then applies the page window, so a suppressed
// item never shrinks or shifts a page. It is the in-memory form of the
// listings, which push Hidden into the query before OFFSET; tests use it as
// the reference for that window.
func Paginate[T any](items []T, creatorOf func(T) string, v *domain.Viewer, page domain.Page) []T {
	visible := Filter(items, creatorOf, v)
	page = page.Normalize()
	start := page.Offset()
	if start < 0 || start >= len(visible) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(visible) {
		end = len(visible)
	}
	return visible[start:end]
}
