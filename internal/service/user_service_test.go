package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/weiawesome/wes-io-social/internal/domain"
)

func TestUserService_GetProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.newUser(t, "alice")
	bob := e.newUser(t, "bob")
	carol := e.newUser(t, "carol")

	for _, pair := range [][2]string{{bob.ID, alice.ID}, {carol.ID, alice.ID}, {alice.ID, bob.ID}} {
		if _, err := e.graph.ToggleFollow(ctx, pair[0], pair[1]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := e.user.GetProfile(ctx, bob.ID, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.FollowersCount != 2 || got.FollowingCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", got.FollowersCount, got.FollowingCount)
	}
	if !got.IsFollowedByViewer || !got.IsViewerFollowed || got.IsBlockedByViewer {
		t.Errorf("flags = %+v", got.RelationFlags)
	}

	if _, err := e.graph.ToggleBlock(ctx, alice.ID, carol.ID); err != nil {
		t.Fatal(err)
	}
	got, err = e.user.GetProfile(ctx, carol.ID, "alice")
	if err != nil {
		t.Fatalf("GetProfile across block: %v", err)
	}
	if !got.IsViewerBlocked || got.IsBlockedByViewer {
		t.Errorf("block flags = %+v", got.RelationFlags)
	}

	anon, err := e.user.GetProfile(ctx, "", "alice")
	if err != nil || anon.IsFollowedByViewer || anon.IsViewerFollowed {
		t.Errorf("anonymous profile = %+v, %v", anon, err)
	}

	if _, err := e.user.GetProfile(ctx, bob.ID, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown handle err = %v, want NotFound", err)
	}
}

func TestUserService_ListFollowersRelativeToViewer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	star := e.newUser(t, "star")
	fan1 := e.newUser(t, "fan1")
	fan2 := e.newUser(t, "fan2")
	viewer := e.newUser(t, "viewer")

	for _, fan := range []*domain.User{fan1, fan2} {
		if _, err := e.graph.ToggleFollow(ctx, fan.ID, star.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := e.graph.ToggleFollow(ctx, viewer.ID, fan1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.graph.ToggleFollow(ctx, fan2.ID, viewer.ID); err != nil {
		t.Fatal(err)
	}

	members, err := e.user.ListFollowers(ctx, viewer.ID, star.ID, domain.Page{})
	if err != nil {
		t.Fatalf("ListFollowers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	byID := map[string]domain.MemberView{}
	for _, m := range members {
		byID[m.ID] = m
	}
	if m := byID[fan1.ID]; !m.IsFollowedByViewer || m.IsViewerFollowed {
		t.Errorf("fan1 flags = %+v", m.RelationFlags)
	}
	if m := byID[fan2.ID]; m.IsFollowedByViewer || !m.IsViewerFollowed {
		t.Errorf("fan2 flags = %+v", m.RelationFlags)
	}

	following, err := e.user.ListFollowing(ctx, viewer.ID, fan1.ID, domain.Page{})
	if err != nil || len(following) != 1 || following[0].ID != star.ID {
		t.Errorf("ListFollowing = %+v, %v", following, err)
	}

	if _, err := e.user.ListFollowers(ctx, viewer.ID, "missing", domain.Page{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown user err = %v, want NotFound", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.newUser(t, "alice")
	e.newUser(t, "bob")

	str := func(s string) *string { return &s }

	tests := []struct {
		name string
		upd  domain.ProfileUpdate
		want error
	}{
		{"taken handle", domain.ProfileUpdate{Handle: str("bob")}, domain.ErrConflict},
		{"taken email", domain.ProfileUpdate{Email: str("BOB@example.com")}, domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.user.UpdateProfile(ctx, alice.ID, tt.upd); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	got, err := e.user.UpdateProfile(ctx, alice.ID, domain.ProfileUpdate{
		Name:   str("Alice A"),
		Bio:    str("hello"),
		Handle: str("alice"),
		Email:  str(" Alice@Example.com "),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "Alice A" || got.Bio != "hello" || got.Email != "alice@example.com" {
		t.Errorf("account = %+v", got)
	}

	got, err = e.user.UpdateAvatar(ctx, alice.ID, strings.NewReader("img"))
	if err != nil || got.Avatar != "/media/avatars/x.jpg" {
		t.Errorf("UpdateAvatar = %+v, %v", got, err)
	}
}
