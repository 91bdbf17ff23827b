package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/internal/testutil"
)

func TestGormGraphRepository_ToggleFollowMirror(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormGraphRepository(db)
	ctx := context.Background()

	now, err := repo.ToggleFollow(ctx, "a", "b")
	if err != nil || !now {
		t.Fatalf("first toggle = %v, %v; want true", now, err)
	}

	// One row serves both sides of the mirror.
	following, _ := repo.ListFollowing(ctx, "a", 0, 10)
	followers, _ := repo.ListFollowers(ctx, "b", 0, 10)
	if len(following) != 1 || following[0] != "b" {
		t.Errorf("a.following = %v, want [b]", following)
	}
	if len(followers) != 1 || followers[0] != "a" {
		t.Errorf("b.followers = %v, want [a]", followers)
	}

	counts, _ := repo.Counts(ctx, "b")
	if counts.Followers != 1 || counts.Following != 0 {
		t.Errorf("b counts = %+v", counts)
	}

	now, err = repo.ToggleFollow(ctx, "a", "b")
	if err != nil || now {
		t.Fatalf("second toggle = %v, %v; want false", now, err)
	}
	following, _ = repo.ListFollowing(ctx, "a", 0, 10)
	followers, _ = repo.ListFollowers(ctx, "b", 0, 10)
	if len(following) != 0 || len(followers) != 0 {
		t.Errorf("after unfollow: following=%v followers=%v", following, followers)
	}
}

func TestGormGraphRepository_ConcurrentToggles(t *testing.T) {
	tests := []struct {
		name    string
		callers int
		want    bool
	}{
		{"even", 8, false},
		{"odd", 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			repo := NewGormGraphRepository(db)
			ctx := context.Background()

			var wg sync.WaitGroup
			errs := make(chan error, tt.callers)
			for i := 0; i < tt.callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := repo.ToggleFollow(ctx, "a", "b"); err != nil {
						errs <- err
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Fatalf("toggle error: %v", err)
			}

			got, err := repo.IsFollowing(ctx, "a", "b")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsFollowing = %v after %d toggles, want %v", got, tt.callers, tt.want)
			}
			counts, _ := repo.Counts(ctx, "b")
			if (counts.Followers == 1) != tt.want || counts.Followers > 1 {
				t.Errorf("follower rows = %d", counts.Followers)
			}
		})
	}
}

func TestGormGraphRepository_Blocks(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormGraphRepository(db)
	ctx := context.Background()

	if now, err := repo.ToggleBlock(ctx, "a", "b"); err != nil || !now {
		t.Fatalf("ToggleBlock = %v, %v", now, err)
	}

	tests := []struct {
		name string
		fn   func() (bool, error)
		want bool
	}{
		{"a blocked b", func() (bool, error) { return repo.IsBlocked(ctx, "a", "b") }, true},
		{"block is one-directional", func() (bool, error) { return repo.IsBlocked(ctx, "b", "a") }, false},
		{"either way from a", func() (bool, error) { return repo.BlockedEitherWay(ctx, "a", "b") }, true},
		{"either way from b", func() (bool, error) { return repo.BlockedEitherWay(ctx, "b", "a") }, true},
		{"unrelated pair", func() (bool, error) { return repo.BlockedEitherWay(ctx, "a", "c") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	blocked, _ := repo.BlockedIDs(ctx, "a")
	blockedBy, _ := repo.BlockedByIDs(ctx, "b")
	if len(blocked) != 1 || blocked[0] != "b" || len(blockedBy) != 1 || blockedBy[0] != "a" {
		t.Errorf("BlockedIDs=%v BlockedByIDs=%v", blocked, blockedBy)
	}

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}} {
		if _, err := repo.ToggleFollow(ctx, pair[0], pair[1]); !errors.Is(err, domain.ErrBlocked) {
			t.Errorf("ToggleFollow %s->%s err = %v, want ErrBlocked", pair[0], pair[1], err)
		}
		if following, _ := repo.IsFollowing(ctx, pair[0], pair[1]); following {
			t.Errorf("%s follows %s across a block", pair[0], pair[1])
		}
	}
}

func TestGormGraphRepository_Among(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormGraphRepository(db)
	ctx := context.Background()

	for _, edge := range [][2]string{{"v", "x"}, {"y", "v"}, {"v", "z"}} {
		if _, err := repo.ToggleFollow(ctx, edge[0], edge[1]); err != nil {
			t.Fatal(err)
		}
	}

	following, _ := repo.FollowingAmong(ctx, "v", []string{"x", "y"})
	if len(following) != 1 || following[0] != "x" {
		t.Errorf("FollowingAmong = %v, want [x]", following)
	}
	followers, _ := repo.FollowersAmong(ctx, "v", []string{"x", "y"})
	if len(followers) != 1 || followers[0] != "y" {
		t.Errorf("FollowersAmong = %v, want [y]", followers)
	}
	if got, _ := repo.FollowingAmong(ctx, "v", nil); got != nil {
		t.Errorf("FollowingAmong(nil) = %v", got)
	}
}
